package server_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"address-gateway/core/server"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type throttled struct{}

func (throttled) Error() string { return "throttled" }
func (throttled) ToServiceError() *goerrors.Error {
	return goerrors.New("slow down", goerrors.CategoryRateLimit).WithCode(503).WithTextCode("UPSTREAM_THROTTLED")
}

var errSentinel = errors.New("sentinel")

func sentinelMapper(err error) *goerrors.Error {
	if errors.Is(err, errSentinel) {
		return goerrors.New("mapped sentinel", goerrors.CategoryExternal)
	}
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	app := server.NewApp(server.Config{AllowOrigin: "https://example.com"}, zap.New(core), sentinelMapper)

	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/typed", func(c *fiber.Ctx) error { return throttled{} })
	app.Get("/wrapped", func(c *fiber.Ctx) error { return errors.Join(errors.New("ctx"), errSentinel) })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("boom") })
	return app, logs
}

func TestNewApp_ErrorEnvelopes(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		path     string
		status   int
		textCode string
		category goerrors.Category
	}{
		{"/typed", 503, "UPSTREAM_THROTTLED", goerrors.CategoryRateLimit},
		{"/wrapped", 502, "UPSTREAM_FAILED", goerrors.CategoryExternal},
		{"/fiber", 404, "NOT_FOUND", goerrors.CategoryNotFound},
		{"/plain", 500, "INTERNAL_ERROR", goerrors.CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "https://example.com", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))

			var body server.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.status, body.Code)
			assert.Equal(t, tt.textCode, body.TextCode)
			assert.Equal(t, fmt.Sprintf("%s", tt.category), body.Category)
			assert.NotEmpty(t, body.RayID)
			assert.Equal(t, resp.Header.Get("X-Ray-ID"), body.RayID)
		})
	}
}

func TestNewApp_LogsEveryRequest(t *testing.T) {
	app, logs := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/plain?city=Springfield", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	started := logs.FilterMessage("Request started").All()
	require.Len(t, started, 1)
	assert.Equal(t, "city=Springfield", started[0].ContextMap()["query"])

	finished := logs.FilterMessage("Request finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, int64(500), finished[0].ContextMap()["status"])

	assert.Equal(t, 1, logs.FilterMessage("Request failed").Len())
}

func TestNewApp_FirewallDropsUnlisted(t *testing.T) {
	app := server.NewApp(server.Config{AllowOrigin: "*", AllowedIPs: []string{"192.0.2.1"}}, zap.NewNop())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })

	_, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	assert.Error(t, err)
}
