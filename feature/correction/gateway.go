package correction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"address-gateway/core/usps"
	"address-gateway/feature/validation"
)

// GatewayError is a non-200 answer from the gateway itself.
type GatewayError struct {
	StatusCode int
	TextCode   string
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s (%s)", e.StatusCode, e.Message, e.TextCode)
}

// GatewayClient looks addresses up through a running gateway.
type GatewayClient struct {
	baseURL string
	http    *http.Client
}

// NewGatewayClient creates a client for the gateway at baseURL. A nil hc
// uses http.DefaultClient.
func NewGatewayClient(baseURL string, hc *http.Client) *GatewayClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &GatewayClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Lookup implements Lookup. The provider status is read from the
// X-Upstream-Status header.
func (g *GatewayClient) Lookup(ctx context.Context, query url.Values) (usps.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/?"+query.Encode(), nil)
	if err != nil {
		return usps.Response{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return usps.Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return usps.Response{}, err
	}

	if resp.StatusCode != http.StatusOK {
		gwErr := &GatewayError{StatusCode: resp.StatusCode}
		var env struct {
			TextCode string `json:"text_code"`
			Message  string `json:"message"`
		}
		if json.Unmarshal(body, &env) == nil {
			gwErr.TextCode = env.TextCode
			gwErr.Message = env.Message
		}
		return usps.Response{}, gwErr
	}

	status := http.StatusOK
	if raw := resp.Header.Get(validation.HeaderUpstreamStatus); raw != "" {
		if status, err = strconv.Atoi(raw); err != nil {
			return usps.Response{}, fmt.Errorf("invalid upstream status %q", raw)
		}
	}
	return usps.Response{StatusCode: status, Body: body}, nil
}
