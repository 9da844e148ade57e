package validation

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"address-gateway/core/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Response headers set by the gateway.
const (
	HeaderUpstreamStatus = "X-Upstream-Status"
	HeaderCache          = "X-Cache"
)

// AddressQuery lists the query parameters that must be present. Every
// parameter of the request is forwarded, not only these.
type AddressQuery struct {
	StreetAddress string `query:"streetAddress" validate:"required"`
	City          string `query:"city" validate:"required"`
	State         string `query:"state" validate:"required"`
}

// FieldError describes one invalid query parameter.
type FieldError struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// Handler handles HTTP requests for address validation.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return &Handler{service: service, validate: v}
}

// RegisterRoutes registers the validation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/", h.HandleValidateAddress)
}

// HandleValidateAddress proxies an address lookup to USPS.
// @Summary Validate Address
// @Description Looks the address up at USPS through the response cache and returns the provider payload verbatim.
// @Tags validation
// @Produce json
// @Param streetAddress query string true "Street address"
// @Param city query string true "City"
// @Param state query string true "Two letter state code"
// @Param ZIPCode query string false "ZIP code"
// @Param ZIPPlus4 query string false "ZIP+4 extension"
// @Success 200 {object} usps.Payload "Provider payload; the provider status is in X-Upstream-Status"
// @Failure 400 {object} map[string]FieldError "Invalid query"
// @Failure 502 {object} server.ErrorResponse "Unrecognized or failed provider response"
// @Failure 503 {object} server.ErrorResponse "Provider throttling persisted"
// @Router / [get]
func (h *Handler) HandleValidateAddress(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		l.Warn("Malformed query string", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "malformed query string")
	}

	if fields := h.check(query); len(fields) > 0 {
		l.Info("Invalid query", zap.Strings("fields", keys(fields)))
		return c.Status(fiber.StatusBadRequest).JSON(fields)
	}

	result, err := h.service.Validate(c.Context(), query)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(HeaderUpstreamStatus, strconv.Itoa(result.Response.StatusCode))
	if result.Cached {
		c.Set(HeaderCache, "HIT")
	} else {
		c.Set(HeaderCache, "MISS")
	}
	return c.Status(fiber.StatusOK).Send(result.Response.Body)
}

// check validates the required parameters. A parameter given more than once
// is not a string and is rejected too.
func (h *Handler) check(query url.Values) map[string]FieldError {
	var q AddressQuery
	fields := make(map[string]FieldError)

	targets := map[string]*string{
		"streetAddress": &q.StreetAddress,
		"city":          &q.City,
		"state":         &q.State,
	}
	for name, dst := range targets {
		values := query[name]
		if len(values) > 1 {
			fields[name] = invalid(name, strings.Join(values, ","))
			continue
		}
		if len(values) == 1 {
			*dst = values[0]
		}
	}

	err := h.validate.Struct(q)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = invalid(fe.Field(), query.Get(fe.Field()))
			}
		}
	}
	return fields
}

func invalid(name, value string) FieldError {
	return FieldError{
		Type:     "field",
		Value:    value,
		Msg:      "Invalid value",
		Path:     name,
		Location: "query",
	}
}

func keys(m map[string]FieldError) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
