package usps

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Endpoint names used in errors and logs.
const (
	EndpointToken   = "token"
	EndpointAddress = "address"
)

var (
	// ErrMalformedToken is returned when the token endpoint answers 200 without
	// a usable access_token.
	ErrMalformedToken = errors.New("usps: token response has no access_token string")
	// ErrUnrecognizedResponse is returned when an address payload matches
	// neither the result shape nor the error shape.
	ErrUnrecognizedResponse = errors.New("usps: unrecognized response shape")
)

// StatusError is an unexpected HTTP status from a provider endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("usps %s endpoint returned status %d", e.Endpoint, e.StatusCode)
}

// Throttled reports whether the status means the provider asked us to slow down.
func (e *StatusError) Throttled() bool {
	return IsThrottleStatus(e.StatusCode)
}

func (e *StatusError) ToServiceError() *goerrors.Error {
	if e.Throttled() {
		return goerrors.New("upstream provider is throttling requests", goerrors.CategoryRateLimit).
			WithCode(http.StatusServiceUnavailable).
			WithTextCode("UPSTREAM_THROTTLED").
			WithMetadata(map[string]any{"endpoint": e.Endpoint, "upstream_status": e.StatusCode})
	}
	return goerrors.New("upstream provider returned an unexpected status", goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode("UPSTREAM_STATUS").
		WithMetadata(map[string]any{"endpoint": e.Endpoint, "upstream_status": e.StatusCode})
}

// TransportError is a failure to reach a provider endpoint at all.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("usps %s endpoint: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) ToServiceError() *goerrors.Error {
	return goerrors.New("upstream provider is unreachable", goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode("UPSTREAM_UNREACHABLE").
		WithMetadata(map[string]any{"endpoint": e.Endpoint})
}

// BreakerOpenError is returned while the token breaker of a client id is open.
type BreakerOpenError struct {
	ClientID string
	Err      error
}

func (e *BreakerOpenError) Error() string {
	return fmt.Sprintf("usps token breaker for client %s: %v", e.ClientID, e.Err)
}

func (e *BreakerOpenError) Unwrap() error { return e.Err }

func (e *BreakerOpenError) ToServiceError() *goerrors.Error {
	return goerrors.New("upstream authorization is temporarily unavailable", goerrors.CategoryExternal).
		WithCode(http.StatusServiceUnavailable).
		WithTextCode("UPSTREAM_BREAKER_OPEN")
}

// IsThrottleStatus reports whether status is one the provider uses for throttling.
func IsThrottleStatus(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// ServiceError maps sentinel errors of this package to an error envelope.
// It returns nil for errors it does not know.
func ServiceError(err error) *goerrors.Error {
	switch {
	case errors.Is(err, ErrUnrecognizedResponse):
		return goerrors.New("upstream provider returned an unrecognized response", goerrors.CategoryExternal).
			WithCode(http.StatusBadGateway).
			WithTextCode("UPSTREAM_UNRECOGNIZED")
	case errors.Is(err, ErrMalformedToken):
		return goerrors.New("upstream provider returned a malformed token", goerrors.CategoryExternal).
			WithCode(http.StatusBadGateway).
			WithTextCode("UPSTREAM_MALFORMED_TOKEN")
	}
	return nil
}
