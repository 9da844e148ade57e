package validation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"address-gateway/core/cache"
	"address-gateway/core/credentials"
	"address-gateway/core/flight"
	"address-gateway/core/retry"
	"address-gateway/core/usps"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"
)

// TokenPool hands out access tokens and takes back rejected ones.
type TokenPool interface {
	Acquire(ctx context.Context) (credentials.Token, error)
	Invalidate(slot int)
}

// Provider performs the address lookup against the upstream API.
type Provider interface {
	LookupAddress(ctx context.Context, token string, query url.Values) (usps.Response, error)
}

// Recorder counts upstream hits.
type Recorder interface {
	Record()
}

// AuthExpiredError is returned when the provider keeps rejecting freshly
// drawn tokens.
type AuthExpiredError struct {
	Slot     int
	Attempts int
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("usps rejected %d token(s), last from slot %d", e.Attempts, e.Slot)
}

func (e *AuthExpiredError) ToServiceError() *goerrors.Error {
	return goerrors.New("upstream provider rejected our credentials", goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode("UPSTREAM_AUTH_EXPIRED")
}

// TimeoutError is returned when a lookup outlives Options.Timeout.
type TimeoutError struct {
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("address lookup timed out after %s: %v", e.After, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) ToServiceError() *goerrors.Error {
	return goerrors.New("upstream provider did not answer in time", goerrors.CategoryExternal).
		WithCode(http.StatusGatewayTimeout).
		WithTextCode("UPSTREAM_TIMEOUT")
}

// Options tunes the gateway.
type Options struct {
	// Policy is the backoff used when the provider throttles.
	Policy retry.Policy
	// AuthRetries bounds how many fresh tokens are tried after a 401.
	AuthRetries int
	// Hits, when set, records every upstream address call.
	Hits Recorder
	// Timeout bounds a single Validate call. Zero means no bound.
	Timeout time.Duration
}

// Result is the outcome of a lookup.
type Result struct {
	Response usps.Response
	Cached   bool
}

// Service is the caching, credential rotating gateway in front of the provider.
type Service struct {
	pool     TokenPool
	provider Provider
	cache    *cache.Store[usps.Response]
	opts     Options
	flight   flight.Group[Result]
	logger   *zap.Logger
}

// NewService creates a new gateway service.
func NewService(pool TokenPool, provider Provider, store *cache.Store[usps.Response], opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Policy = opts.Policy.WithNotify(func(err error, next time.Duration) {
		logger.Warn("Provider throttled, backing off", zap.Error(err), zap.Duration("delay", next))
	})
	return &Service{
		pool:     pool,
		provider: provider,
		cache:    store,
		opts:     opts,
		logger:   logger,
	}
}

// Validate returns the provider response for query, from the cache when
// possible. Concurrent misses for the same query share one upstream call.
func (s *Service) Validate(ctx context.Context, query url.Values) (*Result, error) {
	key := cache.Key(query)

	if resp, ok := s.cache.Get(key); ok {
		s.logger.Debug("Cache hit", zap.String("key", key))
		return &Result{Response: resp, Cached: true}, nil
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	res, shared, err := s.flight.Do(ctx, key, func(ctx context.Context) (Result, error) {
		if resp, ok := s.cache.Get(key); ok {
			return Result{Response: resp, Cached: true}, nil
		}

		s.logger.Debug("Cache miss, requesting from provider", zap.String("key", key))
		resp, err := retry.Do(ctx, s.opts.Policy, func(ctx context.Context) (usps.Response, error) {
			return s.attempt(ctx, query)
		}, retry.IsRetriable)
		if err != nil {
			return Result{}, err
		}

		if cacheable(resp.StatusCode) {
			if evicted := s.cache.Set(key, resp); evicted {
				s.logger.Debug("Cache full, evicted least recently used entry")
			}
		} else {
			s.logger.Info("Response not cached", zap.Int("upstream_status", resp.StatusCode))
		}
		return Result{Response: resp}, nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && s.opts.Timeout > 0 {
			return nil, &TimeoutError{After: s.opts.Timeout, Err: err}
		}
		return nil, err
	}

	if shared {
		s.logger.Debug("Shared in-flight provider call", zap.String("key", key))
	}
	return &res, nil
}

// attempt runs Authorize then CallProvider, rotating to a fresh token after
// each 401 until AuthRetries is spent.
func (s *Service) attempt(ctx context.Context, query url.Values) (usps.Response, error) {
	for rotation := 0; ; rotation++ {
		token, err := s.pool.Acquire(ctx)
		if err != nil {
			return usps.Response{}, fmt.Errorf("acquire token: %w", err)
		}

		if s.opts.Hits != nil {
			s.opts.Hits.Record()
		}
		resp, err := s.provider.LookupAddress(ctx, token.Value, query)
		if err != nil {
			return usps.Response{}, err
		}

		l := s.logger.With(zap.Int("slot", token.Slot), zap.Int("upstream_status", resp.StatusCode))

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			s.pool.Invalidate(token.Slot)
			if rotation >= s.opts.AuthRetries {
				l.Error("Provider rejected every rotated token")
				return usps.Response{}, &AuthExpiredError{Slot: token.Slot, Attempts: rotation + 1}
			}
			l.Warn("Provider rejected token, rotating")
			continue

		case usps.IsThrottleStatus(resp.StatusCode):
			return usps.Response{}, retry.Retriable(&usps.StatusError{Endpoint: usps.EndpointAddress, StatusCode: resp.StatusCode})

		case terminal(resp.StatusCode):
			if err := usps.ValidatePayload(resp.Body); err != nil {
				l.Error("Unrecognized response from provider", zap.ByteString("body", truncate(resp.Body)))
				return usps.Response{}, fmt.Errorf("address endpoint status %d: %w", resp.StatusCode, err)
			}
			return resp, nil

		default:
			l.Error("Unexpected status from provider")
			return usps.Response{}, &usps.StatusError{Endpoint: usps.EndpointAddress, StatusCode: resp.StatusCode}
		}
	}
}

// terminal reports whether status is a definitive provider answer.
func terminal(status int) bool {
	return (status >= 200 && status < 300) || status == http.StatusBadRequest || status == http.StatusNotFound
}

// cacheable reports whether a response with status may be served from cache:
// a success or a confirmed invalid address.
func cacheable(status int) bool {
	return (status >= 200 && status < 300) || status == http.StatusBadRequest
}

func truncate(b []byte) []byte {
	const limit = 512
	if len(b) > limit {
		return b[:limit]
	}
	return b
}
