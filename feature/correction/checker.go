package correction

import (
	"context"
	"fmt"
	"net/url"

	"address-gateway/core/cache"
	"address-gateway/core/usps"

	"go.uber.org/zap"
)

// Lookup fetches the provider response for a normalized query.
type Lookup interface {
	Lookup(ctx context.Context, query url.Values) (usps.Response, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, query url.Values) (usps.Response, error)

func (f LookupFunc) Lookup(ctx context.Context, query url.Values) (usps.Response, error) {
	return f(ctx, query)
}

// Checker checks addresses against USPS and remembers the outcome.
type Checker struct {
	lookup Lookup
	cache  *cache.Store[Result]
	logger *zap.Logger
}

// NewChecker creates a checker. store may be nil to disable result caching.
func NewChecker(lookup Lookup, store *cache.Store[Result], logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{lookup: lookup, cache: store, logger: logger}
}

// Check returns the correction summary for a. Errors are only returned when
// the lookup itself fails; provider answers are reported in the Result.
func (c *Checker) Check(ctx context.Context, a Address) (Result, error) {
	key := a.key()
	if c.cache != nil {
		if res, ok := c.cache.Get(key); ok {
			return res, nil
		}
	}

	res, err := c.check(ctx, a)
	if err != nil {
		return Result{}, err
	}

	// Failures are worth asking about again.
	if c.cache != nil && res.Code != ProviderError && res.Code != UnhandledCode {
		c.cache.Set(key, res)
	}
	return res, nil
}

func (c *Checker) check(ctx context.Context, a Address) (Result, error) {
	if res, ok := Shortcut(a); ok {
		c.logger.Debug("Resolved without lookup", zap.Stringer("code", res.Code))
		return res, nil
	}

	input := Normalize(a)
	resp, err := c.lookup.Lookup(ctx, input.Query())
	if err != nil {
		return Result{}, fmt.Errorf("lookup address: %w", err)
	}

	res := Interpret(input, resp)
	c.logger.Debug("Address checked",
		zap.Int("upstream_status", resp.StatusCode),
		zap.Stringer("code", res.Code),
		zap.Int("corrections", res.CorrectionCount))
	return res, nil
}
