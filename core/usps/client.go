package usps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"address-gateway/core/credentials"
	"address-gateway/core/retry"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxBodySize bounds how much of a provider response is read.
const maxBodySize = 1 << 20

// Client talks to the USPS API. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a new USPS client.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
	if cfg.RatePerHour > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(cfg.RatePerHour)), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	Scope        string `json:"scope,omitempty"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// GenerateToken requests a new access token for cred. Throttling statuses are
// returned as retriable errors; every other failure is fatal.
func (c *Client) GenerateToken(ctx context.Context, cred credentials.Credential) (string, error) {
	if c.cfg.BreakerFailures <= 0 {
		return c.requestToken(ctx, cred)
	}

	v, err := c.breaker(cred.ClientID).Execute(func() (interface{}, error) {
		return c.requestToken(ctx, cred)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &BreakerOpenError{ClientID: cred.ClientID, Err: err}
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) requestToken(ctx context.Context, cred credentials.Credential) (string, error) {
	payload, err := json.Marshal(tokenRequest{
		GrantType:    "client_credentials",
		Scope:        c.cfg.Scope,
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.cfg.TokenPath), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Endpoint: EndpointToken, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &TransportError{Endpoint: EndpointToken, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case IsThrottleStatus(resp.StatusCode):
		c.logger.Warn("Token endpoint throttled",
			zap.String("client_id", cred.ClientID),
			zap.Int("status", resp.StatusCode))
		return "", retry.Retriable(&StatusError{Endpoint: EndpointToken, StatusCode: resp.StatusCode})
	default:
		return "", &StatusError{Endpoint: EndpointToken, StatusCode: resp.StatusCode}
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", ErrMalformedToken
	}
	token, ok := decoded["access_token"].(string)
	if !ok || token == "" {
		return "", ErrMalformedToken
	}
	return token, nil
}

// LookupAddress calls the address endpoint with query forwarded as is. Any
// HTTP status is returned in the Response; only transport failures are errors.
func (c *Client) LookupAddress(ctx context.Context, token string, query url.Values) (Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, fmt.Errorf("wait for rate limit: %w", err)
		}
	}

	target := c.endpoint(c.cfg.AddressPath)
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, fmt.Errorf("build address request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, &TransportError{Endpoint: EndpointAddress, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Response{}, &TransportError{Endpoint: EndpointAddress, Err: err}
	}

	c.logger.Debug("Address lookup finished", zap.Int("status", resp.StatusCode))
	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// breaker returns the breaker of clientID, creating it on first use.
func (c *Client) breaker(clientID string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[clientID]; ok {
		return cb
	}

	failures := uint32(c.cfg.BreakerFailures)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "usps-token-" + clientID,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     c.cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// Cancelled callers say nothing about the provider. Throttling is
			// left to the retry policy.
			return err == nil || errors.Is(err, context.Canceled) || retry.IsRetriable(err)
		},
	})
	c.breakers[clientID] = cb
	return cb
}
