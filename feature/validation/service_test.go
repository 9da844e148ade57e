package validation_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"address-gateway/core/cache"
	"address-gateway/core/credentials"
	"address-gateway/core/retry"
	"address-gateway/core/usps"
	"address-gateway/feature/validation"
	"address-gateway/feature/validation/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	matchBody   = `{"address":{"streetAddress":"1 MAIN ST","city":"SPRINGFIELD","state":"IL","ZIPCode":"62701","ZIPPlus4":"0001"},"corrections":[],"matches":[{"code":"31","text":"Single Response - exact match"}]}`
	invalidBody = `{"apiVersion":"3","error":{"code":"400","message":"Invalid state","errors":[]}}`
	missingBody = `{"apiVersion":"3","error":{"code":"404","message":"Address Not Found.","errors":[]}}`
)

var tok0 = credentials.Token{Slot: 0, Value: "t0"}
var tok1 = credentials.Token{Slot: 1, Value: "t1"}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func address() url.Values {
	return url.Values{
		"streetAddress": {"1 Main St"},
		"city":          {"Springfield"},
		"state":         {"IL"},
	}
}

type counter struct{ n atomic.Int32 }

func (c *counter) Record() { c.n.Add(1) }

func newService(t *testing.T, pool validation.TokenPool, provider validation.Provider, hits validation.Recorder) *validation.Service {
	t.Helper()
	store, err := cache.New[usps.Response](10)
	require.NoError(t, err)
	return validation.NewService(pool, provider, store, validation.Options{
		Policy:      fastPolicy(),
		AuthRetries: 1,
		Hits:        hits,
	}, zap.NewNop())
}

func TestValidate_CacheHitSkipsProvider(t *testing.T) {
	pool := new(mocks.TokenPool)
	provider := new(mocks.Provider)
	pool.On("Acquire", mock.Anything).Return(tok0, nil).Once()
	provider.On("LookupAddress", mock.Anything, "t0", address()).Return(usps.Response{StatusCode: 200, Body: []byte(matchBody)}, nil).Once()

	hits := &counter{}
	svc := newService(t, pool, provider, hits)

	first, err := svc.Validate(context.Background(), address())
	require.NoError(t, err)
	assert.False(t, first.Cached)

	// Same parameters in another order land on the same entry.
	reordered := url.Values{}
	reordered.Set("state", "IL")
	reordered.Set("city", "Springfield")
	reordered.Set("streetAddress", "1 Main St")

	second, err := svc.Validate(context.Background(), reordered)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Response.Body, second.Response.Body)
	assert.Equal(t, 200, second.Response.StatusCode)

	assert.Equal(t, int32(1), hits.n.Load())
	pool.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestValidate_UnauthorizedRotatesToNextSlot(t *testing.T) {
	pool := new(mocks.TokenPool)
	provider := new(mocks.Provider)
	pool.On("Acquire", mock.Anything).Return(tok0, nil).Once()
	pool.On("Acquire", mock.Anything).Return(tok1, nil).Once()
	pool.On("Invalidate", 0).Once()
	provider.On("LookupAddress", mock.Anything, "t0", mock.Anything).Return(usps.Response{StatusCode: 401}, nil).Once()
	provider.On("LookupAddress", mock.Anything, "t1", mock.Anything).Return(usps.Response{StatusCode: 200, Body: []byte(matchBody)}, nil).Once()

	svc := newService(t, pool, provider, nil)

	res, err := svc.Validate(context.Background(), address())
	require.NoError(t, err)
	assert.Equal(t, 200, res.Response.StatusCode)
	assert.JSONEq(t, matchBody, string(res.Response.Body))

	pool.AssertExpectations(t)
	pool.AssertNotCalled(t, "Invalidate", 1)
	provider.AssertExpectations(t)
}

func TestValidate_UnauthorizedTwiceIsAuthExpired(t *testing.T) {
	pool := new(mocks.TokenPool)
	provider := new(mocks.Provider)
	pool.On("Acquire", mock.Anything).Return(tok0, nil).Once()
	pool.On("Acquire", mock.Anything).Return(tok1, nil).Once()
	pool.On("Invalidate", 0).Once()
	pool.On("Invalidate", 1).Once()
	provider.On("LookupAddress", mock.Anything, mock.Anything, mock.Anything).Return(usps.Response{StatusCode: 401}, nil).Twice()

	svc := newService(t, pool, provider, nil)

	_, err := svc.Validate(context.Background(), address())
	var authErr *validation.AuthExpiredError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, 2, authErr.Attempts)
	assert.Equal(t, 1, authErr.Slot)
	assert.Equal(t, 502, authErr.ToServiceError().Code)

	pool.AssertExpectations(t)
	provider.AssertNumberOfCalls(t, "LookupAddress", 2)
}

func TestValidate_ThrottlingIsRetried(t *testing.T) {
	pool := new(mocks.TokenPool)
	provider := new(mocks.Provider)
	pool.On("Acquire", mock.Anything).Return(tok0, nil)
	provider.On("LookupAddress", mock.Anything, "t0", mock.Anything).Return(usps.Response{StatusCode: 429}, nil).Once()
	provider.On("LookupAddress", mock.Anything, "t0", mock.Anything).Return(usps.Response{StatusCode: 200, Body: []byte(matchBody)}, nil).Once()

	svc := newService(t, pool, provider, nil)

	res, err := svc.Validate(context.Background(), address())
	require.NoError(t, err)
	assert.Equal(t, 200, res.Response.StatusCode)
	provider.AssertNumberOfCalls(t, "LookupAddress", 2)
	pool.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestValidate_ThrottlingExhaustedIsNotCached(t *testing.T) {
	pool := new(mocks.TokenPool)
	provider := new(mocks.Provider)
	pool.On("Acquire", mock.Anything).Return(tok0, nil)
	provider.On("LookupAddress", mock.Anything, "t0", mock.Anything).Return(usps.Response{StatusCode: 503}, nil)

	svc := newService(t, pool, provider, nil)

	_, err := svc.Validate(context.Background(), address())
	var exhausted *retry.ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 3, exhausted.Attempts)

	var statusErr *usps.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 503, statusErr.ToServiceError().Code)

	_, err = svc.Validate(context.Background(), address())
	require.Error(t, err)
	provider.AssertNumberOfCalls(t, "LookupAddress", 6)
}

func TestValidate_UnexpectedStatusIsFatal(t *testing.T) {
	pool := new(mocks.TokenPool)
	provider := new(mocks.Provider)
	pool.On("Acquire", mock.Anything).Return(tok0, nil)
	provider.On("LookupAddress", mock.Anything, "t0", mock.Anything).Return(usps.Response{StatusCode: 500, Body: []byte(`oops`)}, nil)

	svc := newService(t, pool, provider, nil)

	_, err := svc.Validate(context.Background(), address())
	var statusErr *usps.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 500, statusErr.StatusCode)
	assert.Equal(t, usps.EndpointAddress, statusErr.Endpoint)
	assert.False(t, retry.IsRetriable(err))
	provider.AssertNumberOfCalls(t, "LookupAddress", 1)
}

func TestValidate_UnrecognizedShape(t *testing.T) {
	pool := new(mocks.TokenPool)
	provider := new(mocks.Provider)
	pool.On("Acquire", mock.Anything).Return(tok0, nil)
	provider.On("LookupAddress", mock.Anything, "t0", mock.Anything).Return(usps.Response{StatusCode: 200, Body: []byte(`{"unexpected":true}`)}, nil)

	svc := newService(t, pool, provider, nil)

	_, err := svc.Validate(context.Background(), address())
	assert.ErrorIs(t, err, usps.ErrUnrecognizedResponse)

	// Nothing was cached.
	_, err = svc.Validate(context.Background(), address())
	assert.ErrorIs(t, err, usps.ErrUnrecognizedResponse)
	provider.AssertNumberOfCalls(t, "LookupAddress", 2)
}

func TestValidate_CachePolicy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		cached bool
	}{
		{"success", 200, matchBody, true},
		{"invalid address", 400, invalidBody, true},
		{"not found", 404, missingBody, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := new(mocks.TokenPool)
			provider := new(mocks.Provider)
			pool.On("Acquire", mock.Anything).Return(tok0, nil)
			provider.On("LookupAddress", mock.Anything, "t0", mock.Anything).Return(usps.Response{StatusCode: tt.status, Body: []byte(tt.body)}, nil)

			svc := newService(t, pool, provider, nil)

			first, err := svc.Validate(context.Background(), address())
			require.NoError(t, err)
			assert.Equal(t, tt.status, first.Response.StatusCode)

			second, err := svc.Validate(context.Background(), address())
			require.NoError(t, err)
			assert.Equal(t, tt.cached, second.Cached)
			assert.Equal(t, first.Response.Body, second.Response.Body)

			calls := 2
			if tt.cached {
				calls = 1
			}
			provider.AssertNumberOfCalls(t, "LookupAddress", calls)
		})
	}
}

func TestValidate_TokenFailurePropagates(t *testing.T) {
	pool := new(mocks.TokenPool)
	provider := new(mocks.Provider)
	boom := &usps.StatusError{Endpoint: usps.EndpointToken, StatusCode: 401}
	pool.On("Acquire", mock.Anything).Return(credentials.Token{Slot: 0}, boom)

	svc := newService(t, pool, provider, nil)

	_, err := svc.Validate(context.Background(), address())
	assert.ErrorIs(t, err, boom)
	provider.AssertNotCalled(t, "LookupAddress", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidate_CancelledContextStopsRetries(t *testing.T) {
	pool := new(mocks.TokenPool)
	provider := new(mocks.Provider)
	pool.On("Acquire", mock.Anything).Return(tok0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	provider.On("LookupAddress", mock.Anything, "t0", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(usps.Response{StatusCode: 429}, nil)

	store, err := cache.New[usps.Response](10)
	require.NoError(t, err)
	svc := validation.NewService(pool, provider, store, validation.Options{
		Policy:      retry.Policy{MaxAttempts: 5, InitialDelay: 30 * time.Millisecond, MaxDelay: 30 * time.Millisecond, Multiplier: 1},
		AuthRetries: 1,
	}, zap.NewNop())

	_, err = svc.Validate(ctx, address())
	assert.ErrorIs(t, err, context.Canceled)

	// The abandoned lookup must not keep retrying in the background.
	time.Sleep(100 * time.Millisecond)
	provider.AssertNumberOfCalls(t, "LookupAddress", 1)
}

// throttledProvider answers 429 for the first throttled calls, then succeeds.
type throttledProvider struct {
	throttled int32
	calls     atomic.Int32
	first     chan struct{}
	once      sync.Once
}

func (p *throttledProvider) LookupAddress(ctx context.Context, token string, query url.Values) (usps.Response, error) {
	n := p.calls.Add(1)
	p.once.Do(func() { close(p.first) })
	if n <= p.throttled {
		return usps.Response{StatusCode: 429}, nil
	}
	return usps.Response{StatusCode: 200, Body: []byte(matchBody)}, nil
}

func TestValidate_CancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	pool := new(mocks.TokenPool)
	pool.On("Acquire", mock.Anything).Return(tok0, nil)
	provider := &throttledProvider{throttled: 2, first: make(chan struct{})}

	store, err := cache.New[usps.Response](10)
	require.NoError(t, err)
	svc := validation.NewService(pool, provider, store, validation.Options{
		Policy:      retry.Policy{MaxAttempts: 5, InitialDelay: 30 * time.Millisecond, MaxDelay: 30 * time.Millisecond, Multiplier: 1},
		AuthRetries: 1,
	}, zap.NewNop())

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.Validate(leaderCtx, address())
		leaderErr <- err
	}()
	<-provider.first

	type outcome struct {
		res *validation.Result
		err error
	}
	follower := make(chan outcome, 1)
	go func() {
		res, err := svc.Validate(context.Background(), address())
		follower <- outcome{res, err}
	}()

	time.Sleep(10 * time.Millisecond)
	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	got := <-follower
	require.NoError(t, got.err)
	assert.Equal(t, 200, got.res.Response.StatusCode)
	assert.Equal(t, int32(3), provider.calls.Load())
}

func TestValidate_TimeoutBoundsRequest(t *testing.T) {
	pool := new(mocks.TokenPool)
	provider := new(mocks.Provider)
	pool.On("Acquire", mock.Anything).Return(tok0, nil)
	provider.On("LookupAddress", mock.Anything, "t0", mock.Anything).Return(usps.Response{StatusCode: 503}, nil)

	store, err := cache.New[usps.Response](10)
	require.NoError(t, err)
	svc := validation.NewService(pool, provider, store, validation.Options{
		Policy:      retry.Policy{MaxAttempts: 100, InitialDelay: 20 * time.Millisecond, MaxDelay: 20 * time.Millisecond, Multiplier: 1},
		AuthRetries: 1,
		Timeout:     50 * time.Millisecond,
	}, zap.NewNop())

	start := time.Now()
	_, err = svc.Validate(context.Background(), address())
	assert.Less(t, time.Since(start), time.Second)

	var timeout *validation.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 504, timeout.ToServiceError().Code)
}

type slowProvider struct {
	calls atomic.Int32
}

func (p *slowProvider) LookupAddress(ctx context.Context, token string, query url.Values) (usps.Response, error) {
	p.calls.Add(1)
	time.Sleep(20 * time.Millisecond)
	return usps.Response{StatusCode: 200, Body: []byte(matchBody)}, nil
}

func TestValidate_ConcurrentMissesShareOneCall(t *testing.T) {
	pool := new(mocks.TokenPool)
	pool.On("Acquire", mock.Anything).Return(tok0, nil)
	provider := &slowProvider{}

	svc := newService(t, pool, provider, nil)

	const callers = 10
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			res, err := svc.Validate(context.Background(), address())
			assert.NoError(t, err)
			assert.JSONEq(t, matchBody, string(res.Response.Body))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), provider.calls.Load())
}
