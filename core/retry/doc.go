// Package retry runs operations under an exponential backoff policy.
//
// Only failures explicitly marked with Retriable are retried; every other error
// is returned to the caller on the first occurrence. The backoff state lives
// inside a single Do call, so growth persists across the retriable failures of
// one logical operation and starts over for the next one.
//
// # Usage
//
//	token, err := retry.Do(ctx, retry.DefaultPolicy(), func(ctx context.Context) (string, error) {
//	    return fetchToken(ctx)
//	}, retry.IsRetriable)
package retry
