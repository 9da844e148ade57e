// Package credentials rotates access tokens across several OAuth client
// credential pairs.
//
// A Pool holds one token slot per configured (client id, client secret) pair
// and hands them out round robin: every Acquire returns the token of the slot
// under the cursor and then advances the cursor, whether or not the token had
// to be generated first. Tokens are generated lazily through a Generator and
// regenerated after Invalidate clears a slot.
//
// Generation runs outside the pool lock and is retried with backoff when the
// Generator reports a retriable failure (see core/retry).
package credentials
