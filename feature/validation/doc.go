// Package validation implements the address validation gateway.
//
// A request goes through the following states:
//  1. CacheCheck: the sorted query string is looked up in the response cache.
//     A hit is answered immediately without touching USPS.
//  2. Authorize: a token is drawn from the credential pool (round robin).
//  3. CallProvider: the query is forwarded to USPS with the token. A 401
//     invalidates that slot and draws a fresh token, up to usps.auth_retries
//     times. 429 and 503 are retried with exponential backoff.
//  4. Validate: the payload must hold address, corrections and matches, or a
//     structured error object. Anything else is a 502.
//  5. CachePopulate: 2xx and 400 responses are cached.
//
// Concurrent misses for the same query share one upstream call.
//
// # HTTP Endpoints
//
//   - GET / : Validate an address. Requires streetAddress, city and state; every
//     query parameter is forwarded. Always answers 200 with the USPS payload,
//     the USPS status in X-Upstream-Status and HIT or MISS in X-Cache.
package validation
