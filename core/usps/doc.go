// Package usps is the HTTP client for the USPS Addresses v3 API.
//
// It covers both provider endpoints used by the gateway: the OAuth2
// client-credentials token endpoint (guarded by a per-client-id circuit
// breaker) and the address lookup endpoint (optionally rate limited).
// Payload types and the response shape check live here as well.
package usps
