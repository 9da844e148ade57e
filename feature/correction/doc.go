// Package correction turns a USPS lookup into a human readable correction
// summary.
//
// Checker runs the whole flow for one Address: local shortcuts (lower case
// state, foreign country), normalization, the lookup through a gateway, and
// Interpret, which compares the provider's canonical address with the input
// and renders the changed fields in <strong>. Results other than provider
// errors and unhandled codes are cached.
//
// The lookup is pluggable: GatewayClient calls a running gateway over HTTP,
// LookupFunc adapts the in-process gateway service.
package correction
