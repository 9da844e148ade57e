// Package server builds the Fiber application shared by every feature.
//
// NewApp installs the global middleware chain (ray id, request logging,
// firewall, CORS) and the error handler. The error handler turns any error
// returned by a handler into a JSON ErrorResponse using go-errors envelopes:
// errors implementing ServiceError describe themselves, *goerrors.Error values
// are used as is, extra Mappers handle package sentinels, and *fiber.Error
// keeps its status. Anything else is a 500.
//
// # Configuration
//
// The Config struct defines the listen port (PORT), the CORS origin
// (ALLOW_ORIGIN), the optional peer allowlist (ALLOWED_IPS) and the trusted
// proxy header.
package server
