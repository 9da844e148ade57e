// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - RayID: Generates a unique Request ID (RayID) for every incoming request,
//     injecting it into the context and response headers for tracing.
//   - Firewall: Drops connections from peers missing from the ALLOWED_IPS list
//     without writing any response.
//   - CORS: Stamps every response with the configured origin and allowed methods.
//
// These middleware components are registered globally by server.NewApp, in
// the order RayID, Firewall, CORS.
package middleware
