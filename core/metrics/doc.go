// Package metrics counts upstream provider hits and periodically logs the
// request rate.
package metrics
