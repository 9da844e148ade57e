// Package cache provides the bounded least-recently-used store that sits in
// front of the address provider.
//
// Entries are keyed by a canonical serialization of a query (see Key), so two
// requests carrying the same parameters in a different order share an entry.
// The store is safe for concurrent use; a Get marks the entry as most recently
// used and a Set beyond capacity evicts exactly one least recently used entry.
//
// Which responses are worth caching is decided by the caller.
package cache
