// Package flight collapses concurrent calls for the same key into a single
// execution, like singleflight, while letting every caller give up on its own.
//
// The shared execution runs on a context detached from any single caller. It
// is cancelled only once every caller waiting on the key has returned, so one
// disconnecting client does not fail the others.
package flight
