// Package runner executes composites on behalf of a session.
//
// The Runner assigns every run its own id and cancellable context, bounds
// the number of concurrent runs and keeps a registry of in-flight runs so
// they can be cancelled individually or all at once on teardown.
//
// # Responsibilities (abridged)
//   - Run context construction (session id, run id, scoped logger)
//   - Concurrency limiting
//   - Run lifecycle management & cancellation
package runner
