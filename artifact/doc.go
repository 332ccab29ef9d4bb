// Package artifact contains concrete implementations of core.ReportStore.
//
// The ReportStore interface lives in the core package to avoid dependency
// cycles. Implementation packages like this one (in-memory, object stores,
// databases) provide storage backends that can be swapped without touching
// calling code.
package artifact
