// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing run contexts and stub tools. They are not
// intended for production usage.
package testutil
