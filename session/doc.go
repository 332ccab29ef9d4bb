// Package session houses the core.SessionStore implementations and the
// Manager, the single entry point through which user queries reach a
// composite.
//
// The store interface (and the Session struct) live in the core package to
// centralize domain contracts. Add additional backends in sub-packages
// without changing any calling code; only the wiring layer decides which
// implementation to instantiate.
package session
