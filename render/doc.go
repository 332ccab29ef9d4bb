// Package render turns a composite result into the text returned to the
// user by a session.
package render
