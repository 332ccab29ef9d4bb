// Package config loads and validates the settings shared by the library
// façade and the CLI.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. Validation happens once, before any composite or
// session is built, and reports a *core.ConfigurationError.
package config
