// Package model defines the provider-agnostic abstraction used to turn
// composite results into prose.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (Anthropic, OpenAI) implement Model in their own sub-packages so
// the rest of the module stays decoupled from vendor SDKs.
package model
