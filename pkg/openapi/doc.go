// Package openapi holds the public contracts for loading OpenAPI documents and
// extracting their component schemas. Implementations live under
// internal/openapi so kin-openapi stays out of the public API; the root formly
// package exposes constructors for them.
package openapi
