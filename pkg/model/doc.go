// Package model defines the field configuration tree consumed by Formly-style
// form renderers. A FieldConfig mirrors the published wire format: camelCase
// keys, optional scalars kept as pointers so "absent" never collapses into a
// zero value, and open-ended payloads (validators, expression properties,
// unknown props) held as jsonvalue.Value so they survive a round trip
// untouched.
//
// The package also ships the JSON codec (Encode/Decode, backed by
// goccy/go-json) with configurable key casing and empty-field suppression, and
// a fluent Builder for assembling trees by hand. Tree helpers (Clone, Walk,
// Validate) operate on slices of FieldConfig.
package model
