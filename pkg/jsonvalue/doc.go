// Package jsonvalue models arbitrary JSON payloads as a closed tagged union.
// Extension bags on schema nodes and field configurations hold Values instead
// of untyped interfaces so every consumer switches over the same six kinds
// (null, bool, number, string, array, object) plus the absent zero value.
package jsonvalue
