// Package orchestrator is the entry point for callers that want field
// configurations by schema reference. It wires document loading and parsing,
// the translation cache and optional transformers behind AddSchema and
// FieldConfigs.
//
// Only AddSchema populates the orchestrator; FieldConfigs never resolves a
// reference on its own. Callers that want lazy resolution use the
// resolver.Cache returned by Cache.
package orchestrator
