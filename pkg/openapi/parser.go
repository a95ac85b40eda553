package openapi

import (
	"context"

	"github.com/goliatone/go-formly/pkg/schema"
)

// Parser extracts the component schemas of a document. The result is fully
// parsed and read-only; it serves as the schema.Document references resolve
// against.
type Parser interface {
	Schemas(ctx context.Context, doc Document) (*schema.Components, error)
}

// ParserOptions configures a Parser.
type ParserOptions struct {
	// Validate runs the OpenAPI validator over full documents before
	// extraction. Defaults to true.
	Validate bool

	// AllowPartialDocuments accepts payloads that only carry components,
	// without an openapi version. Validation is skipped for them.
	AllowPartialDocuments bool
}

// ParserOption mutates ParserOptions.
type ParserOption func(*ParserOptions)

// WithValidation toggles document validation.
func WithValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.Validate = enabled
	}
}

// WithPartialDocuments toggles support for component-only documents.
func WithPartialDocuments(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowPartialDocuments = enabled
	}
}

// NewParserOptions applies options over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{Validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
