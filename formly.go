// Package formly converts between OpenAPI component schemas and Formly field
// configurations. The root package offers constructors for the built-in
// loader, parser and orchestrator; the translation engine lives in
// pkg/translate and the per-reference cache in pkg/resolver.
package formly

import (
	"context"
	"fmt"

	internalLoader "github.com/goliatone/go-formly/internal/openapi/loader"
	internalParser "github.com/goliatone/go-formly/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-formly/pkg/openapi"
	"github.com/goliatone/go-formly/pkg/orchestrator"
	"github.com/goliatone/go-formly/pkg/schema"
)

// NewOrchestrator exposes the orchestrator constructor from the module root.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewLoader constructs the built-in loader while keeping the concrete type
// hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	return internalLoader.New(pkgopenapi.NewLoaderOptions(options...))
}

// NewParser constructs the built-in kin-openapi parser.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return internalParser.New(pkgopenapi.NewParserOptions(options...))
}

// LoadComponents loads src with loader and extracts its component schemas
// with parser. Nil arguments select the built-in implementations.
func LoadComponents(ctx context.Context, src pkgopenapi.Source, loader pkgopenapi.Loader, parser pkgopenapi.Parser) (*schema.Components, error) {
	if loader == nil {
		loader = NewLoader()
	}
	if parser == nil {
		parser = NewParser()
	}
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("formly: load document: %w", err)
	}
	components, err := parser.Schemas(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("formly: parse document: %w", err)
	}
	return components, nil
}

// ValidateSchema checks a schema produced by the reverse translator with the
// OpenAPI schema validator.
func ValidateSchema(ctx context.Context, node *schema.Node) error {
	return internalParser.ValidateSchema(ctx, node)
}
