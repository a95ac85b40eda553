package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	internalLoader "github.com/goliatone/go-formly/internal/openapi/loader"
	internalParser "github.com/goliatone/go-formly/internal/openapi/parser"
	"github.com/goliatone/go-formly/pkg/model"
	pkgopenapi "github.com/goliatone/go-formly/pkg/openapi"
	"github.com/goliatone/go-formly/pkg/resolver"
	"github.com/goliatone/go-formly/pkg/schema"
)

// ErrSchemaNotAdded reports a reference that was never passed to AddSchema.
var ErrSchemaNotAdded = errors.New("orchestrator: schema not added")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithDocument sets an already parsed document. It takes precedence over
// WithSource.
func WithDocument(document schema.Document) Option {
	return func(o *Orchestrator) {
		o.document = document
	}
}

// WithSource sets where the document is loaded from on first use.
func WithSource(src pkgopenapi.Source) Option {
	return func(o *Orchestrator) {
		o.source = src
	}
}

// WithLoader injects a custom OpenAPI loader.
func WithLoader(loader pkgopenapi.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects a custom OpenAPI parser.
func WithParser(parser pkgopenapi.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithTranslator replaces the schema translator used by the cache.
func WithTranslator(translator resolver.Translator) Option {
	return func(o *Orchestrator) {
		o.translator = translator
	}
}

// WithLogger sets the logger shared with the cache.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithTransformers registers transformers that run for every AddSchema call,
// before the transformers passed to the call itself.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		o.transformers = append(o.transformers, transformers...)
	}
}

// Orchestrator stores customised field configurations per reference. It is
// safe for concurrent use.
type Orchestrator struct {
	document     schema.Document
	source       pkgopenapi.Source
	loader       pkgopenapi.Loader
	parser       pkgopenapi.Parser
	translator   resolver.Translator
	logger       *zap.Logger
	transformers []Transformer

	cacheMu sync.Mutex
	cache   *resolver.Cache

	mu      sync.RWMutex
	entries map[string][]model.FieldConfig
	group   singleflight.Group
}

// New constructs an Orchestrator. Without WithDocument the document is loaded
// from the WithSource source on the first AddSchema call, using the built-in
// loader and parser unless others are injected.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{entries: make(map[string][]model.FieldConfig)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.loader == nil {
		o.loader = internalLoader.New(pkgopenapi.NewLoaderOptions())
	}
	if o.parser == nil {
		o.parser = internalParser.New(pkgopenapi.NewParserOptions())
	}
}

// AddSchema translates ref, deep-copies the result, applies the configured
// transformers and then the given ones in order, and stores the outcome. Only
// the first successful call for a reference does any work; later calls are
// no-ops. Concurrent first calls share one computation, and the transformers
// of the call that runs it apply. Nothing is stored on failure.
func (o *Orchestrator) AddSchema(ctx context.Context, ref string, transformers ...Transformer) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.has(ref) {
		return nil
	}

	_, err, _ := o.group.Do(ref, func() (any, error) {
		if o.has(ref) {
			return nil, nil
		}
		start := time.Now()
		cache, err := o.resolveCache(ctx)
		if err != nil {
			return nil, err
		}
		translated, err := cache.FieldConfigs(ref)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: add schema %s: %w", ref, err)
		}

		fields := model.Clone(translated)
		if err := o.transform(ctx, &fields, transformers); err != nil {
			return nil, fmt.Errorf("orchestrator: add schema %s: %w", ref, err)
		}
		if fields == nil {
			fields = []model.FieldConfig{}
		}

		o.mu.Lock()
		if _, exists := o.entries[ref]; !exists {
			o.entries[ref] = fields
		}
		o.mu.Unlock()

		o.logger.Debug("schema added",
			zap.String("reference", ref),
			zap.Int("fields", len(fields)),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, nil
	})
	return err
}

func (o *Orchestrator) transform(ctx context.Context, fields *[]model.FieldConfig, extra []Transformer) error {
	for _, transformer := range append(append([]Transformer(nil), o.transformers...), extra...) {
		if transformer == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := transformer.Transform(ctx, fields); err != nil {
			return fmt.Errorf("transform: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) has(ref string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.entries[ref]
	return ok
}

// FieldConfigs returns the stored configurations for ref. The second result
// is false when ref was never added. The slice is shared and must be treated
// as read-only.
func (o *Orchestrator) FieldConfigs(ref string) ([]model.FieldConfig, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	fields, ok := o.entries[ref]
	return fields, ok
}

// MustFieldConfigs is FieldConfigs for references known to be added. It
// panics otherwise.
func (o *Orchestrator) MustFieldConfigs(ref string) []model.FieldConfig {
	fields, ok := o.FieldConfigs(ref)
	if !ok {
		panic(fmt.Sprintf("orchestrator: schema %q not added", ref))
	}
	return fields
}

// References lists the added references in sorted order.
func (o *Orchestrator) References() []string {
	o.mu.RLock()
	refs := make([]string, 0, len(o.entries))
	for ref := range o.entries {
		refs = append(refs, ref)
	}
	o.mu.RUnlock()
	sort.Strings(refs)
	return refs
}

// EncodeJSON encodes the stored configurations for ref.
func (o *Orchestrator) EncodeJSON(ref string, options ...model.EncodeOption) ([]byte, error) {
	fields, ok := o.FieldConfigs(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotAdded, ref)
	}
	data, err := model.Encode(fields, options...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: encode %s: %w", ref, err)
	}
	return data, nil
}

// Cache returns the translation cache, loading the document first if needed.
func (o *Orchestrator) Cache(ctx context.Context) (*resolver.Cache, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	return o.resolveCache(ctx)
}

// resolveCache builds the cache on first use. A failed document load is not
// remembered, so a later call retries it.
func (o *Orchestrator) resolveCache(ctx context.Context) (*resolver.Cache, error) {
	o.cacheMu.Lock()
	defer o.cacheMu.Unlock()
	if o.cache != nil {
		return o.cache, nil
	}

	document := o.document
	if document == nil {
		loaded, err := o.loadDocument(ctx)
		if err != nil {
			return nil, err
		}
		document = loaded
	}

	options := []resolver.Option{resolver.WithLogger(o.logger)}
	if o.translator != nil {
		options = append(options, resolver.WithTranslator(o.translator))
	}
	o.cache = resolver.New(document, options...)
	return o.cache, nil
}

func (o *Orchestrator) loadDocument(ctx context.Context) (schema.Document, error) {
	if o.source == nil {
		return nil, errors.New("orchestrator: document or source is required")
	}
	doc, err := o.loader.Load(ctx, o.source)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load document: %w", err)
	}
	components, err := o.parser.Schemas(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse document: %w", err)
	}
	o.logger.Info("document loaded",
		zap.String("source", doc.Location()),
		zap.Int("schemas", components.Len()),
	)
	return components, nil
}
