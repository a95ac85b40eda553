// Package resolver memoizes schema translation per document reference.
// Published results are kept in a sync.Map and concurrent first-time callers
// for the same reference share one computation through singleflight, so the
// translator runs once per reference while entries stay immutable.
package resolver

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-formly/pkg/model"
	"github.com/goliatone/go-formly/pkg/schema"
	"github.com/goliatone/go-formly/pkg/translate"
)

// Translator is the schema to field configuration step the cache memoizes.
// *translate.Translator satisfies it.
type Translator interface {
	FieldConfigs(node *schema.Node) ([]model.FieldConfig, error)
}

// Cache resolves references against a document and stores the translated
// field configurations. Failures are never stored. Returned slices are shared
// between callers and must be treated as read-only.
type Cache struct {
	document   schema.Document
	translator Translator
	logger     *zap.Logger

	entries sync.Map
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithTranslator replaces the default translator.
func WithTranslator(translator Translator) Option {
	return func(c *Cache) {
		if translator != nil {
			c.translator = translator
		}
	}
}

// New constructs a Cache over document.
func New(document schema.Document, options ...Option) *Cache {
	c := &Cache{document: document}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.translator == nil {
		c.translator = translate.New()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Document returns the document references resolve against.
func (c *Cache) Document() schema.Document { return c.document }

// FieldConfigs returns the field configurations for ref, translating them on
// first use. Every later call returns the same slice.
func (c *Cache) FieldConfigs(ref string) ([]model.FieldConfig, error) {
	if cached, ok := c.entries.Load(ref); ok {
		c.logger.Debug("field config cache hit", zap.String("reference", ref))
		return cached.([]model.FieldConfig), nil
	}

	value, err, shared := c.group.Do(ref, func() (any, error) {
		if cached, ok := c.entries.Load(ref); ok {
			return cached, nil
		}
		start := time.Now()
		fields, err := c.compute(ref)
		if err != nil {
			return nil, err
		}
		stored, _ := c.entries.LoadOrStore(ref, fields)
		c.logger.Debug("field config cache miss",
			zap.String("reference", ref),
			zap.Int("fields", len(fields)),
			zap.Duration("duration", time.Since(start)),
		)
		return stored, nil
	})
	if err != nil {
		c.logger.Warn("field config translation failed",
			zap.String("reference", ref),
			zap.Bool("shared", shared),
			zap.Error(err),
		)
		return nil, err
	}
	return value.([]model.FieldConfig), nil
}

func (c *Cache) compute(ref string) ([]model.FieldConfig, error) {
	node, err := schema.Resolve(c.document, ref)
	if err != nil {
		return nil, err
	}
	fields, err := c.translator.FieldConfigs(node)
	if err != nil {
		var parseErr *translate.ExtensionParseError
		if errors.As(err, &parseErr) && parseErr.Ref == "" {
			return nil, parseErr.WithRef(ref)
		}
		return nil, err
	}
	if fields == nil {
		fields = []model.FieldConfig{}
	}
	return fields, nil
}

// Has reports whether ref has a stored result.
func (c *Cache) Has(ref string) bool {
	_, ok := c.entries.Load(ref)
	return ok
}

// Len returns the number of stored references.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// References lists stored references in sorted order.
func (c *Cache) References() []string {
	var refs []string
	c.entries.Range(func(key, _ any) bool {
		refs = append(refs, key.(string))
		return true
	})
	sort.Strings(refs)
	return refs
}
