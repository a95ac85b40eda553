package resolver

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
	"github.com/goliatone/go-formly/pkg/model"
	"github.com/goliatone/go-formly/pkg/schema"
	"github.com/goliatone/go-formly/pkg/translate"
)

type countingTranslator struct {
	calls atomic.Int32
	fail  atomic.Bool
	gate  chan struct{}
	inner *translate.Translator
}

func (c *countingTranslator) FieldConfigs(node *schema.Node) ([]model.FieldConfig, error) {
	c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	if c.fail.Load() {
		return nil, errors.New("boom")
	}
	return c.inner.FieldConfigs(node)
}

func userDocument() *schema.Components {
	doc := schema.NewComponents()
	doc.Add("User", &schema.Node{
		Type:     schema.TypeObject,
		Required: []string{"name"},
		Properties: []schema.Property{
			{Name: "id", Schema: &schema.Node{Type: schema.TypeInteger}},
			{Name: "name", Schema: &schema.Node{Type: schema.TypeString}},
		},
	})
	return doc
}

const userRef = "#/components/schemas/User"

func TestCacheReturnsIdenticalResultAndTranslatesOnce(t *testing.T) {
	translator := &countingTranslator{inner: translate.New()}
	cache := New(userDocument(), WithTranslator(translator))

	first, err := cache.FieldConfigs(userRef)
	require.NoError(t, err)
	second, err := cache.FieldConfigs(userRef)
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Same(t, &first[0], &second[0], "results must be reference identical")
	assert.Equal(t, int32(1), translator.calls.Load())
	assert.True(t, cache.Has(userRef))
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, []string{userRef}, cache.References())
}

func TestCacheConcurrentFirstCallsShareOneComputation(t *testing.T) {
	translator := &countingTranslator{inner: translate.New(), gate: make(chan struct{})}
	cache := New(userDocument(), WithTranslator(translator))

	const callers = 32
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		results = make([][]model.FieldConfig, callers)
		errs    = make([]error, callers)
	)
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i], errs[i] = cache.FieldConfigs(userRef)
		}(i)
	}
	started.Wait()
	close(translator.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, &results[0][0], &results[i][0])
	}
	assert.Equal(t, int32(1), translator.calls.Load())
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	translator := &countingTranslator{inner: translate.New()}
	translator.fail.Store(true)
	cache := New(userDocument(), WithTranslator(translator))

	_, err := cache.FieldConfigs(userRef)
	require.Error(t, err)
	assert.False(t, cache.Has(userRef))

	translator.fail.Store(false)
	fields, err := cache.FieldConfigs(userRef)
	require.NoError(t, err)
	assert.Len(t, fields, 2)
	assert.Equal(t, int32(2), translator.calls.Load())
}

func TestCacheUnknownReferenceFailsEveryTime(t *testing.T) {
	cache := New(userDocument())
	for i := 0; i < 3; i++ {
		fields, err := cache.FieldConfigs("#/components/schemas/DoesNotExist")
		require.ErrorIs(t, err, schema.ErrSchemaNotFound)
		assert.Nil(t, fields)
	}
	assert.Equal(t, 0, cache.Len())
}

func TestCacheInvalidReference(t *testing.T) {
	_, err := New(userDocument()).FieldConfigs("not-a-pointer")
	require.ErrorIs(t, err, schema.ErrInvalidReference)
}

func TestCacheAttachesReferenceToExtensionErrors(t *testing.T) {
	doc := schema.NewComponents()
	broken := &schema.Node{Type: schema.TypeObject}
	broken.SetExtension(translate.ExtensionKey, jsonvalue.MustParse(`{"0":{"key":"a"}}`))
	doc.Add("Broken", broken)

	core, logs := observer.New(zap.DebugLevel)
	cache := New(doc, WithLogger(zap.New(core)))

	_, err := cache.FieldConfigs("#/components/schemas/Broken")
	var parseErr *translate.ExtensionParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "#/components/schemas/Broken", parseErr.Ref)
	assert.ErrorIs(t, err, translate.ErrExtensionParse)
	assert.Equal(t, 1, logs.FilterMessage("field config translation failed").Len())
}
