package orchestrator_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formly/internal/openapi/loader"
	"github.com/goliatone/go-formly/pkg/model"
	pkgopenapi "github.com/goliatone/go-formly/pkg/openapi"
	"github.com/goliatone/go-formly/pkg/orchestrator"
	"github.com/goliatone/go-formly/pkg/schema"
)

const userRef = "#/components/schemas/User"

func userDocument() *schema.Components {
	doc := schema.NewComponents()
	doc.Add("User", &schema.Node{
		Type:     schema.TypeObject,
		Required: []string{"name"},
		Properties: []schema.Property{
			{Name: "id", Schema: &schema.Node{Type: schema.TypeInteger}},
			{Name: "name", Schema: &schema.Node{Type: schema.TypeString}},
			{Name: "email", Schema: &schema.Node{Type: schema.TypeString}},
		},
	})
	return doc
}

func keys(fields []model.FieldConfig) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Key
	}
	return out
}

func relabel(key, label string) orchestrator.Transformer {
	return orchestrator.TransformerFunc(func(_ context.Context, fields *[]model.FieldConfig) error {
		for i := range *fields {
			if (*fields)[i].Key == key {
				(*fields)[i].EnsureProps().Label = label
			}
		}
		return nil
	})
}

func TestAddSchemaStoresTranslatedFields(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithDocument(userDocument()))

	if _, ok := orch.FieldConfigs(userRef); ok {
		t.Fatalf("FieldConfigs must not resolve references lazily")
	}
	if err := orch.AddSchema(context.Background(), userRef); err != nil {
		t.Fatalf("add schema: %v", err)
	}
	fields, ok := orch.FieldConfigs(userRef)
	if !ok {
		t.Fatalf("expected stored fields")
	}
	if diff := cmp.Diff([]string{"id", "name", "email"}, keys(fields)); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{userRef}, orch.References()); diff != "" {
		t.Fatalf("references (-want +got):\n%s", diff)
	}

	data, err := orch.EncodeJSON(userRef)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := model.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(fields, decoded); diff != "" {
		t.Fatalf("encoded payload (-want +got):\n%s", diff)
	}
}

func TestAddSchemaAppliesTransformersOnce(t *testing.T) {
	var order []string
	record := func(name string) orchestrator.Transformer {
		return orchestrator.TransformerFunc(func(context.Context, *[]model.FieldConfig) error {
			order = append(order, name)
			return nil
		})
	}
	orch := orchestrator.New(
		orchestrator.WithDocument(userDocument()),
		orchestrator.WithTransformers(record("default")),
	)

	if err := orch.AddSchema(context.Background(), userRef, record("call"), relabel("name", "Full name")); err != nil {
		t.Fatalf("add schema: %v", err)
	}
	if err := orch.AddSchema(context.Background(), userRef, relabel("name", "Ignored")); err != nil {
		t.Fatalf("second add: %v", err)
	}

	if diff := cmp.Diff([]string{"default", "call"}, order); diff != "" {
		t.Fatalf("transformer order (-want +got):\n%s", diff)
	}
	if got := orch.MustFieldConfigs(userRef)[1].Props.Label; got != "Full name" {
		t.Fatalf("label = %q, first computation must win", got)
	}
}

func TestAddSchemaDoesNotMutateCachedTranslation(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithDocument(userDocument()))
	if err := orch.AddSchema(context.Background(), userRef, relabel("name", "Changed")); err != nil {
		t.Fatalf("add schema: %v", err)
	}
	cache, err := orch.Cache(context.Background())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	cached, err := cache.FieldConfigs(userRef)
	if err != nil {
		t.Fatalf("cached fields: %v", err)
	}
	if got := cached[1].Props.Label; got != "name" {
		t.Fatalf("cached label = %q, transformers must work on a copy", got)
	}
}

func TestAddSchemaFailuresAreNotStored(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithDocument(userDocument()))
	boom := errors.New("boom")
	failing := orchestrator.TransformerFunc(func(context.Context, *[]model.FieldConfig) error { return boom })

	if err := orch.AddSchema(context.Background(), userRef, failing); !errors.Is(err, boom) {
		t.Fatalf("expected transformer error, got %v", err)
	}
	if _, ok := orch.FieldConfigs(userRef); ok {
		t.Fatalf("failed computation must not be stored")
	}
	if err := orch.AddSchema(context.Background(), userRef); err != nil {
		t.Fatalf("retry: %v", err)
	}

	err := orch.AddSchema(context.Background(), "#/components/schemas/DoesNotExist")
	if !errors.Is(err, schema.ErrSchemaNotFound) {
		t.Fatalf("expected ErrSchemaNotFound, got %v", err)
	}
	if _, err := orch.EncodeJSON("#/components/schemas/DoesNotExist"); !errors.Is(err, orchestrator.ErrSchemaNotAdded) {
		t.Fatalf("expected ErrSchemaNotAdded, got %v", err)
	}
}

func TestMustFieldConfigsPanicsForUnknownReference(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	orchestrator.New(orchestrator.WithDocument(userDocument())).MustFieldConfigs(userRef)
}

func TestAddSchemaLoadsDocumentFromSource(t *testing.T) {
	files := fstest.MapFS{"api.yaml": {Data: []byte(`openapi: 3.0.3
info:
  title: Users
  version: "1"
paths: {}
components:
  schemas:
    User:
      type: object
      properties:
        nickname:
          type: string
        age:
          type: integer
`)}}
	orch := orchestrator.New(
		orchestrator.WithSource(pkgopenapi.SourceFromFS("api.yaml")),
		orchestrator.WithLoader(loader.New(pkgopenapi.NewLoaderOptions(pkgopenapi.WithFileSystem(files)))),
	)
	if err := orch.AddSchema(context.Background(), userRef); err != nil {
		t.Fatalf("add schema: %v", err)
	}
	if diff := cmp.Diff([]string{"nickname", "age"}, keys(orch.MustFieldConfigs(userRef))); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
}

func TestAddSchemaRequiresDocument(t *testing.T) {
	if err := orchestrator.New().AddSchema(context.Background(), userRef); err == nil {
		t.Fatalf("expected error without document or source")
	}
	if err := orchestrator.New().AddSchema(nil, userRef); err == nil {
		t.Fatalf("expected error for nil context")
	}
}

func TestAddSchemaConcurrentCallsComputeOnce(t *testing.T) {
	var calls atomic.Int32
	counting := orchestrator.TransformerFunc(func(context.Context, *[]model.FieldConfig) error {
		calls.Add(1)
		return nil
	})
	orch := orchestrator.New(
		orchestrator.WithDocument(userDocument()),
		orchestrator.WithTransformers(counting),
	)

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = orch.AddSchema(context.Background(), userRef)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
	first, _ := orch.FieldConfigs(userRef)
	second, _ := orch.FieldConfigs(userRef)
	assert.Same(t, &first[0], &second[0])
}
