package formly_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	formly "github.com/goliatone/go-formly"
	"github.com/goliatone/go-formly/pkg/jsonvalue"
	pkgopenapi "github.com/goliatone/go-formly/pkg/openapi"
	"github.com/goliatone/go-formly/pkg/orchestrator"
	"github.com/goliatone/go-formly/pkg/testsupport"
	"github.com/goliatone/go-formly/pkg/translate"
)

var petstore = filepath.Join("testdata", "petstore.yaml")

func TestPetFieldConfigsGolden(t *testing.T) {
	ctx := testsupport.Context()
	components, err := formly.LoadComponents(ctx, pkgopenapi.SourceFromFile(petstore), nil, nil)
	if err != nil {
		t.Fatalf("load components: %v", err)
	}
	if diff := cmp.Diff([]string{"Pet", "Owner"}, components.Names()); diff != "" {
		t.Fatalf("components (-want +got):\n%s", diff)
	}

	orch := formly.NewOrchestrator(orchestrator.WithDocument(components))
	const ref = "#/components/schemas/Pet"
	if err := orch.AddSchema(ctx, ref); err != nil {
		t.Fatalf("add schema: %v", err)
	}
	output, err := orch.EncodeJSON(ref)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	testsupport.AssertGoldenJSON(t, filepath.Join("testdata", "pet.golden.json"), output)
}

func TestOwnerOverridesFromSource(t *testing.T) {
	ctx := testsupport.Context()
	orch := formly.NewOrchestrator(orchestrator.WithSource(pkgopenapi.SourceFromFile(petstore)))
	const ref = "#/components/schemas/Owner"
	if err := orch.AddSchema(ctx, ref); err != nil {
		t.Fatalf("add schema: %v", err)
	}
	fields := orch.MustFieldConfigs(ref)

	email := fields[0]
	if email.Key != "email" || email.Props.Label != "E-mail" {
		t.Fatalf("email = %#v", email)
	}
	if got := email.Props.Additional["type"]; !got.Equal(jsonvalue.String("email")) {
		t.Fatalf("override props.type = %v", got)
	}

	pets := fields[1]
	if pets.FieldArray == nil || pets.FieldArray.Type != "input" {
		t.Fatalf("referenced items fall back to input, got %#v", pets.FieldArray)
	}
}

func TestReverseSchemaValidates(t *testing.T) {
	ctx := testsupport.Context()
	components := testsupport.MustLoadComponents(t, petstore)
	pet, _ := components.LookupSchema("Pet")

	translator := translate.New()
	fields, err := translator.FieldConfigs(pet)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	back := translator.AttachToParent(nil, fields)
	if err := formly.ValidateSchema(ctx, back); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if diff := cmp.Diff(pet.PropertyNames(), back.PropertyNames()); diff != "" {
		t.Fatalf("properties (-want +got):\n%s", diff)
	}
}

func TestGoldenFieldsRebuildPetSchema(t *testing.T) {
	fields := testsupport.MustLoadFieldConfigs(t, filepath.Join("testdata", "pet.golden.json"))
	back := translate.New().AttachToParent(nil, fields)
	if err := formly.ValidateSchema(testsupport.Context(), back); err != nil {
		t.Fatalf("validate: %v", err)
	}

	types := map[string]string{}
	for _, p := range back.Properties {
		types[p.Name] = p.Schema.Type
	}
	want := map[string]string{"name": "string", "age": "integer", "status": "string", "tags": "array"}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Fatalf("property types (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name"}, back.Required); diff != "" {
		t.Fatalf("required (-want +got):\n%s", diff)
	}
}

func TestInlineDocumentWithoutValidation(t *testing.T) {
	components := testsupport.MustParseComponents(t, `
openapi: 3.0.3
info: {title: Inline, version: "1"}
paths: {}
components:
  schemas:
    Note:
      type: object
      properties:
        body: {type: string, x-formly: {type: textarea, props: {rows: 6}}}
        pinned: {type: boolean}
`, pkgopenapi.WithValidation(false))

	orch := formly.NewOrchestrator(orchestrator.WithDocument(components))
	const ref = "#/components/schemas/Note"
	if err := orch.AddSchema(testsupport.Context(), ref); err != nil {
		t.Fatalf("add schema: %v", err)
	}
	fields := orch.MustFieldConfigs(ref)
	if fields[0].Type != "textarea" || fields[0].Props.Rows == nil || *fields[0].Props.Rows != 6 {
		t.Fatalf("body = %#v", fields[0])
	}
	if fields[1].Type != "checkbox" {
		t.Fatalf("pinned type = %q", fields[1].Type)
	}
}
