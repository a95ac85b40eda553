package translate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
	"github.com/goliatone/go-formly/pkg/model"
	"github.com/goliatone/go-formly/pkg/schema"
)

type shape struct {
	Type      string
	MinLength *int
	MaxLength *int
	Pattern   string
	Minimum   *float64
	Maximum   *float64
}

func shapes(node *schema.Node) map[string]shape {
	out := make(map[string]shape, len(node.Properties))
	for _, p := range node.Properties {
		out[p.Name] = shape{
			Type:      p.Schema.Type,
			MinLength: p.Schema.MinLength,
			MaxLength: p.Schema.MaxLength,
			Pattern:   p.Schema.Pattern,
			Minimum:   p.Schema.Minimum,
			Maximum:   p.Schema.Maximum,
		}
	}
	return out
}

func TestRoundTripRepresentableShapes(t *testing.T) {
	minLen, maxLen := 3, 64
	low, high := -2.5, 1e6
	minCount := 1.0
	original := object([]string{"name", "count"},
		prop("name", &schema.Node{Type: schema.TypeString, MinLength: &minLen, MaxLength: &maxLen, Pattern: `^\w+$`}),
		prop("score", &schema.Node{Type: schema.TypeNumber, Minimum: &low, Maximum: &high}),
		prop("count", &schema.Node{Type: schema.TypeInteger, Minimum: &minCount}),
		prop("active", &schema.Node{Type: schema.TypeBoolean}),
	)

	translator := New()
	fields, err := translator.FieldConfigs(original)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	back := translator.AttachToParent(nil, fields)

	if diff := cmp.Diff(original.PropertyNames(), back.PropertyNames()); diff != "" {
		t.Fatalf("property names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(shapes(original), shapes(back)); diff != "" {
		t.Fatalf("property shapes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(original.RequiredSet(), back.RequiredSet()); diff != "" {
		t.Fatalf("required set (-want +got):\n%s", diff)
	}
	for _, p := range back.Properties {
		if _, ok := p.Schema.Extension(ExtensionKey); ok {
			t.Fatalf("%s: representable shapes must not need an extension bag", p.Name)
		}
	}
}

func TestAttachToParentRequiredIsIdempotent(t *testing.T) {
	translator := New()
	configs := []model.FieldConfig{
		{Key: "name", Type: model.TypeInput, Props: &model.Props{Required: model.Bool(true)}},
	}
	parent := &schema.Node{Type: schema.TypeObject, Required: []string{"name"}}

	translator.AttachToParent(parent, configs)
	translator.AttachToParent(parent, configs)

	if diff := cmp.Diff([]string{"name"}, parent.Required); diff != "" {
		t.Fatalf("required (-want +got):\n%s", diff)
	}
	if len(parent.Properties) != 1 {
		t.Fatalf("properties = %v", parent.PropertyNames())
	}
}

func TestToSchemaDirectAttributes(t *testing.T) {
	node := New().ToSchema(model.FieldConfig{
		Key:          "title",
		Type:         model.TypeTextarea,
		DefaultValue: jsonvalue.String("draft"),
		Props: &model.Props{
			Label:       "Title",
			Description: "Shown in lists",
			ReadOnly:    model.Bool(true),
			MaxLength:   model.Int(80),
			Required:    model.Bool(true),
		},
	})
	want := &schema.Node{
		Type:        schema.TypeString,
		Title:       "Title",
		Description: "Shown in lists",
		Default:     jsonvalue.String("draft"),
		ReadOnly:    true,
		MaxLength:   model.Int(80),
	}
	if diff := cmp.Diff(want, node); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestToSchemaUnknownTypeGoesToBag(t *testing.T) {
	node := New().ToSchema(model.FieldConfig{
		Key:      "when",
		Type:     "datepicker",
		Props:    &model.Props{Label: "When", Min: jsonvalue.String("2024-01-01")},
		Wrappers: []string{"panel"},
	})
	if node.Type != schema.TypeObject || node.Title != "When" {
		t.Fatalf("node = %s", node.DebugString())
	}
	bag, ok := node.Extension(ExtensionKey)
	if !ok {
		t.Fatalf("expected x-formly bag")
	}
	want := `{"props":{"min":"2024-01-01"},"type":"datepicker","wrappers":["panel"]}`
	if bag.String() != want {
		t.Fatalf("bag =\n%s\nwant\n%s", bag, want)
	}
}

func TestToSchemaNonNumericBoundStaysInBag(t *testing.T) {
	node := New().ToSchema(model.FieldConfig{
		Key:   "n",
		Type:  model.TypeNumber,
		Props: &model.Props{Min: jsonvalue.String("model.low"), Max: jsonvalue.Int(10)},
	})
	if node.Maximum == nil || *node.Maximum != 10 || node.Minimum != nil {
		t.Fatalf("bounds = %v..%v", node.Minimum, node.Maximum)
	}
	bag, _ := node.Extension(ExtensionKey)
	if got := bag.String(); got != `{"props":{"min":"model.low"}}` {
		t.Fatalf("bag = %s", got)
	}
}

func TestToSchemaOptionsProjectToEnumAndBag(t *testing.T) {
	node := New().ToSchema(model.FieldConfig{
		Key:   "status",
		Type:  model.TypeSelect,
		Props: &model.Props{Options: []model.Option{model.StringOption("a", "Alpha")}},
	})
	if diff := cmp.Diff([]jsonvalue.Value{jsonvalue.String("a")}, node.Enum); diff != "" {
		t.Fatalf("enum (-want +got):\n%s", diff)
	}
	bag, _ := node.Extension(ExtensionKey)
	if got := bag.String(); got != `{"props":{"options":[{"label":"Alpha","value":"a"}]}}` {
		t.Fatalf("bag = %s", got)
	}
}

func TestToSchemaFieldGroup(t *testing.T) {
	node := New().ToSchema(model.FieldConfig{
		Key:  "address",
		Type: "panel",
		FieldGroup: []model.FieldConfig{
			{Key: "street", Type: model.TypeInput, Props: &model.Props{Required: model.Bool(true)}},
			{Template: "divider"},
		},
	})
	if node.Type != schema.TypeObject {
		t.Fatalf("fieldGroup forces object, got %q", node.Type)
	}
	if diff := cmp.Diff([]string{"street"}, node.Required); diff != "" {
		t.Fatalf("required (-want +got):\n%s", diff)
	}
	bag, _ := node.Extension(ExtensionKey)
	if got := bag.String(); got != `{"additionalFields":[{"template":"divider"}],"type":"panel"}` {
		t.Fatalf("bag = %s", got)
	}
}

func TestToSchemaFieldArray(t *testing.T) {
	translator := New()
	arrayNode := translator.ToSchema(model.FieldConfig{
		Key:        "tags",
		Type:       model.TypeArray,
		FieldArray: &model.FieldConfig{Type: model.TypeInput, Props: &model.Props{MaxLength: model.Int(5)}},
	})
	want := &schema.Node{Type: schema.TypeArray, Items: &schema.Node{Type: schema.TypeString, MaxLength: model.Int(5)}}
	if diff := cmp.Diff(want, arrayNode); diff != "" {
		t.Fatalf("array schema (-want +got):\n%s", diff)
	}

	repeat := translator.ToSchema(model.FieldConfig{
		Key:        "r",
		Type:       "repeat",
		FieldArray: &model.FieldConfig{Type: model.TypeInput},
	})
	if repeat.Items != nil {
		t.Fatalf("items only exist for array-tagged fields")
	}
	bag, _ := repeat.Extension(ExtensionKey)
	if got := bag.String(); got != `{"fieldArray":{"type":"input"},"type":"repeat"}` {
		t.Fatalf("bag = %s", got)
	}
}

func TestAttachToParentKeylessConfigs(t *testing.T) {
	parent := New().AttachToParent(nil, []model.FieldConfig{
		{Key: "a", Type: model.TypeInput},
		{Template: "divider"},
	})
	if diff := cmp.Diff([]string{"a"}, parent.PropertyNames()); diff != "" {
		t.Fatalf("properties (-want +got):\n%s", diff)
	}
	bag, _ := parent.Extension(ExtensionKey)
	if got := bag.String(); got != `{"additionalFields":[{"template":"divider"}]}` {
		t.Fatalf("bag = %s", got)
	}

	New().AttachToParent(parent, []model.FieldConfig{{Template: "footer"}})
	bag, _ = parent.Extension(ExtensionKey)
	if got := bag.String(); got != `{"additionalFields":[{"template":"divider"},{"template":"footer"}]}` {
		t.Fatalf("bag after second attach = %s", got)
	}
}

func TestToSchemaOmitsEmptyBag(t *testing.T) {
	node := New().ToSchema(model.FieldConfig{Key: "plain", Type: model.TypeInput, Props: &model.Props{Label: "Plain"}})
	if _, ok := node.Extension(ExtensionKey); ok {
		t.Fatalf("no leftovers means no x-formly bag")
	}
	if node.Extensions != nil {
		t.Fatalf("extensions = %v", node.Extensions)
	}
}

func TestKeylessTopLevelConfigsSurviveRoundTrip(t *testing.T) {
	translator := New()
	parent := translator.AttachToParent(nil, []model.FieldConfig{
		{Key: "name", Type: model.TypeInput, Props: &model.Props{Label: "Name"}},
		{Template: "<hr>"},
	})

	back, err := translator.FieldConfigs(parent)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if diff := cmp.Diff([]string{"name", ""}, keys(back)); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	if back[0].Type != model.TypeInput || back[0].Props.Label != "Name" {
		t.Fatalf("keyed field = %#v", back[0])
	}
	if back[1].Template != "<hr>" {
		t.Fatalf("keyless field = %#v", back[1])
	}
}

func TestKeylessGroupChildrenSurviveRoundTrip(t *testing.T) {
	translator := New()
	parent := translator.AttachToParent(nil, []model.FieldConfig{{
		Key:  "address",
		Type: model.TypeObject,
		FieldGroup: []model.FieldConfig{
			{Key: "street", Type: model.TypeInput, Props: &model.Props{Required: model.Bool(true)}},
			{Template: "divider"},
		},
	}})

	back, err := translator.FieldConfigs(parent)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	address := back[0]
	if address.Type != model.TypeObject {
		t.Fatalf("address type = %q", address.Type)
	}
	if diff := cmp.Diff([]string{"street", ""}, keys(address.FieldGroup)); diff != "" {
		t.Fatalf("fieldGroup keys (-want +got):\n%s", diff)
	}
	if !address.FieldGroup[0].IsRequired() || address.FieldGroup[1].Template != "divider" {
		t.Fatalf("fieldGroup = %#v", address.FieldGroup)
	}
}

func TestLeftoverBagIsReadBackAsOverride(t *testing.T) {
	translator := New()
	parent := translator.AttachToParent(nil, []model.FieldConfig{{
		Key:   "name",
		Type:  model.TypeInput,
		Props: &model.Props{Label: "Name", Placeholder: "Jane", Required: model.Bool(true)},
	}})
	bag, _ := parent.Properties[0].Schema.Extension(ExtensionKey)
	if got := bag.String(); got != `{"props":{"placeholder":"Jane"}}` {
		t.Fatalf("bag = %s", got)
	}

	back, err := translator.FieldConfigs(parent)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	name := back[0]
	if name.Key != "name" || name.Type != "" {
		t.Fatalf("override keeps only the bag, got %#v", name)
	}
	if name.Props == nil || name.Props.Placeholder != "Jane" || name.Props.Label != "" || name.Props.Required != nil {
		t.Fatalf("props = %#v", name.Props)
	}
}

func TestAdditionalFieldsMustBeAnArray(t *testing.T) {
	node := object(nil, prop("a", str()))
	node.SetExtension(ExtensionKey, jsonvalue.MustParse(`{"additionalFields":{"template":"x"}}`))

	_, err := New().FieldConfigs(node)
	var parseErr *ExtensionParseError
	if !errors.As(err, &parseErr) || parseErr.Path != AdditionalFieldsKey {
		t.Fatalf("expected ExtensionParseError at %s, got %v", AdditionalFieldsKey, err)
	}
	if !errors.Is(err, model.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
