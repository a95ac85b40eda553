package model

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
)

func TestBuilderAssemblesTree(t *testing.T) {
	fields, err := NewBuilder().
		Field("name", func(f *FieldBuilder) {
			f.Type(TypeInput).Label("Name").Required(true).MaxLength(40)
		}).
		Group("address", func(b *Builder) {
			b.Field("city", func(f *FieldBuilder) { f.Type(TypeInput) })
		}).
		Array("tags", func(b *Builder) {
			b.Field("value", func(f *FieldBuilder) { f.Type(TypeInput).Placeholder("tag") })
		}).
		Field("status", func(f *FieldBuilder) {
			f.Type(TypeSelect).Options(StringOption("on", "On"), StringOption("off", "Off")).DefaultValue("on")
		}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []FieldConfig{
		{Key: "name", Type: TypeInput, Props: &Props{Label: "Name", Required: Bool(true), MaxLength: Int(40)}},
		{Key: "address", Type: TypeObject, FieldGroup: []FieldConfig{{Key: "city", Type: TypeInput}}},
		{Key: "tags", Type: TypeArray, FieldArray: &FieldConfig{
			FieldGroup: []FieldConfig{{Key: "value", Type: TypeInput, Props: &Props{Placeholder: "tag"}}},
		}},
		{
			Key:          "status",
			Type:         TypeSelect,
			DefaultValue: jsonvalue.String("on"),
			Props:        &Props{Options: []Option{StringOption("on", "On"), StringOption("off", "Off")}},
		},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderReturnsIndependentCopies(t *testing.T) {
	b := NewBuilder().Field("a", func(f *FieldBuilder) { f.Label("A") })
	first := b.MustBuild()
	first[0].Props.Label = "mutated"

	second := b.MustBuild()
	if second[0].Props.Label != "A" {
		t.Fatalf("builder state leaked through a previous result")
	}
}

func TestFieldBuilderI18nAndHooks(t *testing.T) {
	field, err := NewFieldBuilder("email").
		LabelKey("email.label").
		Locale("en").
		ValidationMessageKey("required", "errors.required").
		TranslationKey("hint", "email.hint").
		Hook("onInit", "initEmail").
		ExpressionProperty("props.disabled", "!model.enabled").
		Debounce(250).
		UpdateOn("blur").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	i18n := field.Props.I18n
	if i18n.LabelKey != "email.label" || i18n.Locale != "en" {
		t.Fatalf("i18n = %#v", i18n)
	}
	if i18n.ValidationMessages["required"] != "errors.required" {
		t.Fatalf("validation message key missing")
	}
	if got := i18n.Additional["hint"]; !got.Equal(jsonvalue.String("email.hint")) {
		t.Fatalf("translation key = %v", got)
	}
	if field.Hooks.OnInit != "initEmail" {
		t.Fatalf("hook missing")
	}
	if *field.ModelOptions.Debounce != 250 || field.ModelOptions.UpdateOn != "blur" {
		t.Fatalf("model options = %#v", field.ModelOptions)
	}
}

func TestBuilderCollectsErrors(t *testing.T) {
	_, err := NewBuilder().
		Field("bad", func(f *FieldBuilder) { f.DefaultValue(make(chan int)) }).
		Group("g", func(b *Builder) {
			b.Field("hooked", func(f *FieldBuilder) { f.Hook("onExplode", "x") })
		}).
		Build()
	if err == nil {
		t.Fatalf("expected builder errors")
	}
}

func TestBuildJSON(t *testing.T) {
	data, err := NewBuilder().
		Field("n", func(f *FieldBuilder) { f.Type(TypeNumber).Min(0).Max(2.5) }).
		BuildJSON()
	if err != nil {
		t.Fatalf("build json: %v", err)
	}
	want := `[{"key":"n","type":"number","props":{"min":0,"max":2.5}}]`
	if string(data) != want {
		t.Fatalf("json =\n%s\nwant\n%s", data, want)
	}
}

func TestBuilderRejectsDuplicateSiblingKeys(t *testing.T) {
	_, err := NewBuilder().
		Field("email", nil).
		Group("address", func(b *Builder) {
			b.Field("city", nil).Field("city", nil)
		}).
		Field("email", nil).
		Build()
	if err == nil {
		t.Fatalf("expected duplicate key errors")
	}
	for _, fragment := range []string{`<root>: duplicate key "email"`, `address: duplicate key "city"`} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q does not mention %s", err, fragment)
		}
	}
}
