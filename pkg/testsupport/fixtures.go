// Package testsupport holds fixture and golden-file helpers shared by tests.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	internalParser "github.com/goliatone/go-formly/internal/openapi/parser"
	"github.com/goliatone/go-formly/pkg/jsonvalue"
	"github.com/goliatone/go-formly/pkg/model"
	pkgopenapi "github.com/goliatone/go-formly/pkg/openapi"
	"github.com/goliatone/go-formly/pkg/schema"
)

// LoadDocument reads a fixture into a Document with a file source.
func LoadDocument(t *testing.T, path string) pkgopenapi.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T.
func LoadDocumentFromPath(path string) (pkgopenapi.Document, error) {
	if path == "" {
		return pkgopenapi.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFile(path), data)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc, nil
}

// MustParseComponents parses an inline OpenAPI document with the built-in
// parser.
func MustParseComponents(t *testing.T, raw string, options ...pkgopenapi.ParserOption) *schema.Components {
	t.Helper()

	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFS("inline.yaml"), []byte(raw))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return mustParse(t, doc, options...)
}

// MustLoadComponents parses a fixture file with the built-in parser.
func MustLoadComponents(t *testing.T, path string, options ...pkgopenapi.ParserOption) *schema.Components {
	t.Helper()
	return mustParse(t, LoadDocument(t, path), options...)
}

func mustParse(t *testing.T, doc pkgopenapi.Document, options ...pkgopenapi.ParserOption) *schema.Components {
	t.Helper()

	components, err := internalParser.New(pkgopenapi.NewParserOptions(options...)).Schemas(Context(), doc)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return components
}

// MustLoadFieldConfigs decodes a JSON fixture holding a field list.
func MustLoadFieldConfigs(t *testing.T, path string) []model.FieldConfig {
	t.Helper()

	fields, err := model.Decode(MustReadGolden(t, path))
	if err != nil {
		t.Fatalf("decode field configs: %v", err)
	}
	return fields
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// AssertGoldenJSON compares got with the JSON golden at path. Key order and
// number spelling are ignored. With UPDATE_GOLDENS set the golden is
// rewritten instead.
func AssertGoldenJSON(t *testing.T, path string, got []byte) {
	t.Helper()

	if WriteMaybeGolden(t, path, indent(t, got)) {
		return
	}
	want := MustReadGolden(t, path)
	wantValue, err := jsonvalue.Parse(want)
	if err != nil {
		t.Fatalf("parse golden %s: %v", path, err)
	}
	gotValue, err := jsonvalue.Parse(got)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if !wantValue.Equal(gotValue) {
		t.Fatalf("output mismatch for %s (-want +got):\n%s", path, CompareGolden(string(indent(t, want)), string(indent(t, got))))
	}
}

func indent(t *testing.T, data []byte) []byte {
	t.Helper()
	value, err := jsonvalue.Parse(data)
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	out, err := json.MarshalIndent(value.Any(), "", "  ")
	if err != nil {
		t.Fatalf("indent json: %v", err)
	}
	return append(out, '\n')
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
