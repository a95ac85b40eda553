package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
	"github.com/goliatone/go-formly/pkg/model"
)

// Transformer customises a freshly translated field tree before it is stored.
// Implementations may rewrite the slice or the fields in place.
type Transformer interface {
	Transform(ctx context.Context, fields *[]model.FieldConfig) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, fields *[]model.FieldConfig) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, fields *[]model.FieldConfig) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, fields)
}

// JSONPresetTransformer applies declarative per-field patches loaded from
// JSON. Paths are dotted keys through fieldGroup; an "items" segment steps
// into a fieldArray:
//
//	{
//	  "fields": {
//	    "email": {"label": "E-mail", "type": "email", "wrappers": ["panel"]},
//	    "members.items.role": {"placeholder": "Owner", "props": {"appearance": "outline"}}
//	  }
//	}
type JSONPresetTransformer struct {
	paths   []string
	patches map[string]jsonFieldPatch
}

type jsonTransformDocument struct {
	Fields map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label       *string                    `json:"label"`
	Placeholder *string                    `json:"placeholder"`
	Description *string                    `json:"description"`
	Rename      string                     `json:"rename"`
	Type        string                     `json:"type"`
	Wrappers    []string                   `json:"wrappers"`
	Required    *bool                      `json:"required"`
	Hide        *bool                      `json:"hide"`
	Props       map[string]jsonvalue.Value `json:"props"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	paths := make([]string, 0, len(document.Fields))
	for path := range document.Fields {
		if strings.TrimSpace(path) == "" {
			return nil, errors.New("json preset transformer: empty field path")
		}
		paths = append(paths, path)
	}
	// Deeper paths first so a parent rename does not hide its children.
	sort.Slice(paths, func(i, j int) bool {
		di, dj := strings.Count(paths[i], "."), strings.Count(paths[j], ".")
		if di != dj {
			return di > dj
		}
		return paths[i] < paths[j]
	})
	return &JSONPresetTransformer{paths: paths, patches: document.Fields}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the patches. Every path must name an existing field.
func (t *JSONPresetTransformer) Transform(ctx context.Context, fields *[]model.FieldConfig) error {
	if fields == nil {
		return errors.New("json preset transformer: field list is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, path := range t.paths {
		field := findFieldByPath(*fields, path)
		if field == nil {
			return fmt.Errorf("json preset transformer: field %q not found", path)
		}
		if err := applyFieldPatch(field, t.patches[path]); err != nil {
			return fmt.Errorf("json preset transformer: field %q: %w", path, err)
		}
	}
	return nil
}

func applyFieldPatch(field *model.FieldConfig, patch jsonFieldPatch) error {
	if len(patch.Props) > 0 {
		if err := mergeProps(field, patch.Props); err != nil {
			return err
		}
	}
	if patch.Label != nil {
		field.EnsureProps().Label = *patch.Label
	}
	if patch.Placeholder != nil {
		field.EnsureProps().Placeholder = *patch.Placeholder
	}
	if patch.Description != nil {
		field.EnsureProps().Description = *patch.Description
	}
	if patch.Required != nil {
		field.EnsureProps().Required = model.Bool(*patch.Required)
	}
	if patch.Hide != nil {
		field.Hide = model.Bool(*patch.Hide)
	}
	if patch.Type != "" {
		field.Type = patch.Type
	}
	if len(patch.Wrappers) > 0 {
		field.Wrappers = append([]string(nil), patch.Wrappers...)
	}
	if name := strings.TrimSpace(patch.Rename); name != "" {
		field.Key = name
	}
	return nil
}

// mergeProps overlays patch onto the wire form of field.props and decodes the
// result, so known props land in their typed fields and others in Additional.
func mergeProps(field *model.FieldConfig, patch map[string]jsonvalue.Value) error {
	encoded, err := model.ToValue(*field)
	if err != nil {
		return err
	}
	attrs := encoded.Fields()
	props := map[string]jsonvalue.Value{}
	if existing, ok := attrs["props"]; ok {
		props = existing.Fields()
	}
	for key, value := range patch {
		props[key] = value.Clone()
	}
	attrs["props"] = jsonvalue.Object(props)

	decoded, err := model.DecodeValue(jsonvalue.Object(attrs))
	if err != nil {
		return err
	}
	*field = decoded[0]
	return nil
}

func findFieldByPath(fields []model.FieldConfig, path string) *model.FieldConfig {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return walkFieldsByPath(fields, strings.Split(path, "."))
}

func walkFieldsByPath(fields []model.FieldConfig, segments []string) *model.FieldConfig {
	if len(segments) == 0 {
		return nil
	}
	for idx := range fields {
		field := &fields[idx]
		if field.Key != segments[0] {
			continue
		}
		return descend(field, segments[1:])
	}
	return nil
}

func descend(field *model.FieldConfig, segments []string) *model.FieldConfig {
	if len(segments) == 0 {
		return field
	}
	if segments[0] == model.ArrayPathSegment && field.FieldArray != nil {
		return descend(field.FieldArray, segments[1:])
	}
	return walkFieldsByPath(field.FieldGroup, segments)
}
