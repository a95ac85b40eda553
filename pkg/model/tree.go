package model

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/multierr"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
)

// ArrayPathSegment is the path segment that steps from an array field into
// its item template.
const ArrayPathSegment = "items"

// SkipChildren may be returned by a WalkFunc to skip the descendants of the
// current node without stopping the walk.
var SkipChildren = errors.New("model: skip children")

// WalkFunc is invoked for every node of a tree. path is the dotted key path
// from the root; keyless nodes contribute their sibling index.
type WalkFunc func(path string, field *FieldConfig) error

// Walk visits every node depth first, parents before children. Fields may be
// modified in place. The first error other than SkipChildren stops the walk.
func Walk(fields []FieldConfig, fn WalkFunc) error {
	return walk(fields, "", fn)
}

func walk(fields []FieldConfig, prefix string, fn WalkFunc) error {
	for i := range fields {
		field := &fields[i]
		segment := field.Key
		if segment == "" {
			segment = strconv.Itoa(i)
		}
		if err := walkOne(field, joinPath(prefix, segment), fn); err != nil {
			return err
		}
	}
	return nil
}

func walkOne(field *FieldConfig, path string, fn WalkFunc) error {
	if err := fn(path, field); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	if err := walk(field.FieldGroup, path, fn); err != nil {
		return err
	}
	if field.FieldArray != nil {
		return walkOne(field.FieldArray, joinPath(path, ArrayPathSegment), fn)
	}
	return nil
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}

// Clone deep-copies a field list.
func Clone(fields []FieldConfig) []FieldConfig {
	if fields == nil {
		return nil
	}
	out := make([]FieldConfig, len(fields))
	for i := range fields {
		out[i] = fields[i].Clone()
	}
	return out
}

// Clone deep-copies the field and its descendants.
func (fc FieldConfig) Clone() FieldConfig {
	out := fc
	out.DefaultValue = fc.DefaultValue.Clone()
	out.HideExpression = fc.HideExpression.Clone()
	out.Props = fc.Props.Clone()
	out.Validators = cloneValueMap(fc.Validators)
	out.AsyncValidators = cloneValueMap(fc.AsyncValidators)
	out.ExpressionProperties = cloneValueMap(fc.ExpressionProperties)
	if fc.Validation != nil {
		v := *fc.Validation
		v.Messages = cloneStringMap(fc.Validation.Messages)
		v.Show = cloneBool(fc.Validation.Show)
		out.Validation = &v
	}
	out.Hide = cloneBool(fc.Hide)
	out.Focus = cloneBool(fc.Focus)
	out.Wrappers = cloneStrings(fc.Wrappers)
	out.Parsers = cloneStrings(fc.Parsers)
	if fc.ModelOptions != nil {
		m := *fc.ModelOptions
		m.Debounce = cloneInt(fc.ModelOptions.Debounce)
		out.ModelOptions = &m
	}
	if fc.Hooks != nil {
		h := *fc.Hooks
		out.Hooks = &h
	}
	if fc.Lifecycle != nil {
		l := *fc.Lifecycle
		out.Lifecycle = &l
	}
	out.FieldGroup = Clone(fc.FieldGroup)
	if fc.FieldArray != nil {
		item := fc.FieldArray.Clone()
		out.FieldArray = &item
	}
	return out
}

// Clone deep-copies the props bag.
func (p *Props) Clone() *Props {
	if p == nil {
		return nil
	}
	out := *p
	out.Required = cloneBool(p.Required)
	out.Disabled = cloneBool(p.Disabled)
	out.ReadOnly = cloneBool(p.ReadOnly)
	out.Min = p.Min.Clone()
	out.Max = p.Max.Clone()
	out.Step = p.Step.Clone()
	out.MinLength = cloneInt(p.MinLength)
	out.MaxLength = cloneInt(p.MaxLength)
	out.Rows = cloneInt(p.Rows)
	out.Cols = cloneInt(p.Cols)
	out.TabIndex = cloneInt(p.TabIndex)
	if p.Options != nil {
		out.Options = make([]Option, len(p.Options))
		for i, opt := range p.Options {
			out.Options[i] = Option{Value: opt.Value.Clone(), Label: opt.Label}
		}
	}
	if p.I18n != nil {
		i18n := *p.I18n
		i18n.ValidationMessages = cloneStringMap(p.I18n.ValidationMessages)
		i18n.Additional = cloneValueMap(p.I18n.Additional)
		out.I18n = &i18n
	}
	out.Additional = cloneValueMap(p.Additional)
	return &out
}

var scalarTypes = map[string]struct{}{
	TypeInput:         {},
	TypeTextarea:      {},
	TypeNumber:        {},
	TypeInteger:       {},
	TypeCheckbox:      {},
	TypeBoolean:       {},
	TypeSelect:        {},
	TypeRadio:         {},
	TypeMultiCheckbox: {},
}

// Validate checks structural consistency of a field list. All problems are
// reported together.
func Validate(fields []FieldConfig) error {
	var errs error
	errs = multierr.Append(errs, validateSiblings(fields, ""))
	walkErr := Walk(fields, func(path string, field *FieldConfig) error {
		if len(field.FieldGroup) > 0 {
			if _, scalar := scalarTypes[field.Type]; scalar {
				errs = multierr.Append(errs, fmt.Errorf("model: %s: fieldGroup on scalar type %q", path, field.Type))
			}
			errs = multierr.Append(errs, validateSiblings(field.FieldGroup, path))
		}
		if field.Props != nil {
			for i, opt := range field.Props.Options {
				if opt.Value.IsZero() || opt.Value.IsNull() {
					errs = multierr.Append(errs, fmt.Errorf("model: %s: option %d has no value", path, i))
				}
			}
		}
		return nil
	})
	return multierr.Append(errs, walkErr)
}

func validateSiblings(fields []FieldConfig, path string) error {
	var errs error
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		if _, dup := seen[field.Key]; dup {
			errs = multierr.Append(errs, fmt.Errorf("model: %s: duplicate key %q", displayPath(path), field.Key))
			continue
		}
		seen[field.Key] = struct{}{}
	}
	return errs
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

func cloneValueMap(in map[string]jsonvalue.Value) map[string]jsonvalue.Value {
	if in == nil {
		return nil
	}
	out := make(map[string]jsonvalue.Value, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneBool(in *bool) *bool {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneInt(in *int) *int {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
