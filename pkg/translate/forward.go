package translate

import (
	"errors"
	"fmt"
	"math"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
	"github.com/goliatone/go-formly/pkg/model"
	"github.com/goliatone/go-formly/pkg/schema"
)

// FieldConfigs translates an object schema into its member fields, one per
// property in document order. An x-formly payload on the node replaces the
// structural walk entirely. Keyless configs stored under additionalFields are
// appended after the fields; a payload holding nothing else keeps the
// structural walk.
func (t *Translator) FieldConfigs(node *schema.Node) ([]model.FieldConfig, error) {
	if node == nil {
		return nil, errors.New("translate: schema node is nil")
	}
	payload, ok := node.Extension(ExtensionKey)
	if !ok {
		return t.members(node, "")
	}
	rest, additional, err := splitAdditional(payload, "")
	if err != nil {
		return nil, err
	}
	var fields []model.FieldConfig
	if rest.IsZero() {
		if fields, err = t.members(node, ""); err != nil {
			return nil, err
		}
	} else if fields, err = model.DecodeValue(rest); err != nil {
		return nil, &ExtensionParseError{Err: err}
	}
	return append(fields, additional...), nil
}

// Field translates one property schema. required is the enclosing object's
// required set.
func (t *Translator) Field(name string, node *schema.Node, required map[string]struct{}) (model.FieldConfig, error) {
	return t.field(name, node, required, name)
}

func (t *Translator) members(node *schema.Node, path string) ([]model.FieldConfig, error) {
	required := node.RequiredSet()
	fields := make([]model.FieldConfig, 0, len(node.Properties))
	for _, prop := range node.Properties {
		field, err := t.field(prop.Name, prop.Schema, required, joinPath(path, prop.Name))
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (t *Translator) field(name string, node *schema.Node, required map[string]struct{}, path string) (model.FieldConfig, error) {
	if node == nil {
		node = &schema.Node{}
	}
	payload, ok := node.Extension(ExtensionKey)
	if !ok {
		return t.structural(name, node, required, path)
	}
	rest, additional, err := splitAdditional(payload, path)
	if err != nil {
		return model.FieldConfig{}, err
	}
	var field model.FieldConfig
	if rest.IsZero() {
		field, err = t.structural(name, node, required, path)
	} else {
		field, err = overrideField(name, rest, path)
	}
	if err != nil {
		return model.FieldConfig{}, err
	}
	field.FieldGroup = append(field.FieldGroup, additional...)
	return field, nil
}

func (t *Translator) structural(name string, node *schema.Node, required map[string]struct{}, path string) (model.FieldConfig, error) {
	field := model.FieldConfig{Key: name, Type: FieldType(node.Type)}
	props := &model.Props{Label: t.label(name, node.Title)}
	if node.Description != "" {
		props.Description = t.text(node.Description)
	}
	if name != "" {
		_, isRequired := required[name]
		props.Required = model.Bool(isRequired)
	}
	if node.ReadOnly {
		props.ReadOnly = model.Bool(true)
	}
	if !node.Default.IsZero() {
		field.DefaultValue = node.Default.Clone()
	}

	if node.MinLength != nil {
		props.MinLength = model.Int(*node.MinLength)
	}
	if node.MaxLength != nil {
		props.MaxLength = model.Int(*node.MaxLength)
	}
	props.Pattern = node.Pattern

	var err error
	if props.Min, err = t.bound(node, node.Minimum, path, "minimum"); err != nil {
		return model.FieldConfig{}, err
	}
	if props.Max, err = t.bound(node, node.Maximum, path, "maximum"); err != nil {
		return model.FieldConfig{}, err
	}
	if node.Type == schema.TypeInteger {
		// step 1 marks integer schemas; ToSchema maps it back to integer.
		props.Step = jsonvalue.Int(1)
	}

	if node.Type == schema.TypeString && len(node.Enum) > 0 {
		props.Options = make([]model.Option, len(node.Enum))
		for i, value := range node.Enum {
			props.Options[i] = model.Option{Value: value.Clone(), Label: optionLabel(value)}
		}
	}

	switch node.Type {
	case schema.TypeObject:
		if len(node.Properties) > 0 {
			if field.FieldGroup, err = t.members(node, path); err != nil {
				return model.FieldConfig{}, err
			}
		}
	case schema.TypeArray:
		if node.Items != nil {
			item, err := t.itemTemplate(node.Items, joinPath(path, model.ArrayPathSegment))
			if err != nil {
				return model.FieldConfig{}, err
			}
			field.FieldArray = &item
		}
	}

	if !propsEmpty(props) {
		field.Props = props
	}
	return field, nil
}

// itemTemplate builds the fieldArray entry. Object items become a keyless
// group holding the item's properties; scalar items become a keyless field.
func (t *Translator) itemTemplate(items *schema.Node, path string) (model.FieldConfig, error) {
	if _, ok := items.Extension(ExtensionKey); ok {
		item, err := t.field("", items, nil, path)
		if err != nil {
			return model.FieldConfig{}, err
		}
		item.Key = ""
		return item, nil
	}
	if items.Type == schema.TypeObject {
		group, err := t.members(items, path)
		if err != nil {
			return model.FieldConfig{}, err
		}
		return model.FieldConfig{FieldGroup: group}, nil
	}
	return t.field("", items, nil, path)
}

// splitAdditional separates the keyless configs kept under additionalFields
// from the rest of an x-formly payload. rest is absent when the payload held
// nothing else.
func splitAdditional(payload jsonvalue.Value, path string) (jsonvalue.Value, []model.FieldConfig, error) {
	if payload.Kind() != jsonvalue.KindObject {
		return payload, nil, nil
	}
	bag, ok := payload.Get(AdditionalFieldsKey)
	if !ok {
		return payload, nil, nil
	}
	if bag.Kind() != jsonvalue.KindArray {
		return jsonvalue.Value{}, nil, &ExtensionParseError{
			Path: joinPath(path, AdditionalFieldsKey),
			Err:  fmt.Errorf("%w: %s must be an array, got %s", model.ErrInvalidPayload, AdditionalFieldsKey, bag.Kind()),
		}
	}
	additional, err := model.DecodeValue(bag)
	if err != nil {
		return jsonvalue.Value{}, nil, &ExtensionParseError{Path: joinPath(path, AdditionalFieldsKey), Err: err}
	}

	fields := payload.Fields()
	delete(fields, AdditionalFieldsKey)
	if len(fields) == 0 {
		return jsonvalue.Value{}, additional, nil
	}
	return jsonvalue.Object(fields), additional, nil
}

func overrideField(name string, payload jsonvalue.Value, path string) (model.FieldConfig, error) {
	fields, err := model.DecodeValue(payload)
	if err != nil {
		return model.FieldConfig{}, &ExtensionParseError{Path: path, Err: err}
	}
	if len(fields) != 1 {
		return model.FieldConfig{}, &ExtensionParseError{
			Path: path,
			Err:  fmt.Errorf("property override must describe exactly one field, got %d", len(fields)),
		}
	}
	field := fields[0]
	if field.Key == "" {
		field.Key = name
	}
	return field, nil
}

func (t *Translator) bound(node *schema.Node, bound *float64, path, keyword string) (jsonvalue.Value, error) {
	if bound == nil {
		return jsonvalue.Value{}, nil
	}
	v := *bound
	switch t.numeric {
	case NumericTruncate:
		return jsonvalue.Int(int64(math.Trunc(v))), nil
	case NumericReject:
		if node.Type == schema.TypeInteger && v != math.Trunc(v) {
			return jsonvalue.Value{}, fmt.Errorf("%w: %s %s=%v", ErrNonIntegralBound, displayPath(path), keyword, v)
		}
	}
	return jsonvalue.Float(v), nil
}

// FieldType maps a structural schema type onto a field type tag. Unknown or
// missing types fall back to input.
func FieldType(schemaType string) string {
	switch schemaType {
	case schema.TypeString:
		return model.TypeInput
	case schema.TypeNumber, schema.TypeInteger:
		return model.TypeNumber
	case schema.TypeBoolean:
		return model.TypeCheckbox
	case schema.TypeObject:
		return model.TypeObject
	case schema.TypeArray:
		return model.TypeArray
	default:
		return model.TypeInput
	}
}

func optionLabel(value jsonvalue.Value) string {
	if text, ok := value.AsString(); ok {
		return text
	}
	return value.String()
}

func propsEmpty(p *model.Props) bool {
	return p.Label == "" && p.Description == "" && p.Required == nil &&
		p.ReadOnly == nil && p.MinLength == nil && p.MaxLength == nil &&
		p.Pattern == "" && p.Min.IsZero() && p.Max.IsZero() && p.Step.IsZero() &&
		len(p.Options) == 0
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
