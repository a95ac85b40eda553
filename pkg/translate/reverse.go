package translate

import (
	"github.com/goliatone/go-formly/pkg/jsonvalue"
	"github.com/goliatone/go-formly/pkg/model"
	"github.com/goliatone/go-formly/pkg/schema"
)

// SchemaType maps a field type tag back onto a structural schema type. The
// second result is false for tags with no structural counterpart.
func SchemaType(fieldType string) (string, bool) {
	switch fieldType {
	case model.TypeInput, model.TypeTextarea, model.TypeSelect, model.TypeRadio, model.TypeMultiCheckbox:
		return schema.TypeString, true
	case model.TypeNumber:
		return schema.TypeNumber, true
	case model.TypeInteger:
		return schema.TypeInteger, true
	case model.TypeBoolean, model.TypeCheckbox:
		return schema.TypeBoolean, true
	case model.TypeArray:
		return schema.TypeArray, true
	case model.TypeObject, model.TypeFieldGroup:
		return schema.TypeObject, true
	default:
		return "", false
	}
}

// ToSchema translates one field into a schema node. Attributes without a
// schema keyword are kept in an x-formly bag on the node, which is attached
// only when something was left over. The field itself is not modified.
func (t *Translator) ToSchema(field model.FieldConfig) *schema.Node {
	node := &schema.Node{}
	residual := field.Clone()
	residual.Key = ""

	if structural, ok := SchemaType(field.Type); ok {
		node.Type = structural
		residual.Type = ""
	} else if field.Type != "" {
		node.Type = schema.TypeObject
	}
	if len(field.FieldGroup) > 0 {
		node.Type = schema.TypeObject
	}

	if !field.DefaultValue.IsZero() {
		node.Default = field.DefaultValue.Clone()
		residual.DefaultValue = jsonvalue.Value{}
	}

	if field.Props != nil {
		t.projectProps(node, field.Props, residual.Props)
	}

	var additional []model.FieldConfig
	if len(field.FieldGroup) > 0 {
		for _, child := range field.FieldGroup {
			if child.Key == "" {
				additional = append(additional, child)
				continue
			}
			node.SetProperty(child.Key, t.ToSchema(child))
			if child.IsRequired() {
				node.AddRequired(child.Key)
			}
		}
		residual.FieldGroup = nil
	}

	if field.FieldArray != nil && node.Type == schema.TypeArray {
		node.Items = t.ToSchema(*field.FieldArray)
		residual.FieldArray = nil
	}

	if bag, ok := extensionBag(residual, additional); ok {
		node.SetExtension(ExtensionKey, bag)
	}
	return node
}

// AttachToParent adds each keyed config as a named property of parent and
// records required flags in parent's required set. Keyless configs are
// appended to additionalFields in parent's x-formly bag. parent is modified
// and returned; a nil parent starts a fresh object schema.
func (t *Translator) AttachToParent(parent *schema.Node, configs []model.FieldConfig) *schema.Node {
	if parent == nil {
		parent = &schema.Node{}
	}
	if parent.Type == "" {
		parent.Type = schema.TypeObject
	}

	var additional []jsonvalue.Value
	for _, config := range configs {
		if config.Key == "" {
			additional = append(additional, fieldValue(config))
			continue
		}
		parent.SetProperty(config.Key, t.ToSchema(config))
		if config.IsRequired() {
			parent.AddRequired(config.Key)
		}
	}
	if len(additional) == 0 {
		return parent
	}

	fields := map[string]jsonvalue.Value{}
	if existing, ok := parent.Extension(ExtensionKey); ok && existing.Kind() == jsonvalue.KindObject {
		fields = existing.Fields()
	}
	if prior, ok := fields[AdditionalFieldsKey]; ok && prior.Kind() == jsonvalue.KindArray {
		additional = append(prior.Items(), additional...)
	}
	fields[AdditionalFieldsKey] = jsonvalue.Array(additional...)
	parent.SetExtension(ExtensionKey, jsonvalue.Object(fields))
	return parent
}

// projectProps copies props with a schema keyword onto node and removes them
// from the residual props.
func (t *Translator) projectProps(node *schema.Node, props, residual *model.Props) {
	node.Title = props.Label
	node.Description = props.Description
	residual.Label = ""
	residual.Description = ""
	residual.Required = nil
	if props.ReadOnly != nil {
		node.ReadOnly = *props.ReadOnly
		residual.ReadOnly = nil
	}

	switch node.Type {
	case schema.TypeString:
		if props.MinLength != nil {
			node.MinLength = model.Int(*props.MinLength)
			residual.MinLength = nil
		}
		if props.MaxLength != nil {
			node.MaxLength = model.Int(*props.MaxLength)
			residual.MaxLength = nil
		}
		if props.Pattern != "" {
			node.Pattern = props.Pattern
			residual.Pattern = ""
		}
	case schema.TypeNumber, schema.TypeInteger:
		if f, ok := props.Min.Float64(); ok {
			node.Minimum = &f
			residual.Min = jsonvalue.Value{}
		}
		if f, ok := props.Max.Float64(); ok {
			node.Maximum = &f
			residual.Max = jsonvalue.Value{}
		}
		if step, ok := props.Step.Int64(); ok && step == 1 {
			node.Type = schema.TypeInteger
			residual.Step = jsonvalue.Value{}
		}
	}

	if len(props.Options) > 0 {
		switch node.Type {
		case schema.TypeString, schema.TypeNumber, schema.TypeInteger:
			node.Enum = make([]jsonvalue.Value, len(props.Options))
			for i, opt := range props.Options {
				node.Enum[i] = opt.Value.Clone()
			}
		}
	}
}

// extensionBag encodes the residual field plus keyless children. It reports
// false when nothing is left to preserve.
func extensionBag(residual model.FieldConfig, additional []model.FieldConfig) (jsonvalue.Value, bool) {
	encoded := fieldValue(residual)
	fields := encoded.Fields()
	if props, ok := fields["props"]; ok && props.Len() == 0 {
		delete(fields, "props")
	}
	if len(additional) > 0 {
		items := make([]jsonvalue.Value, len(additional))
		for i, child := range additional {
			items[i] = fieldValue(child)
		}
		fields[AdditionalFieldsKey] = jsonvalue.Array(items...)
	}
	if len(fields) == 0 {
		return jsonvalue.Value{}, false
	}
	return jsonvalue.Object(fields), true
}

// fieldValue renders a field in wire format. Encoding a FieldConfig only
// fails on values jsonvalue cannot produce.
func fieldValue(field model.FieldConfig) jsonvalue.Value {
	value, err := model.ToValue(field)
	if err != nil {
		panic("translate: encode field config: " + err.Error())
	}
	return value
}
