package parser

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
	"github.com/goliatone/go-formly/pkg/schema"
)

// ExportSchema converts node into a kin-openapi schema. Reference nodes carry
// an empty placeholder value so the result validates without the target
// document; they still marshal as plain $ref objects. Property order is not
// kept because kin-openapi stores properties in a map.
func ExportSchema(node *schema.Node) *openapi3.SchemaRef {
	if node == nil {
		return nil
	}
	if node.Ref != "" {
		return &openapi3.SchemaRef{Ref: node.Ref, Value: &openapi3.Schema{}}
	}

	out := &openapi3.Schema{
		Title:       node.Title,
		Format:      node.Format,
		Description: node.Description,
		Pattern:     node.Pattern,
		ReadOnly:    node.ReadOnly,
		Min:         cloneFloat(node.Minimum),
		Max:         cloneFloat(node.Maximum),
	}
	if node.Type != "" {
		out.Type = &openapi3.Types{node.Type}
	}
	if node.MinLength != nil && *node.MinLength > 0 {
		out.MinLength = uint64(*node.MinLength)
	}
	if node.MaxLength != nil && *node.MaxLength >= 0 {
		value := uint64(*node.MaxLength)
		out.MaxLength = &value
	}
	if !node.Default.IsZero() {
		out.Default = exportValue(node.Default)
	}
	for _, item := range node.Enum {
		out.Enum = append(out.Enum, exportValue(item))
	}
	if len(node.Required) > 0 {
		out.Required = append([]string(nil), node.Required...)
	}
	if len(node.Properties) > 0 {
		out.Properties = make(openapi3.Schemas, len(node.Properties))
		for _, prop := range node.Properties {
			out.Properties[prop.Name] = ExportSchema(prop.Schema)
		}
	}
	if node.Items != nil {
		out.Items = ExportSchema(node.Items)
	}
	if len(node.Extensions) > 0 {
		out.Extensions = make(map[string]any, len(node.Extensions))
		for key, value := range node.Extensions {
			out.Extensions[key] = exportValue(value)
		}
	}
	return openapi3.NewSchemaRef("", out)
}

// ValidateSchema checks node with the kin-openapi schema validator.
func ValidateSchema(ctx context.Context, node *schema.Node) error {
	if ctx == nil {
		return errors.New("openapi parser: context is required")
	}
	if node == nil {
		return errors.New("openapi parser: schema is nil")
	}
	ref := ExportSchema(node)
	if err := ref.Value.Validate(ctx); err != nil {
		return fmt.Errorf("openapi parser: validate schema: %w", err)
	}
	return nil
}

// exportValue converts a value into the plain types kin-openapi decodes JSON
// into, with every number as float64.
func exportValue(value jsonvalue.Value) any {
	switch value.Kind() {
	case jsonvalue.KindNumber:
		f, _ := value.Float64()
		return f
	case jsonvalue.KindArray:
		items := value.Items()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = exportValue(item)
		}
		return out
	case jsonvalue.KindObject:
		fields := value.Fields()
		out := make(map[string]any, len(fields))
		for key, field := range fields {
			out[key] = exportValue(field)
		}
		return out
	default:
		return value.Any()
	}
}
