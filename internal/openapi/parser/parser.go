// Package parser extracts component schemas from OpenAPI documents with
// kin-openapi and converts them into schema nodes.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
	pkgopenapi "github.com/goliatone/go-formly/pkg/openapi"
	"github.com/goliatone/go-formly/pkg/schema"
)

// Parser implements pkgopenapi.Parser using kin-openapi.
type Parser struct {
	options pkgopenapi.ParserOptions
}

var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) *Parser {
	return &Parser{options: options}
}

// Schemas loads doc and converts components.schemas. Component and property
// order follow the source document. $ref nodes are kept as references.
func (p *Parser) Schemas(ctx context.Context, doc pkgopenapi.Document) (*schema.Components, error) {
	if ctx == nil {
		return nil, errors.New("openapi parser: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	api, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}

	partial := api.OpenAPI == ""
	if partial && !p.options.AllowPartialDocuments {
		return nil, errors.New("openapi parser: document has no openapi version")
	}
	if p.options.Validate && !partial {
		if err := api.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	shapes, err := componentShapes(raw)
	if err != nil {
		return nil, err
	}

	components := schema.NewComponents()
	if api.Components == nil {
		return components, nil
	}
	conv := &converter{shapes: shapes, active: map[*openapi3.Schema]bool{}}
	for _, name := range orderedNames(api.Components.Schemas, shapes) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node, err := conv.convert(api.Components.Schemas[name], mappingValue(shapes, name), name)
		if err != nil {
			return nil, err
		}
		components.Add(name, node)
	}
	return components, nil
}

type converter struct {
	// shapes is the components.schemas mapping of the raw document, used for
	// key order only.
	shapes *yaml.Node
	active map[*openapi3.Schema]bool
}

func (c *converter) convert(ref *openapi3.SchemaRef, shape *yaml.Node, path string) (*schema.Node, error) {
	if ref == nil {
		return &schema.Node{}, nil
	}
	if ref.Ref != "" {
		return &schema.Node{Ref: ref.Ref}, nil
	}
	if ref.Value == nil {
		return &schema.Node{}, nil
	}
	return c.convertValue(ref.Value, shape, path)
}

func (c *converter) convertValue(src *openapi3.Schema, shape *yaml.Node, path string) (*schema.Node, error) {
	node := &schema.Node{
		Type:        firstSchemaType(src.Type),
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Pattern:     src.Pattern,
		ReadOnly:    src.ReadOnly,
		Minimum:     cloneFloat(src.Min),
		Maximum:     cloneFloat(src.Max),
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		node.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		node.MaxLength = &value
	}
	if len(src.Required) > 0 {
		node.Required = append([]string(nil), src.Required...)
	}
	if src.Default != nil {
		value, err := jsonvalue.FromAny(src.Default)
		if err != nil {
			return nil, fmt.Errorf("openapi parser: schema %s: default: %w", path, err)
		}
		node.Default = value
	}
	for i, item := range src.Enum {
		value, err := jsonvalue.FromAny(item)
		if err != nil {
			return nil, fmt.Errorf("openapi parser: schema %s: enum[%d]: %w", path, i, err)
		}
		node.Enum = append(node.Enum, value)
	}
	for key, raw := range src.Extensions {
		if !strings.HasPrefix(key, "x-") {
			continue
		}
		value, err := jsonvalue.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("openapi parser: schema %s: extension %s: %w", path, key, err)
		}
		node.SetExtension(key, value)
	}

	propShapes := mappingValue(shape, "properties")
	for _, name := range orderedNames(src.Properties, propShapes) {
		child, err := c.convert(src.Properties[name], mappingValue(propShapes, name), path+"."+name)
		if err != nil {
			return nil, err
		}
		node.Properties = append(node.Properties, schema.Property{Name: name, Schema: child})
	}
	if src.Items != nil {
		items, err := c.convert(src.Items, mappingValue(shape, "items"), path+"[]")
		if err != nil {
			return nil, err
		}
		node.Items = items
	}

	memberShapes := mappingValue(shape, "allOf")
	for i, member := range src.AllOf {
		if err := c.mergeAllOf(node, member, sequenceItem(memberShapes, i), fmt.Sprintf("%s.allOf[%d]", path, i)); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// mergeAllOf flattens one allOf member into node. Members contribute the type,
// texts and extensions node lacks, their properties after node's own, and
// their required names. Referenced members are followed once per chain.
func (c *converter) mergeAllOf(node *schema.Node, member *openapi3.SchemaRef, shape *yaml.Node, path string) error {
	if member == nil || member.Value == nil || c.active[member.Value] {
		return nil
	}
	c.active[member.Value] = true
	defer delete(c.active, member.Value)

	if member.Ref != "" {
		shape = c.componentShape(member.Ref)
	}
	flat, err := c.convertValue(member.Value, shape, path)
	if err != nil {
		return err
	}

	if node.Type == "" {
		node.Type = flat.Type
	}
	if node.Title == "" {
		node.Title = flat.Title
	}
	if node.Description == "" {
		node.Description = flat.Description
	}
	for _, prop := range flat.Properties {
		if _, exists := node.Property(prop.Name); !exists {
			node.SetProperty(prop.Name, prop.Schema)
		}
	}
	for _, name := range flat.Required {
		node.AddRequired(name)
	}
	for key, value := range flat.Extensions {
		if _, exists := node.Extension(key); !exists {
			node.SetExtension(key, value)
		}
	}
	return nil
}

func (c *converter) componentShape(ref string) *yaml.Node {
	name, err := schema.ParseReference(ref)
	if err != nil {
		return nil
	}
	return mappingValue(c.shapes, name)
}

// firstSchemaType picks the first non-null entry of an OpenAPI 3.1 type list.
func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, value := range types.Slice() {
		if value != "null" {
			return value
		}
	}
	return ""
}

// orderedNames lists the keys of schemas in the order shape declares them.
// Keys shape does not know about follow in sorted order.
func orderedNames(schemas openapi3.Schemas, shape *yaml.Node) []string {
	names := make([]string, 0, len(schemas))
	seen := make(map[string]struct{}, len(schemas))
	for _, key := range mappingKeys(shape) {
		if _, ok := schemas[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, key)
	}
	var rest []string
	for key := range schemas {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	value := *in
	return &value
}
