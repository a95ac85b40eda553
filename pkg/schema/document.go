package schema

import "sort"

// Document is the read-only view the core needs from a parsed OpenAPI
// document: a lookup of named component schemas.
type Document interface {
	LookupSchema(name string) (*Node, bool)
}

// Components is an in-memory Document holding component schemas keyed by
// name. Names keep their insertion order so listings follow the source.
type Components struct {
	names   []string
	schemas map[string]*Node
}

// Ensure Components satisfies Document.
var _ Document = (*Components)(nil)

// NewComponents constructs an empty component set.
func NewComponents() *Components {
	return &Components{schemas: make(map[string]*Node)}
}

// Add registers schema under name, replacing any previous entry while
// keeping its original position.
func (c *Components) Add(name string, schema *Node) {
	if c.schemas == nil {
		c.schemas = make(map[string]*Node)
	}
	if _, exists := c.schemas[name]; !exists {
		c.names = append(c.names, name)
	}
	c.schemas[name] = schema
}

// LookupSchema returns the schema registered under the exact name.
func (c *Components) LookupSchema(name string) (*Node, bool) {
	if c == nil || c.schemas == nil {
		return nil, false
	}
	node, ok := c.schemas[name]
	return node, ok
}

// Names lists schema names in insertion order.
func (c *Components) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// References lists the local references addressing every schema.
func (c *Components) References() []string {
	names := c.Names()
	refs := make([]string, len(names))
	for i, name := range names {
		refs[i] = Reference(name)
	}
	return refs
}

// Len returns the number of registered schemas.
func (c *Components) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

func sortedKeys[V any](in map[string]V) []string {
	if len(in) == 0 {
		return nil
	}
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
