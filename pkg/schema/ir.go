package schema

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
)

// Structural type tags understood by the translators.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Node is the minimal OpenAPI schema shape consumed and produced by the
// translators. Nodes reached through a Document are read-only; nodes built
// by the reverse translator are owned by the caller.
type Node struct {
	Ref         string
	Type        string
	Format      string
	Title       string
	Description string
	Default     jsonvalue.Value
	Enum        []jsonvalue.Value
	Required    []string
	Properties  []Property
	Items       *Node
	MinLength   *int
	MaxLength   *int
	Pattern     string
	Minimum     *float64
	Maximum     *float64
	ReadOnly    bool
	Extensions  map[string]jsonvalue.Value
}

// Property pairs a property name with its schema, keeping document order.
type Property struct {
	Name   string
	Schema *Node
}

// Property returns the schema registered under name.
func (n *Node) Property(name string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, prop := range n.Properties {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return nil, false
}

// SetProperty replaces the schema for name in place or appends it.
func (n *Node) SetProperty(name string, schema *Node) {
	for i := range n.Properties {
		if n.Properties[i].Name == name {
			n.Properties[i].Schema = schema
			return
		}
	}
	n.Properties = append(n.Properties, Property{Name: name, Schema: schema})
}

// PropertyNames lists property names in document order.
func (n *Node) PropertyNames() []string {
	if n == nil || len(n.Properties) == 0 {
		return nil
	}
	names := make([]string, len(n.Properties))
	for i, prop := range n.Properties {
		names[i] = prop.Name
	}
	return names
}

// IsRequired reports whether name is in the required set.
func (n *Node) IsRequired(name string) bool {
	if n == nil {
		return false
	}
	for _, item := range n.Required {
		if item == name {
			return true
		}
	}
	return false
}

// AddRequired inserts name into the required set. Adding a name that is
// already present is a no-op; the return value reports whether it was added.
func (n *Node) AddRequired(name string) bool {
	if n.IsRequired(name) {
		return false
	}
	n.Required = append(n.Required, name)
	return true
}

// RequiredSet returns the required names as a lookup set.
func (n *Node) RequiredSet() map[string]struct{} {
	if n == nil || len(n.Required) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(n.Required))
	for _, name := range n.Required {
		set[name] = struct{}{}
	}
	return set
}

// Extension returns the extension stored under key.
func (n *Node) Extension(key string) (jsonvalue.Value, bool) {
	if n == nil || len(n.Extensions) == 0 {
		return jsonvalue.Value{}, false
	}
	v, ok := n.Extensions[key]
	return v, ok
}

// SetExtension stores an extension value.
func (n *Node) SetExtension(key string, value jsonvalue.Value) {
	if n.Extensions == nil {
		n.Extensions = make(map[string]jsonvalue.Value)
	}
	n.Extensions[key] = value
}

// Clone creates a deep copy of the schema tree to avoid accidental mutation.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cloned := *n
	cloned.Default = n.Default.Clone()
	if len(n.Enum) > 0 {
		cloned.Enum = make([]jsonvalue.Value, len(n.Enum))
		for i, v := range n.Enum {
			cloned.Enum[i] = v.Clone()
		}
	}
	if len(n.Required) > 0 {
		cloned.Required = append([]string(nil), n.Required...)
	}
	if len(n.Properties) > 0 {
		cloned.Properties = make([]Property, len(n.Properties))
		for i, prop := range n.Properties {
			cloned.Properties[i] = Property{Name: prop.Name, Schema: prop.Schema.Clone()}
		}
	}
	cloned.Items = n.Items.Clone()
	cloned.MinLength = cloneInt(n.MinLength)
	cloned.MaxLength = cloneInt(n.MaxLength)
	cloned.Minimum = cloneFloat(n.Minimum)
	cloned.Maximum = cloneFloat(n.Maximum)
	if len(n.Extensions) > 0 {
		cloned.Extensions = make(map[string]jsonvalue.Value, len(n.Extensions))
		for k, v := range n.Extensions {
			cloned.Extensions[k] = v.Clone()
		}
	}
	return &cloned
}

// DebugString renders a compact summary for logging.
func (n *Node) DebugString() string {
	if n == nil {
		return "<nil>"
	}
	summary := fmt.Sprintf("type=%s", n.Type)
	if n.Ref != "" {
		summary += fmt.Sprintf(",ref=%s", n.Ref)
	}
	if len(n.Required) > 0 {
		summary += fmt.Sprintf(",required=%d", len(n.Required))
	}
	if len(n.Properties) > 0 {
		summary += fmt.Sprintf(",properties=%d", len(n.Properties))
	}
	if n.Items != nil {
		summary += ",items=true"
	}
	if len(n.Extensions) > 0 {
		summary += fmt.Sprintf(",extensions=%d", len(n.Extensions))
	}
	return summary
}

// MarshalJSON writes the node using OpenAPI keyword names. Properties keep
// their document order, which encoding a map would lose.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	w := objectWriter{buf: buf}
	w.open()
	if n.Ref != "" {
		w.str("$ref", n.Ref)
	}
	w.str("type", n.Type)
	w.str("format", n.Format)
	w.str("title", n.Title)
	w.str("description", n.Description)
	if !n.Default.IsZero() {
		w.raw("default", n.Default)
	}
	if len(n.Enum) > 0 {
		w.raw("enum", jsonvalue.Array(n.Enum...))
	}
	if len(n.Required) > 0 {
		items := make([]jsonvalue.Value, len(n.Required))
		for i, name := range n.Required {
			items[i] = jsonvalue.String(name)
		}
		w.raw("required", jsonvalue.Array(items...))
	}
	if len(n.Properties) > 0 {
		w.key("properties")
		buf.WriteByte('{')
		for i, prop := range n.Properties {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(prop.Name)
			if err != nil {
				return err
			}
			buf.Write(name)
			buf.WriteByte(':')
			if err := prop.Schema.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	if n.Items != nil {
		w.key("items")
		if err := n.Items.encode(buf); err != nil {
			return err
		}
	}
	if n.MinLength != nil {
		w.literal("minLength", strconv.Itoa(*n.MinLength))
	}
	if n.MaxLength != nil {
		w.literal("maxLength", strconv.Itoa(*n.MaxLength))
	}
	w.str("pattern", n.Pattern)
	if n.Minimum != nil {
		w.raw("minimum", jsonvalue.Float(*n.Minimum))
	}
	if n.Maximum != nil {
		w.raw("maximum", jsonvalue.Float(*n.Maximum))
	}
	if n.ReadOnly {
		w.literal("readOnly", "true")
	}
	for _, key := range sortedKeys(n.Extensions) {
		w.raw(key, n.Extensions[key])
	}
	buf.WriteByte('}')
	return w.err
}

type objectWriter struct {
	buf   *bytes.Buffer
	wrote bool
	err   error
}

func (w *objectWriter) open() { w.buf.WriteByte('{') }

func (w *objectWriter) key(name string) {
	if w.wrote {
		w.buf.WriteByte(',')
	}
	w.wrote = true
	encoded, err := json.Marshal(name)
	if err != nil && w.err == nil {
		w.err = err
	}
	w.buf.Write(encoded)
	w.buf.WriteByte(':')
}

func (w *objectWriter) str(name, value string) {
	if value == "" {
		return
	}
	w.raw(name, jsonvalue.String(value))
}

func (w *objectWriter) literal(name, text string) {
	w.key(name)
	w.buf.WriteString(text)
}

func (w *objectWriter) raw(name string, value jsonvalue.Value) {
	w.key(name)
	encoded, err := value.MarshalJSON()
	if err != nil {
		if w.err == nil {
			w.err = err
		}
		w.buf.WriteString("null")
		return
	}
	w.buf.Write(encoded)
}

func cloneInt(in *int) *int {
	if in == nil {
		return nil
	}
	value := *in
	return &value
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	value := *in
	return &value
}
