package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind enumerates the JSON value variants.
type Kind uint8

const (
	// KindAbsent marks the zero Value. It encodes as null but lets callers
	// tell "not set" apart from an explicit null.
	KindAbsent Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a closed union over the JSON data model. Numbers keep their
// literal text so integer and floating representations survive re-encoding.
type Value struct {
	kind    Kind
	boolean bool
	text    string
	items   []Value
	fields  map[string]Value
}

var errNotNumber = errors.New("jsonvalue: invalid number literal")

// Null returns an explicit JSON null.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindNumber, text: strconv.FormatInt(i, 10)} }

// Float wraps a float64. NaN and infinities have no JSON form and become null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, text: formatFloat(f)}
}

// Number wraps a number literal, validating it first.
func Number(literal string) (Value, error) {
	if _, err := strconv.ParseFloat(literal, 64); err != nil {
		return Value{}, fmt.Errorf("%w: %q", errNotNumber, literal)
	}
	return Value{kind: KindNumber, text: literal}, nil
}

// Array wraps the supplied items.
func Array(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindArray, items: out}
}

// Object wraps the supplied fields. The map is copied.
func Object(fields map[string]Value) Value {
	out := make(map[string]Value, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return Value{kind: KindObject, fields: out}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether the value is absent.
func (v Value) IsZero() bool { return v.kind == KindAbsent }

// IsNull reports whether the value is an explicit null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// Literal returns the number literal as written.
func (v Value) Literal() (string, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.text, true
}

// Float64 converts a number to float64.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.text, 64)
	return f, err == nil
}

// Int64 converts a number to int64 only when it is integral.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if i, err := strconv.ParseInt(v.text, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// Items returns a copy of the array elements.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	out := make([]Value, len(v.items))
	copy(out, v.items)
	return out
}

// Len returns the number of array elements or object fields.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.fields)
	default:
		return 0
	}
}

// Get looks up an object field.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	field, ok := v.fields[key]
	return field, ok
}

// Keys returns the object keys in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for key := range v.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Fields returns a shallow copy of the object fields.
func (v Value) Fields() map[string]Value {
	if v.kind != KindObject {
		return nil
	}
	out := make(map[string]Value, len(v.fields))
	for k, f := range v.fields {
		out[k] = f
	}
	return out
}

// Clone deep-copies the value.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = item.Clone()
		}
		return Value{kind: KindArray, items: items}
	case KindObject:
		fields := make(map[string]Value, len(v.fields))
		for k, f := range v.fields {
			fields[k] = f.Clone()
		}
		return Value{kind: KindObject, fields: fields}
	default:
		return v
	}
}

// Equal reports structural equality. Numbers compare by value so 1 and 1.0
// are equal even though their literals differ.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.boolean == other.boolean
	case KindString:
		return v.text == other.text
	case KindNumber:
		if v.text == other.text {
			return true
		}
		a, okA := v.Float64()
		b, okB := other.Float64()
		return okA && okB && a == b
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for k, f := range v.fields {
			o, ok := other.fields[k]
			if !ok || !f.Equal(o) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the value as compact JSON.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(data)
}

// MarshalJSON encodes the value. Object keys are written in sorted order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindAbsent, KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		buf.WriteString(v.text)
	case KindString:
		encoded, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, key := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			encoded, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(encoded)
			buf.WriteByte(':')
			if err := v.fields[key].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("jsonvalue: unknown kind %s", v.kind)
	}
	return nil
}

// UnmarshalJSON decodes any JSON document, keeping number literals intact.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Parse decodes a JSON document into a Value.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("jsonvalue: decode: %w", err)
	}
	return FromAny(raw)
}

// MustParse panics when Parse fails. Useful for tests and fixtures.
func MustParse(data string) Value {
	v, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}

// FromAny converts values produced by JSON or YAML decoders.
func FromAny(in any) (Value, error) {
	switch value := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return value.Clone(), nil
	case *Value:
		if value == nil {
			return Null(), nil
		}
		return value.Clone(), nil
	case bool:
		return Bool(value), nil
	case string:
		return String(value), nil
	case float64:
		return Float(value), nil
	case float32:
		return Float(float64(value)), nil
	case int:
		return Int(int64(value)), nil
	case int8:
		return Int(int64(value)), nil
	case int16:
		return Int(int64(value)), nil
	case int32:
		return Int(int64(value)), nil
	case int64:
		return Int(value), nil
	case uint:
		return Value{kind: KindNumber, text: strconv.FormatUint(uint64(value), 10)}, nil
	case uint8:
		return Int(int64(value)), nil
	case uint16:
		return Int(int64(value)), nil
	case uint32:
		return Int(int64(value)), nil
	case uint64:
		return Value{kind: KindNumber, text: strconv.FormatUint(value, 10)}, nil
	case []any:
		items := make([]Value, len(value))
		for i, item := range value {
			converted, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = converted
		}
		return Value{kind: KindArray, items: items}, nil
	case []string:
		items := make([]Value, len(value))
		for i, item := range value {
			items[i] = String(item)
		}
		return Value{kind: KindArray, items: items}, nil
	case map[string]any:
		fields := make(map[string]Value, len(value))
		for key, item := range value {
			converted, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", key, err)
			}
			fields[key] = converted
		}
		return Value{kind: KindObject, fields: fields}, nil
	case map[string]string:
		fields := make(map[string]Value, len(value))
		for key, item := range value {
			fields[key] = String(item)
		}
		return Value{kind: KindObject, fields: fields}, nil
	case map[any]any:
		fields := make(map[string]Value, len(value))
		for key, item := range value {
			name, ok := key.(string)
			if !ok {
				return Value{}, fmt.Errorf("jsonvalue: non-string object key %v", key)
			}
			converted, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", name, err)
			}
			fields[name] = converted
		}
		return Value{kind: KindObject, fields: fields}, nil
	case interface {
		String() string
		Float64() (float64, error)
	}:
		return Number(value.String())
	default:
		return Value{}, fmt.Errorf("jsonvalue: unsupported type %T", in)
	}
}

// MustFromAny panics when FromAny fails.
func MustFromAny(in any) Value {
	v, err := FromAny(in)
	if err != nil {
		panic(err)
	}
	return v
}

// Any converts the value back into plain Go values. Integer literals come back
// as int64, every other number as float64.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindString:
		return v.text
	case KindNumber:
		if i, err := strconv.ParseInt(v.text, 10, 64); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(v.text, 64)
		return f
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Any()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.fields))
		for k, f := range v.fields {
			out[k] = f.Any()
		}
		return out
	default:
		return nil
	}
}

// formatFloat mirrors encoding/json: plain notation except for very small or
// very large magnitudes.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	return strconv.FormatFloat(f, format, -1, 64)
}
