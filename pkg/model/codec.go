package model

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
)

// EncodeOptions controls the JSON encoder.
type EncodeOptions struct {
	// Casing applies to struct-derived names only. Keys supplied by callers
	// (validators, expression properties, additional props) are written as is.
	Casing Casing
	// OmitEmpty suppresses absent and null fields. When false they are
	// written as null. An explicit null defaultValue or hideExpression is
	// always written.
	OmitEmpty bool
	// Indent pretty-prints the output when non-empty.
	Indent string
}

// EncodeOption mutates EncodeOptions.
type EncodeOption func(*EncodeOptions)

// DefaultEncodeOptions returns the wire format settings: camelCase keys with
// empty fields omitted.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Casing: CasingCamel, OmitEmpty: true}
}

// WithCasing selects the key casing.
func WithCasing(casing Casing) EncodeOption {
	return func(opts *EncodeOptions) { opts.Casing = casing }
}

// WithOmitEmpty toggles suppression of absent fields.
func WithOmitEmpty(omit bool) EncodeOption {
	return func(opts *EncodeOptions) { opts.OmitEmpty = omit }
}

// WithIndent enables pretty printing.
func WithIndent(indent string) EncodeOption {
	return func(opts *EncodeOptions) { opts.Indent = indent }
}

// WithEncodeOptions replaces every setting at once.
func WithEncodeOptions(options EncodeOptions) EncodeOption {
	return func(opts *EncodeOptions) { *opts = options }
}

// Encode writes a field list as a JSON array.
func Encode(fields []FieldConfig, options ...EncodeOption) ([]byte, error) {
	opts := DefaultEncodeOptions()
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	e := &encoder{opts: opts}
	e.buf.WriteByte('[')
	for i := range fields {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.field(&fields[i])
	}
	e.buf.WriteByte(']')
	return e.finish()
}

// EncodeOne writes a single field as a JSON object.
func EncodeOne(field FieldConfig, options ...EncodeOption) ([]byte, error) {
	opts := DefaultEncodeOptions()
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	e := &encoder{opts: opts}
	e.field(&field)
	return e.finish()
}

// ToValue converts a field into its wire-format JSON object.
func ToValue(field FieldConfig, options ...EncodeOption) (jsonvalue.Value, error) {
	data, err := EncodeOne(field, options...)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Parse(data)
}

// MarshalJSON encodes the field using the wire format.
func (fc FieldConfig) MarshalJSON() ([]byte, error) {
	return EncodeOne(fc)
}

// UnmarshalJSON decodes a single field object.
func (fc *FieldConfig) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeOne(data)
	if err != nil {
		return err
	}
	*fc = decoded
	return nil
}

type encoder struct {
	buf  bytes.Buffer
	opts EncodeOptions
	err  error
}

func (e *encoder) finish() ([]byte, error) {
	if e.err != nil {
		return nil, fmt.Errorf("model: encode: %w", e.err)
	}
	if e.opts.Indent == "" {
		return e.buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, e.buf.Bytes(), "", e.opts.Indent); err != nil {
		return nil, fmt.Errorf("model: encode: indent: %w", err)
	}
	return out.Bytes(), nil
}

// object tracks comma placement for one JSON object.
type object struct {
	e     *encoder
	wrote bool
}

func (e *encoder) open() *object {
	e.buf.WriteByte('{')
	return &object{e: e}
}

func (o *object) close() { o.e.buf.WriteByte('}') }

// name writes a struct-derived key, applying the configured casing.
func (o *object) name(name string) {
	o.rawName(o.e.opts.Casing.apply(name))
}

// rawName writes a caller-supplied key verbatim.
func (o *object) rawName(name string) {
	if o.wrote {
		o.e.buf.WriteByte(',')
	}
	o.wrote = true
	o.e.quote(name)
	o.e.buf.WriteByte(':')
}

func (o *object) absent(name string) {
	if o.e.opts.OmitEmpty {
		return
	}
	o.name(name)
	o.e.buf.WriteString("null")
}

func (o *object) str(name, value string) {
	if value == "" {
		o.absent(name)
		return
	}
	o.name(name)
	o.e.quote(value)
}

func (o *object) boolean(name string, value *bool) {
	if value == nil {
		o.absent(name)
		return
	}
	o.name(name)
	o.e.buf.WriteString(strconv.FormatBool(*value))
}

func (o *object) integer(name string, value *int) {
	if value == nil {
		o.absent(name)
		return
	}
	o.name(name)
	o.e.buf.WriteString(strconv.Itoa(*value))
}

func (o *object) value(name string, value jsonvalue.Value) {
	if value.IsZero() || value.IsNull() {
		o.absent(name)
		return
	}
	o.name(name)
	o.e.value(value)
}

// nullable writes an explicit null even when empty fields are omitted;
// only the absent value is skipped.
func (o *object) nullable(name string, value jsonvalue.Value) {
	if value.IsZero() {
		o.absent(name)
		return
	}
	o.name(name)
	o.e.value(value)
}

func (o *object) strings(name string, values []string) {
	if values == nil {
		o.absent(name)
		return
	}
	o.name(name)
	o.e.buf.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			o.e.buf.WriteByte(',')
		}
		o.e.quote(v)
	}
	o.e.buf.WriteByte(']')
}

func (o *object) valueMap(name string, values map[string]jsonvalue.Value) {
	if values == nil {
		o.absent(name)
		return
	}
	o.name(name)
	inner := o.e.open()
	for _, key := range sortedKeys(values) {
		inner.rawName(key)
		o.e.value(values[key])
	}
	inner.close()
}

func (o *object) stringMap(name string, values map[string]string) {
	if values == nil {
		o.absent(name)
		return
	}
	o.name(name)
	inner := o.e.open()
	for _, key := range sortedKeys(values) {
		inner.rawName(key)
		o.e.quote(values[key])
	}
	inner.close()
}

func (e *encoder) quote(s string) {
	encoded, err := json.Marshal(s)
	if err != nil {
		e.fail(err)
		return
	}
	e.buf.Write(encoded)
}

func (e *encoder) value(v jsonvalue.Value) {
	encoded, err := v.MarshalJSON()
	if err != nil {
		e.fail(err)
		return
	}
	e.buf.Write(encoded)
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
	e.buf.WriteString("null")
}

func (e *encoder) field(fc *FieldConfig) {
	o := e.open()
	o.str("key", fc.Key)
	o.str("id", fc.ID)
	o.str("name", fc.Name)
	o.str("className", fc.ClassName)
	o.str("fieldGroupClassName", fc.FieldGroupClassName)
	o.str("type", fc.Type)
	o.nullable("defaultValue", fc.DefaultValue)
	o.str("template", fc.Template)
	if fc.Props != nil {
		o.name("props")
		e.props(fc.Props)
	} else {
		o.absent("props")
	}
	o.valueMap("validators", fc.Validators)
	o.valueMap("asyncValidators", fc.AsyncValidators)
	if fc.Validation != nil {
		o.name("validation")
		v := e.open()
		v.stringMap("messages", fc.Validation.Messages)
		v.boolean("show", fc.Validation.Show)
		v.close()
	} else {
		o.absent("validation")
	}
	o.valueMap("expressionProperties", fc.ExpressionProperties)
	o.boolean("hide", fc.Hide)
	o.nullable("hideExpression", fc.HideExpression)
	o.strings("wrappers", fc.Wrappers)
	o.boolean("focus", fc.Focus)
	if fc.ModelOptions != nil {
		o.name("modelOptions")
		m := e.open()
		m.integer("debounce", fc.ModelOptions.Debounce)
		m.str("updateOn", fc.ModelOptions.UpdateOn)
		m.close()
	} else {
		o.absent("modelOptions")
	}
	e.lifecycle(o, "hooks", fc.Hooks)
	e.lifecycle(o, "lifecycle", fc.Lifecycle)
	if fc.FieldGroup != nil {
		o.name("fieldGroup")
		e.buf.WriteByte('[')
		for i := range fc.FieldGroup {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.field(&fc.FieldGroup[i])
		}
		e.buf.WriteByte(']')
	} else {
		o.absent("fieldGroup")
	}
	if fc.FieldArray != nil {
		o.name("fieldArray")
		e.field(fc.FieldArray)
	} else {
		o.absent("fieldArray")
	}
	o.strings("parsers", fc.Parsers)
	o.close()
}

func (e *encoder) lifecycle(o *object, name string, l *LifecycleOptions) {
	if l == nil {
		o.absent(name)
		return
	}
	o.name(name)
	h := e.open()
	h.str("onInit", l.OnInit)
	h.str("onChanges", l.OnChanges)
	h.str("afterContentInit", l.AfterContentInit)
	h.str("afterViewInit", l.AfterViewInit)
	h.str("onDestroy", l.OnDestroy)
	h.close()
}

// propKeys lists the wire names Props owns. Additional entries that collide
// with them are not written.
var propKeys = map[string]struct{}{
	"label": {}, "placeholder": {}, "description": {}, "required": {},
	"disabled": {}, "min": {}, "max": {}, "minLength": {}, "maxLength": {},
	"pattern": {}, "options": {}, "rows": {}, "cols": {}, "tabindex": {},
	"readonly": {}, "step": {}, "focus": {}, "blur": {}, "change": {},
	"keyup": {}, "keydown": {}, "keypress": {}, "click": {}, "i18n": {},
}

func (e *encoder) props(p *Props) {
	o := e.open()
	o.str("label", p.Label)
	o.str("placeholder", p.Placeholder)
	o.str("description", p.Description)
	o.boolean("required", p.Required)
	o.boolean("disabled", p.Disabled)
	o.value("min", p.Min)
	o.value("max", p.Max)
	o.integer("minLength", p.MinLength)
	o.integer("maxLength", p.MaxLength)
	o.str("pattern", p.Pattern)
	if p.Options != nil {
		o.name("options")
		e.buf.WriteByte('[')
		for i, opt := range p.Options {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			item := e.open()
			item.value("value", opt.Value)
			item.str("label", opt.Label)
			item.close()
		}
		e.buf.WriteByte(']')
	} else {
		o.absent("options")
	}
	o.integer("rows", p.Rows)
	o.integer("cols", p.Cols)
	o.integer("tabindex", p.TabIndex)
	o.boolean("readonly", p.ReadOnly)
	o.value("step", p.Step)
	o.str("focus", p.Focus)
	o.str("blur", p.Blur)
	o.str("change", p.Change)
	o.str("keyup", p.KeyUp)
	o.str("keydown", p.KeyDown)
	o.str("keypress", p.KeyPress)
	o.str("click", p.Click)
	if p.I18n != nil {
		o.name("i18n")
		e.i18n(p.I18n)
	} else {
		o.absent("i18n")
	}
	for _, key := range sortedKeys(p.Additional) {
		if _, owned := propKeys[key]; owned {
			continue
		}
		value := p.Additional[key]
		if e.opts.OmitEmpty && (value.IsZero() || value.IsNull()) {
			continue
		}
		o.rawName(key)
		e.value(value)
	}
	o.close()
}

var i18nKeys = map[string]struct{}{
	"labelKey": {}, "placeholderKey": {}, "descriptionKey": {},
	"validationMessages": {}, "locale": {},
}

func (e *encoder) i18n(i *I18nOptions) {
	o := e.open()
	o.str("labelKey", i.LabelKey)
	o.str("placeholderKey", i.PlaceholderKey)
	o.str("descriptionKey", i.DescriptionKey)
	o.stringMap("validationMessages", i.ValidationMessages)
	o.str("locale", i.Locale)
	for _, key := range sortedKeys(i.Additional) {
		if _, owned := i18nKeys[key]; owned {
			continue
		}
		value := i.Additional[key]
		if e.opts.OmitEmpty && (value.IsZero() || value.IsNull()) {
			continue
		}
		o.rawName(key)
		e.value(value)
	}
	o.close()
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
