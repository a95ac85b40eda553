package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
)

// ErrInvalidPayload is wrapped by every DecodeError.
var ErrInvalidPayload = errors.New("model: invalid field config payload")

// DecodeError locates a decoding failure inside a payload.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("model: decode %s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrInvalidPayload }

const rootPath = "$"

// Decode parses a field list. The canonical payload is a JSON array; a single
// object is accepted as a one-element list. Objects keyed by array indices
// ({"0": {...}}) are rejected.
func Decode(data []byte) ([]FieldConfig, error) {
	value, err := jsonvalue.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("model: decode: %w", err)
	}
	return DecodeValue(value)
}

// DecodeOne parses a single field object.
func DecodeOne(data []byte) (FieldConfig, error) {
	value, err := jsonvalue.Parse(data)
	if err != nil {
		return FieldConfig{}, fmt.Errorf("model: decode: %w", err)
	}
	return decodeField(value, rootPath)
}

// DecodeValue converts an already parsed payload into a field list, applying
// the same shape rules as Decode.
func DecodeValue(value jsonvalue.Value) ([]FieldConfig, error) {
	switch value.Kind() {
	case jsonvalue.KindArray:
		items := value.Items()
		fields := make([]FieldConfig, 0, len(items))
		for i, item := range items {
			field, err := decodeField(item, indexPath(rootPath, i))
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
		return fields, nil
	case jsonvalue.KindObject:
		if isIndexKeyed(value) {
			return nil, &DecodeError{Path: rootPath, Reason: "index-keyed object; encode field lists as JSON arrays"}
		}
		field, err := decodeField(value, rootPath)
		if err != nil {
			return nil, err
		}
		return []FieldConfig{field}, nil
	default:
		return nil, kindError(rootPath, "array or object", value)
	}
}

// isIndexKeyed reports whether every key of a non-empty object is a decimal
// array index.
func isIndexKeyed(value jsonvalue.Value) bool {
	keys := value.Keys()
	if len(keys) == 0 {
		return false
	}
	for _, key := range keys {
		if _, err := strconv.Atoi(key); err != nil {
			return false
		}
	}
	return true
}

func decodeField(value jsonvalue.Value, path string) (FieldConfig, error) {
	if value.Kind() != jsonvalue.KindObject {
		return FieldConfig{}, kindError(path, "object", value)
	}
	var fc FieldConfig
	for _, key := range value.Keys() {
		item, _ := value.Get(key)
		p := path + "." + key
		var err error
		switch key {
		case "key":
			fc.Key, err = decodeKey(item, p)
		case "id":
			fc.ID, err = decodeString(item, p)
		case "name":
			fc.Name, err = decodeString(item, p)
		case "className":
			fc.ClassName, err = decodeString(item, p)
		case "fieldGroupClassName":
			fc.FieldGroupClassName, err = decodeString(item, p)
		case "type":
			fc.Type, err = decodeString(item, p)
		case "defaultValue":
			fc.DefaultValue = item
		case "template":
			fc.Template, err = decodeString(item, p)
		case "props", "templateOptions":
			fc.Props, err = decodeProps(item, p)
		case "validators":
			fc.Validators, err = decodeValueMap(item, p)
		case "asyncValidators":
			fc.AsyncValidators, err = decodeValueMap(item, p)
		case "validation":
			fc.Validation, err = decodeValidation(item, p)
		case "expressionProperties":
			fc.ExpressionProperties, err = decodeValueMap(item, p)
		case "hide":
			fc.Hide, err = decodeBool(item, p)
		case "hideExpression":
			fc.HideExpression = item
		case "wrappers":
			fc.Wrappers, err = decodeStrings(item, p)
		case "focus":
			fc.Focus, err = decodeBool(item, p)
		case "modelOptions":
			fc.ModelOptions, err = decodeModelOptions(item, p)
		case "hooks":
			fc.Hooks, err = decodeLifecycle(item, p)
		case "lifecycle":
			fc.Lifecycle, err = decodeLifecycle(item, p)
		case "fieldGroup":
			fc.FieldGroup, err = decodeFieldList(item, p)
		case "fieldArray":
			if item.IsNull() {
				continue
			}
			var child FieldConfig
			child, err = decodeField(item, p)
			if err == nil {
				fc.FieldArray = &child
			}
		case "parsers":
			fc.Parsers, err = decodeStrings(item, p)
		}
		if err != nil {
			return FieldConfig{}, err
		}
	}
	return fc, nil
}

func decodeFieldList(value jsonvalue.Value, path string) ([]FieldConfig, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind() != jsonvalue.KindArray {
		return nil, kindError(path, "array", value)
	}
	items := value.Items()
	fields := make([]FieldConfig, 0, len(items))
	for i, item := range items {
		field, err := decodeField(item, indexPath(path, i))
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func decodeProps(value jsonvalue.Value, path string) (*Props, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind() != jsonvalue.KindObject {
		return nil, kindError(path, "object", value)
	}
	props := &Props{}
	for _, key := range value.Keys() {
		item, _ := value.Get(key)
		p := path + "." + key
		var err error
		switch key {
		case "label":
			props.Label, err = decodeString(item, p)
		case "placeholder":
			props.Placeholder, err = decodeString(item, p)
		case "description":
			props.Description, err = decodeString(item, p)
		case "required":
			props.Required, err = decodeBool(item, p)
		case "disabled":
			props.Disabled, err = decodeBool(item, p)
		case "min":
			props.Min = item
		case "max":
			props.Max = item
		case "minLength":
			props.MinLength, err = decodeInt(item, p)
		case "maxLength":
			props.MaxLength, err = decodeInt(item, p)
		case "pattern":
			props.Pattern, err = decodeString(item, p)
		case "options":
			props.Options, err = decodeOptions(item, p)
		case "rows":
			props.Rows, err = decodeInt(item, p)
		case "cols":
			props.Cols, err = decodeInt(item, p)
		case "tabindex":
			props.TabIndex, err = decodeInt(item, p)
		case "readonly":
			props.ReadOnly, err = decodeBool(item, p)
		case "step":
			props.Step = item
		case "focus":
			props.Focus, err = decodeString(item, p)
		case "blur":
			props.Blur, err = decodeString(item, p)
		case "change":
			props.Change, err = decodeString(item, p)
		case "keyup":
			props.KeyUp, err = decodeString(item, p)
		case "keydown":
			props.KeyDown, err = decodeString(item, p)
		case "keypress":
			props.KeyPress, err = decodeString(item, p)
		case "click":
			props.Click, err = decodeString(item, p)
		case "i18n":
			props.I18n, err = decodeI18n(item, p)
		default:
			if props.Additional == nil {
				props.Additional = make(map[string]jsonvalue.Value)
			}
			props.Additional[key] = item
		}
		if err != nil {
			return nil, err
		}
	}
	return props, nil
}

func decodeOptions(value jsonvalue.Value, path string) ([]Option, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind() != jsonvalue.KindArray {
		return nil, kindError(path, "array", value)
	}
	items := value.Items()
	options := make([]Option, 0, len(items))
	for i, item := range items {
		p := indexPath(path, i)
		switch item.Kind() {
		case jsonvalue.KindObject:
			var opt Option
			opt.Value, _ = item.Get("value")
			if label, ok := item.Get("label"); ok {
				text, err := decodeString(label, p+".label")
				if err != nil {
					return nil, err
				}
				opt.Label = text
			}
			options = append(options, opt)
		case jsonvalue.KindString, jsonvalue.KindNumber, jsonvalue.KindBool:
			// Bare scalars are shorthand for {value: x, label: x}.
			options = append(options, Option{Value: item, Label: scalarText(item)})
		default:
			return nil, kindError(p, "object or scalar", item)
		}
	}
	return options, nil
}

func decodeValidation(value jsonvalue.Value, path string) (*ValidationOptions, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind() != jsonvalue.KindObject {
		return nil, kindError(path, "object", value)
	}
	out := &ValidationOptions{}
	var err error
	if messages, ok := value.Get("messages"); ok {
		if out.Messages, err = decodeStringMap(messages, path+".messages"); err != nil {
			return nil, err
		}
	}
	if show, ok := value.Get("show"); ok {
		if out.Show, err = decodeBool(show, path+".show"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeModelOptions(value jsonvalue.Value, path string) (*ModelOptions, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind() != jsonvalue.KindObject {
		return nil, kindError(path, "object", value)
	}
	out := &ModelOptions{}
	var err error
	if debounce, ok := value.Get("debounce"); ok {
		if out.Debounce, err = decodeInt(debounce, path+".debounce"); err != nil {
			return nil, err
		}
	}
	if updateOn, ok := value.Get("updateOn"); ok {
		if out.UpdateOn, err = decodeString(updateOn, path+".updateOn"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeLifecycle(value jsonvalue.Value, path string) (*LifecycleOptions, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind() != jsonvalue.KindObject {
		return nil, kindError(path, "object", value)
	}
	out := &LifecycleOptions{}
	targets := map[string]*string{
		"onInit":           &out.OnInit,
		"onChanges":        &out.OnChanges,
		"afterContentInit": &out.AfterContentInit,
		"afterViewInit":    &out.AfterViewInit,
		"onDestroy":        &out.OnDestroy,
	}
	for key, target := range targets {
		item, ok := value.Get(key)
		if !ok {
			continue
		}
		text, err := decodeString(item, path+"."+key)
		if err != nil {
			return nil, err
		}
		*target = text
	}
	return out, nil
}

func decodeI18n(value jsonvalue.Value, path string) (*I18nOptions, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind() != jsonvalue.KindObject {
		return nil, kindError(path, "object", value)
	}
	out := &I18nOptions{}
	for _, key := range value.Keys() {
		item, _ := value.Get(key)
		p := path + "." + key
		var err error
		switch key {
		case "labelKey":
			out.LabelKey, err = decodeString(item, p)
		case "placeholderKey":
			out.PlaceholderKey, err = decodeString(item, p)
		case "descriptionKey":
			out.DescriptionKey, err = decodeString(item, p)
		case "validationMessages":
			out.ValidationMessages, err = decodeStringMap(item, p)
		case "locale":
			out.Locale, err = decodeString(item, p)
		default:
			if out.Additional == nil {
				out.Additional = make(map[string]jsonvalue.Value)
			}
			out.Additional[key] = item
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// decodeKey accepts string keys and numeric keys, which Formly also allows.
func decodeKey(value jsonvalue.Value, path string) (string, error) {
	if literal, ok := value.Literal(); ok {
		return literal, nil
	}
	return decodeString(value, path)
}

func decodeString(value jsonvalue.Value, path string) (string, error) {
	if value.IsNull() {
		return "", nil
	}
	text, ok := value.AsString()
	if !ok {
		return "", kindError(path, "string", value)
	}
	return text, nil
}

func decodeBool(value jsonvalue.Value, path string) (*bool, error) {
	if value.IsNull() {
		return nil, nil
	}
	b, ok := value.AsBool()
	if !ok {
		return nil, kindError(path, "boolean", value)
	}
	return &b, nil
}

func decodeInt(value jsonvalue.Value, path string) (*int, error) {
	if value.IsNull() {
		return nil, nil
	}
	i, ok := value.Int64()
	if !ok {
		return nil, kindError(path, "integer", value)
	}
	if i > math.MaxInt32 || i < math.MinInt32 {
		return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("integer %d out of range", i)}
	}
	n := int(i)
	return &n, nil
}

func decodeStrings(value jsonvalue.Value, path string) ([]string, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind() != jsonvalue.KindArray {
		return nil, kindError(path, "array", value)
	}
	items := value.Items()
	out := make([]string, 0, len(items))
	for i, item := range items {
		text, ok := item.AsString()
		if !ok {
			return nil, kindError(indexPath(path, i), "string", item)
		}
		out = append(out, text)
	}
	return out, nil
}

func decodeValueMap(value jsonvalue.Value, path string) (map[string]jsonvalue.Value, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind() != jsonvalue.KindObject {
		return nil, kindError(path, "object", value)
	}
	return value.Fields(), nil
}

func decodeStringMap(value jsonvalue.Value, path string) (map[string]string, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind() != jsonvalue.KindObject {
		return nil, kindError(path, "object", value)
	}
	out := make(map[string]string, value.Len())
	for _, key := range value.Keys() {
		item, _ := value.Get(key)
		text, ok := item.AsString()
		if !ok {
			return nil, kindError(path+"."+key, "string", item)
		}
		out[key] = text
	}
	return out, nil
}

func scalarText(value jsonvalue.Value) string {
	if text, ok := value.AsString(); ok {
		return text
	}
	return value.String()
}

func kindError(path, want string, got jsonvalue.Value) error {
	return &DecodeError{Path: path, Reason: fmt.Sprintf("expected %s, got %s", want, got.Kind())}
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
