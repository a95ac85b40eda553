package model

import "github.com/goliatone/go-formly/pkg/jsonvalue"

// Field type tags produced by schema translation. Tags are free-form: callers
// may use any string their renderer understands.
const (
	TypeInput         = "input"
	TypeTextarea      = "textarea"
	TypeNumber        = "number"
	TypeInteger       = "integer"
	TypeCheckbox      = "checkbox"
	TypeBoolean       = "boolean"
	TypeSelect        = "select"
	TypeRadio         = "radio"
	TypeMultiCheckbox = "multicheckbox"
	TypeObject        = "object"
	TypeFieldGroup    = "fieldgroup"
	TypeArray         = "array"
)

// FieldConfig is one node of a form description tree.
type FieldConfig struct {
	Key                  string
	ID                   string
	Name                 string
	ClassName            string
	FieldGroupClassName  string
	Type                 string
	DefaultValue         jsonvalue.Value
	Template             string
	Props                *Props
	Validators           map[string]jsonvalue.Value
	AsyncValidators      map[string]jsonvalue.Value
	Validation           *ValidationOptions
	ExpressionProperties map[string]jsonvalue.Value
	Hide                 *bool
	HideExpression       jsonvalue.Value
	Wrappers             []string
	Focus                *bool
	ModelOptions         *ModelOptions
	Hooks                *LifecycleOptions
	Lifecycle            *LifecycleOptions
	FieldGroup           []FieldConfig
	FieldArray           *FieldConfig
	Parsers              []string
}

// Props carries presentation and validation attributes. Keys the struct does
// not name are captured in Additional and emitted inline on encode.
type Props struct {
	Label       string
	Placeholder string
	Description string
	Required    *bool
	Disabled    *bool
	// Min and Max are numbers for numeric fields but may hold any JSON value
	// (dates, expressions) for other field types.
	Min        jsonvalue.Value
	Max        jsonvalue.Value
	MinLength  *int
	MaxLength  *int
	Pattern    string
	Options    []Option
	Rows       *int
	Cols       *int
	TabIndex   *int
	ReadOnly   *bool
	Step       jsonvalue.Value
	Focus      string
	Blur       string
	Change     string
	KeyUp      string
	KeyDown    string
	KeyPress   string
	Click      string
	I18n       *I18nOptions
	Additional map[string]jsonvalue.Value
}

// Option is a value/label pair offered by select-like fields.
type Option struct {
	Value jsonvalue.Value
	Label string
}

// ValidationOptions holds per-rule messages and the display toggle.
type ValidationOptions struct {
	Messages map[string]string
	Show     *bool
}

// ModelOptions controls when the bound model is updated.
type ModelOptions struct {
	Debounce *int
	UpdateOn string
}

// LifecycleOptions names hook handlers. Values are opaque to this module.
type LifecycleOptions struct {
	OnInit           string
	OnChanges        string
	AfterContentInit string
	AfterViewInit    string
	OnDestroy        string
}

// I18nOptions carries translation keys for a field.
type I18nOptions struct {
	LabelKey           string
	PlaceholderKey     string
	DescriptionKey     string
	ValidationMessages map[string]string
	Locale             string
	Additional         map[string]jsonvalue.Value
}

// IsRequired reports whether props.required is set to true.
func (fc FieldConfig) IsRequired() bool {
	return fc.Props != nil && fc.Props.Required != nil && *fc.Props.Required
}

// EnsureProps returns the props bag, allocating it on first use.
func (fc *FieldConfig) EnsureProps() *Props {
	if fc.Props == nil {
		fc.Props = &Props{}
	}
	return fc.Props
}

// IsZero reports whether the lifecycle block names no hooks.
func (l *LifecycleOptions) IsZero() bool {
	return l == nil || *l == LifecycleOptions{}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// StringOption builds an option whose value is a string.
func StringOption(value, label string) Option {
	return Option{Value: jsonvalue.String(value), Label: label}
}
