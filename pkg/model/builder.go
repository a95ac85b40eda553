package model

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/goliatone/go-formly/pkg/jsonvalue"
)

// Builder assembles a field list by hand. A Builder is owned by the chain that
// created it and is not safe for concurrent use; Build returns deep copies so
// later changes never leak into results already handed out.
type Builder struct {
	fields []FieldConfig
	err    error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Field appends a leaf field configured through a FieldBuilder.
func (b *Builder) Field(key string, configure func(*FieldBuilder)) *Builder {
	fb := NewFieldBuilder(key)
	if configure != nil {
		configure(fb)
	}
	field, err := fb.Build()
	if err != nil {
		b.err = multierr.Append(b.err, err)
		return b
	}
	b.fields = append(b.fields, field)
	return b
}

// Group appends an object field whose children are assembled by configure.
func (b *Builder) Group(key string, configure func(*Builder)) *Builder {
	nested := NewBuilder()
	if configure != nil {
		configure(nested)
	}
	if nested.err != nil {
		b.err = multierr.Append(b.err, fmt.Errorf("model: group %q: %w", key, nested.err))
		return b
	}
	b.fields = append(b.fields, FieldConfig{
		Key:        key,
		Type:       TypeObject,
		FieldGroup: nested.fields,
	})
	return b
}

// Array appends an array field. configure assembles the item template's
// field group.
func (b *Builder) Array(key string, configure func(*Builder)) *Builder {
	nested := NewBuilder()
	if configure != nil {
		configure(nested)
	}
	if nested.err != nil {
		b.err = multierr.Append(b.err, fmt.Errorf("model: array %q: %w", key, nested.err))
		return b
	}
	b.fields = append(b.fields, FieldConfig{
		Key:        key,
		Type:       TypeArray,
		FieldArray: &FieldConfig{FieldGroup: nested.fields},
	})
	return b
}

// Add appends prebuilt fields.
func (b *Builder) Add(fields ...FieldConfig) *Builder {
	b.fields = append(b.fields, Clone(fields)...)
	return b
}

// Build returns a deep copy of the assembled fields together with every
// error recorded along the chain. The tree must pass Validate.
func (b *Builder) Build() ([]FieldConfig, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.fields == nil {
		return []FieldConfig{}, nil
	}
	if err := Validate(b.fields); err != nil {
		return nil, err
	}
	return Clone(b.fields), nil
}

// MustBuild panics when Build fails.
func (b *Builder) MustBuild() []FieldConfig {
	fields, err := b.Build()
	if err != nil {
		panic(err)
	}
	return fields
}

// BuildJSON builds and encodes the field list.
func (b *Builder) BuildJSON(options ...EncodeOption) ([]byte, error) {
	fields, err := b.Build()
	if err != nil {
		return nil, err
	}
	return Encode(fields, options...)
}

// FieldBuilder configures a single field.
type FieldBuilder struct {
	field FieldConfig
	err   error
}

// NewFieldBuilder starts a field bound to key.
func NewFieldBuilder(key string) *FieldBuilder {
	return &FieldBuilder{field: FieldConfig{Key: key}}
}

// Build returns a deep copy of the configured field.
func (f *FieldBuilder) Build() (FieldConfig, error) {
	if f.err != nil {
		return FieldConfig{}, fmt.Errorf("model: field %q: %w", f.field.Key, f.err)
	}
	return f.field.Clone(), nil
}

func (f *FieldBuilder) value(attr string, in any) jsonvalue.Value {
	v, err := jsonvalue.FromAny(in)
	if err != nil {
		f.err = multierr.Append(f.err, fmt.Errorf("%s: %w", attr, err))
	}
	return v
}

func (f *FieldBuilder) props() *Props { return f.field.EnsureProps() }

func (f *FieldBuilder) i18n() *I18nOptions {
	p := f.props()
	if p.I18n == nil {
		p.I18n = &I18nOptions{}
	}
	return p.I18n
}

func (f *FieldBuilder) ID(id string) *FieldBuilder { f.field.ID = id; return f }
func (f *FieldBuilder) Name(name string) *FieldBuilder { f.field.Name = name; return f }
func (f *FieldBuilder) ClassName(css string) *FieldBuilder { f.field.ClassName = css; return f }
func (f *FieldBuilder) Type(tag string) *FieldBuilder { f.field.Type = tag; return f }
func (f *FieldBuilder) Template(tpl string) *FieldBuilder { f.field.Template = tpl; return f }

func (f *FieldBuilder) FieldGroupClassName(css string) *FieldBuilder {
	f.field.FieldGroupClassName = css
	return f
}

// DefaultValue accepts any value FromAny understands.
func (f *FieldBuilder) DefaultValue(v any) *FieldBuilder {
	f.field.DefaultValue = f.value("defaultValue", v)
	return f
}

func (f *FieldBuilder) Label(label string) *FieldBuilder { f.props().Label = label; return f }

func (f *FieldBuilder) Placeholder(text string) *FieldBuilder {
	f.props().Placeholder = text
	return f
}

func (f *FieldBuilder) Description(text string) *FieldBuilder {
	f.props().Description = text
	return f
}

func (f *FieldBuilder) Required(required bool) *FieldBuilder {
	f.props().Required = Bool(required)
	return f
}

func (f *FieldBuilder) Disabled(disabled bool) *FieldBuilder {
	f.props().Disabled = Bool(disabled)
	return f
}

func (f *FieldBuilder) ReadOnly(readOnly bool) *FieldBuilder {
	f.props().ReadOnly = Bool(readOnly)
	return f
}

// Min sets props.min. Numbers, date strings and expressions are all accepted.
func (f *FieldBuilder) Min(v any) *FieldBuilder {
	f.props().Min = f.value("min", v)
	return f
}

// Max sets props.max.
func (f *FieldBuilder) Max(v any) *FieldBuilder {
	f.props().Max = f.value("max", v)
	return f
}

func (f *FieldBuilder) MinLength(n int) *FieldBuilder { f.props().MinLength = Int(n); return f }
func (f *FieldBuilder) MaxLength(n int) *FieldBuilder { f.props().MaxLength = Int(n); return f }
func (f *FieldBuilder) Pattern(re string) *FieldBuilder { f.props().Pattern = re; return f }

// Options appends select options.
func (f *FieldBuilder) Options(options ...Option) *FieldBuilder {
	p := f.props()
	for _, opt := range options {
		p.Options = append(p.Options, Option{Value: opt.Value.Clone(), Label: opt.Label})
	}
	return f
}

// Prop stores an attribute Props has no named slot for.
func (f *FieldBuilder) Prop(key string, v any) *FieldBuilder {
	p := f.props()
	if p.Additional == nil {
		p.Additional = make(map[string]jsonvalue.Value)
	}
	p.Additional[key] = f.value("props."+key, v)
	return f
}

func (f *FieldBuilder) Validator(name string, v any) *FieldBuilder {
	if f.field.Validators == nil {
		f.field.Validators = make(map[string]jsonvalue.Value)
	}
	f.field.Validators[name] = f.value("validators."+name, v)
	return f
}

func (f *FieldBuilder) AsyncValidator(name string, v any) *FieldBuilder {
	if f.field.AsyncValidators == nil {
		f.field.AsyncValidators = make(map[string]jsonvalue.Value)
	}
	f.field.AsyncValidators[name] = f.value("asyncValidators."+name, v)
	return f
}

func (f *FieldBuilder) validation() *ValidationOptions {
	if f.field.Validation == nil {
		f.field.Validation = &ValidationOptions{}
	}
	return f.field.Validation
}

func (f *FieldBuilder) ValidationMessage(rule, message string) *FieldBuilder {
	v := f.validation()
	if v.Messages == nil {
		v.Messages = make(map[string]string)
	}
	v.Messages[rule] = message
	return f
}

func (f *FieldBuilder) ShowValidation(show bool) *FieldBuilder {
	f.validation().Show = Bool(show)
	return f
}

// ExpressionProperty stores an expression. Expressions are opaque strings or
// JSON values and are never evaluated.
func (f *FieldBuilder) ExpressionProperty(key string, expression any) *FieldBuilder {
	if f.field.ExpressionProperties == nil {
		f.field.ExpressionProperties = make(map[string]jsonvalue.Value)
	}
	f.field.ExpressionProperties[key] = f.value("expressionProperties."+key, expression)
	return f
}

func (f *FieldBuilder) Hide(hide bool) *FieldBuilder { f.field.Hide = Bool(hide); return f }

func (f *FieldBuilder) HideExpression(expression any) *FieldBuilder {
	f.field.HideExpression = f.value("hideExpression", expression)
	return f
}

func (f *FieldBuilder) Wrappers(wrappers ...string) *FieldBuilder {
	f.field.Wrappers = append(f.field.Wrappers, wrappers...)
	return f
}

func (f *FieldBuilder) modelOptions() *ModelOptions {
	if f.field.ModelOptions == nil {
		f.field.ModelOptions = &ModelOptions{}
	}
	return f.field.ModelOptions
}

func (f *FieldBuilder) Debounce(ms int) *FieldBuilder { f.modelOptions().Debounce = Int(ms); return f }

func (f *FieldBuilder) UpdateOn(event string) *FieldBuilder {
	f.modelOptions().UpdateOn = event
	return f
}

func (f *FieldBuilder) LabelKey(key string) *FieldBuilder { f.i18n().LabelKey = key; return f }

func (f *FieldBuilder) PlaceholderKey(key string) *FieldBuilder {
	f.i18n().PlaceholderKey = key
	return f
}

func (f *FieldBuilder) DescriptionKey(key string) *FieldBuilder {
	f.i18n().DescriptionKey = key
	return f
}

func (f *FieldBuilder) Locale(locale string) *FieldBuilder { f.i18n().Locale = locale; return f }

// ValidationMessageKey maps a validator to the translation key of its message.
func (f *FieldBuilder) ValidationMessageKey(validator, key string) *FieldBuilder {
	i := f.i18n()
	if i.ValidationMessages == nil {
		i.ValidationMessages = make(map[string]string)
	}
	i.ValidationMessages[validator] = key
	return f
}

// TranslationKey stores an arbitrary translation key under props.i18n.
func (f *FieldBuilder) TranslationKey(name, key string) *FieldBuilder {
	i := f.i18n()
	if i.Additional == nil {
		i.Additional = make(map[string]jsonvalue.Value)
	}
	i.Additional[name] = jsonvalue.String(key)
	return f
}

// Hook sets one lifecycle hook by its wire name (onInit, onChanges,
// afterContentInit, afterViewInit, onDestroy).
func (f *FieldBuilder) Hook(event, handler string) *FieldBuilder {
	if f.field.Hooks == nil {
		f.field.Hooks = &LifecycleOptions{}
	}
	h := f.field.Hooks
	switch event {
	case "onInit":
		h.OnInit = handler
	case "onChanges":
		h.OnChanges = handler
	case "afterContentInit":
		h.AfterContentInit = handler
	case "afterViewInit":
		h.AfterViewInit = handler
	case "onDestroy":
		h.OnDestroy = handler
	default:
		f.err = multierr.Append(f.err, fmt.Errorf("hooks: unknown event %q", event))
	}
	return f
}

func (f *FieldBuilder) Parsers(names ...string) *FieldBuilder {
	f.field.Parsers = append(f.field.Parsers, names...)
	return f
}
