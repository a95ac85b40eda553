package translate

import (
	"fmt"
	"strings"
)

// ExtensionKey is the reserved schema extension carrying field configurations.
const ExtensionKey = "x-formly"

// AdditionalFieldsKey holds keyless configs inside an extension bag.
const AdditionalFieldsKey = "additionalFields"

// NumericPolicy decides how schema minimum/maximum values land in props.min
// and props.max.
type NumericPolicy int

const (
	// NumericPreserve keeps the bound exactly as the schema states it.
	NumericPreserve NumericPolicy = iota
	// NumericTruncate converts bounds to integers, truncating toward zero.
	NumericTruncate
	// NumericReject fails translation when an integer schema carries a
	// fractional bound.
	NumericReject
)

func (p NumericPolicy) String() string {
	switch p {
	case NumericTruncate:
		return "truncate"
	case NumericReject:
		return "reject"
	default:
		return "preserve"
	}
}

// ParseNumericPolicy maps a configuration string onto a NumericPolicy.
func ParseNumericPolicy(value string) (NumericPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "preserve":
		return NumericPreserve, nil
	case "truncate":
		return NumericTruncate, nil
	case "reject":
		return NumericReject, nil
	default:
		return NumericPreserve, fmt.Errorf("translate: unknown numeric policy %q", value)
	}
}

// Translator converts schema nodes into field configurations and back. It
// holds configuration only and is safe for concurrent use.
type Translator struct {
	labeler  Labeler
	numeric  NumericPolicy
	sanitize bool
}

// Option configures a Translator.
type Option func(*Translator)

// WithLabeler overrides how labels are derived for untitled properties.
func WithLabeler(labeler Labeler) Option {
	return func(t *Translator) {
		if labeler != nil {
			t.labeler = labeler
		}
	}
}

// WithNumericPolicy selects the numeric bound policy.
func WithNumericPolicy(policy NumericPolicy) Option {
	return func(t *Translator) {
		t.numeric = policy
	}
}

// WithSanitize strips markup from titles and descriptions when enabled.
func WithSanitize(enabled bool) Option {
	return func(t *Translator) {
		t.sanitize = enabled
	}
}

// New constructs a Translator. Untitled properties are labelled with their
// name and bounds are preserved unless options say otherwise.
func New(options ...Option) *Translator {
	t := &Translator{labeler: RawLabeler, numeric: NumericPreserve}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func (t *Translator) text(raw string) string {
	if t.sanitize {
		return sanitizeText(raw)
	}
	return raw
}

func (t *Translator) label(name, title string) string {
	if title != "" {
		return t.text(title)
	}
	if name == "" {
		return ""
	}
	return t.labeler(name)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}
