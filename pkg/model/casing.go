package model

import (
	"fmt"
	"strings"
	"unicode"
)

// Casing selects how struct-derived property names are written on encode.
type Casing int

const (
	// CasingCamel is the published wire format (fieldGroupClassName).
	CasingCamel Casing = iota
	// CasingSnake writes field_group_class_name.
	CasingSnake
	// CasingPascal writes FieldGroupClassName.
	CasingPascal
)

func (c Casing) String() string {
	switch c {
	case CasingSnake:
		return "snake"
	case CasingPascal:
		return "pascal"
	default:
		return "camel"
	}
}

// ParseCasing maps a configuration string onto a Casing.
func ParseCasing(value string) (Casing, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "camel", "camelcase":
		return CasingCamel, nil
	case "snake", "snake_case":
		return CasingSnake, nil
	case "pascal", "pascalcase":
		return CasingPascal, nil
	default:
		return CasingCamel, fmt.Errorf("model: unknown casing %q", value)
	}
}

// apply converts a camelCase name into the selected casing.
func (c Casing) apply(name string) string {
	switch c {
	case CasingSnake:
		return toSnake(name)
	case CasingPascal:
		return toPascal(name)
	default:
		return name
	}
}

func toSnake(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func toPascal(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
