package translate

import (
	"errors"
	"fmt"
)

var (
	// ErrExtensionParse is wrapped by every ExtensionParseError.
	ErrExtensionParse = errors.New("translate: malformed x-formly payload")
	// ErrNonIntegralBound reports a fractional minimum/maximum on an integer
	// schema under NumericReject.
	ErrNonIntegralBound = errors.New("translate: non-integral bound on integer schema")
)

// ExtensionParseError reports an x-formly payload that could not be decoded
// into field configurations. Ref is filled in by callers that know which
// document reference was being translated.
type ExtensionParseError struct {
	Ref  string
	Path string
	Err  error
}

func (e *ExtensionParseError) Error() string {
	location := e.Path
	if location == "" {
		location = "<root>"
	}
	if e.Ref != "" {
		location = e.Ref + " " + location
	}
	return fmt.Sprintf("%v at %s: %v", ErrExtensionParse, location, e.Err)
}

// Unwrap returns the underlying decode failure.
func (e *ExtensionParseError) Unwrap() error { return e.Err }

// Is matches ErrExtensionParse.
func (e *ExtensionParseError) Is(target error) bool { return target == ErrExtensionParse }

// WithRef returns a copy carrying ref.
func (e *ExtensionParseError) WithRef(ref string) *ExtensionParseError {
	out := *e
	out.Ref = ref
	return &out
}
