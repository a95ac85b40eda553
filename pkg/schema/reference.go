package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ReferencePrefix is the only reference shape the resolver accepts.
const ReferencePrefix = "#/components/schemas/"

var (
	// ErrInvalidReference reports a reference outside the supported
	// local-pointer grammar.
	ErrInvalidReference = errors.New("schema: invalid reference")
	// ErrSchemaNotFound reports a well-formed reference whose name is absent
	// from the document.
	ErrSchemaNotFound = errors.New("schema: schema not found")
)

// ReferenceError carries the offending reference alongside the failure kind.
// Match the kind with errors.Is against ErrInvalidReference or
// ErrSchemaNotFound.
type ReferenceError struct {
	Kind      error
	Reference string
	Reason    string
}

func (e *ReferenceError) Error() string {
	msg := fmt.Sprintf("%v: %q", e.Kind, e.Reference)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *ReferenceError) Unwrap() error { return e.Kind }

// Reference builds the local reference for a component schema name.
func Reference(name string) string {
	return ReferencePrefix + name
}

// ParseReference extracts the component name from a reference of the exact
// shape "#/components/schemas/<Name>". Nested pointers, external documents
// and empty names are rejected.
func ParseReference(ref string) (string, error) {
	if !strings.HasPrefix(ref, ReferencePrefix) {
		return "", &ReferenceError{
			Kind:      ErrInvalidReference,
			Reference: ref,
			Reason:    "only local references of the form " + ReferencePrefix + "<Name> are supported",
		}
	}
	name := strings.TrimPrefix(ref, ReferencePrefix)
	if name == "" {
		return "", &ReferenceError{Kind: ErrInvalidReference, Reference: ref, Reason: "schema name is empty"}
	}
	if strings.Contains(name, "/") {
		return "", &ReferenceError{Kind: ErrInvalidReference, Reference: ref, Reason: "nested pointers are not supported"}
	}
	return name, nil
}

// Resolve looks up the schema addressed by ref. Lookup is case-sensitive and
// exact; the returned node is not dereferenced further.
func Resolve(doc Document, ref string) (*Node, error) {
	name, err := ParseReference(ref)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &ReferenceError{Kind: ErrSchemaNotFound, Reference: ref, Reason: "document is nil"}
	}
	node, ok := doc.LookupSchema(name)
	if !ok || node == nil {
		return nil, &ReferenceError{Kind: ErrSchemaNotFound, Reference: ref}
	}
	return node, nil
}
