package openapi

import "errors"

// Source identifies where an OpenAPI document comes from, so loaders can
// read files, fs.FS entries or URLs behind one interface.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Document is a raw OpenAPI payload (JSON or YAML) plus its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw into a Document. Both arguments are required.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNewDocument panics if the document cannot be created.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin of the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Len returns the payload size in bytes.
func (d Document) Len() int {
	return len(d.raw)
}

// Location returns the origin identifier, or "" for a zero Document.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}
