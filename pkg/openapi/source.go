package openapi

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

type fileSource string

func (s fileSource) Kind() SourceKind { return SourceKindFile }
func (s fileSource) Location() string { return string(s) }

type fsSource string

func (s fsSource) Kind() SourceKind { return SourceKindFS }
func (s fsSource) Location() string { return string(s) }

type urlSource string

func (s urlSource) Kind() SourceKind { return SourceKindURL }
func (s urlSource) Location() string { return string(s) }

// SourceFromFile points at a path on the local filesystem.
func SourceFromFile(path string) Source {
	return fileSource(filepath.Clean(path))
}

// SourceFromFS points at a name inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return fsSource(name)
}

// SourceFromURL points at an HTTP(S) endpoint. It panics on a malformed URL;
// use ParseSource for untrusted input.
func SourceFromURL(raw string) Source {
	src, err := parseURL(raw)
	if err != nil {
		panic(err)
	}
	return src
}

// ParseSource classifies a command-line style location: http and https URLs
// become URL sources, everything else a file path.
func ParseSource(location string) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("openapi: empty source location")
	}
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return parseURL(location)
	}
	return SourceFromFile(location), nil
}

func parseURL(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("openapi: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	return urlSource(raw), nil
}
