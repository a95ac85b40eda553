package openapi

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// DefaultMaxDocumentBytes caps the size of a loaded document.
const DefaultMaxDocumentBytes int64 = 16 << 20

// Loader fetches raw documents from a Source.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures how a Loader resolves sources. Loading is offline
// by default: URL sources fail unless an HTTP client or the fallback is
// configured.
type LoaderOptions struct {
	// FileSystem serves fs sources. fs sources fail when it is nil.
	FileSystem fs.FS

	// HTTPClient serves URL sources.
	HTTPClient *http.Client

	// AllowHTTPFallback serves URL sources with a default client when
	// HTTPClient is nil.
	AllowHTTPFallback bool

	// RequestTimeout caps a single remote fetch. Zero means no limit beyond
	// the caller's context.
	RequestTimeout time.Duration

	// MaxDocumentBytes rejects larger payloads. Zero selects
	// DefaultMaxDocumentBytes.
	MaxDocumentBytes int64
}

// LoaderOption mutates LoaderOptions.
type LoaderOption func(*LoaderOptions)

// WithFileSystem sets the fs.FS used for fs sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables URL sources through a default client with the
// given timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithMaxDocumentBytes overrides the payload size limit.
func WithMaxDocumentBytes(limit int64) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.MaxDocumentBytes = limit
	}
}

// NewLoaderOptions applies options and fills defaults.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	return cfg
}
