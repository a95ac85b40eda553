// Package loader reads raw OpenAPI documents from files, an fs.FS or HTTP.
package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	pkgopenapi "github.com/goliatone/go-formly/pkg/openapi"
)

// ErrTooLarge reports a payload above the configured size limit.
var ErrTooLarge = errors.New("openapi loader: document exceeds size limit")

// Loader implements pkgopenapi.Loader.
type Loader struct {
	options pkgopenapi.LoaderOptions
	http    *http.Client
}

var _ pkgopenapi.Loader = (*Loader)(nil)

// New constructs a Loader from resolved options.
func New(options pkgopenapi.LoaderOptions) *Loader {
	if options.MaxDocumentBytes <= 0 {
		options.MaxDocumentBytes = pkgopenapi.DefaultMaxDocumentBytes
	}

	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if options.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = options.RequestTimeout
		}
		client = &clone
	case options.AllowHTTPFallback:
		client = &http.Client{Timeout: options.RequestTimeout}
	}
	return &Loader{options: options, http: client}
}

// Load fetches src and wraps the payload in a Document.
func (l *Loader) Load(ctx context.Context, src pkgopenapi.Source) (pkgopenapi.Document, error) {
	if ctx == nil {
		return pkgopenapi.Document{}, errors.New("openapi loader: context is required")
	}
	if src == nil {
		return pkgopenapi.Document{}, errors.New("openapi loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return pkgopenapi.Document{}, err
	}

	limit := l.options.MaxDocumentBytes
	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case pkgopenapi.SourceKindFile:
		data, err = loadFile(src.Location(), limit)
	case pkgopenapi.SourceKindFS:
		data, err = loadFromFS(l.options.FileSystem, src.Location(), limit)
	case pkgopenapi.SourceKindURL:
		if l.http == nil {
			return pkgopenapi.Document{}, errors.New("openapi loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.options.RequestTimeout, limit)
	default:
		err = fmt.Errorf("openapi loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return pkgopenapi.Document{}, err
	}
	return pkgopenapi.NewDocument(src, data)
}

func checkSize(data []byte, limit int64, location string) error {
	if int64(len(data)) > limit {
		return fmt.Errorf("%w: %s (%d > %d bytes)", ErrTooLarge, location, len(data), limit)
	}
	return nil
}

// timeoutContext bounds ctx by timeout when one is set.
func timeoutContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
