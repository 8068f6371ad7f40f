package schema

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Loader resolves schema documents from different sources (file, fs.FS, URL).
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures how documents are loaded from the supported sources.
type LoaderOptions struct {
	FileSystem        fs.FS
	HTTPClient        *http.Client
	AllowHTTPFallback bool
	RequestTimeout    time.Duration
}

// LoaderOption mutates loader configuration.
type LoaderOption func(*LoaderOptions)

// WithFileSystem configures the loader to read from the provided fs.FS.
func WithFileSystem(fsys fs.FS) LoaderOption {
	return func(o *LoaderOptions) {
		o.FileSystem = fsys
	}
}

// WithHTTPClient configures a custom HTTP client used for remote documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(o *LoaderOptions) {
		o.HTTPClient = client
	}
}

// WithHTTPFallback enables a default HTTP client with the supplied timeout
// when none is provided explicitly.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(o *LoaderOptions) {
		o.AllowHTTPFallback = true
		if timeout > 0 {
			o.RequestTimeout = timeout
		}
	}
}

// WithoutHTTP refuses URL sources, useful for tools that must stay offline.
func WithoutHTTP() LoaderOption {
	return func(o *LoaderOptions) {
		o.AllowHTTPFallback = false
		o.HTTPClient = nil
	}
}

// NewLoaderOptions returns the defaults: local files plus an HTTP client with
// a ten second timeout.
func NewLoaderOptions(opts ...LoaderOption) LoaderOptions {
	options := LoaderOptions{
		AllowHTTPFallback: true,
		RequestTimeout:    10 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

type loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

var _ Loader = (*loader)(nil)

// NewLoader constructs a Loader delegating to file, fs.FS, or HTTP strategies.
func NewLoader(opts ...LoaderOption) Loader {
	options := NewLoaderOptions(opts...)
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a document from the provided source and wraps it in a Document.
func (l *loader) Load(ctx context.Context, src Source) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case SourceKindURL:
		if !l.allowHTTP {
			return Document{}, errors.New("schema loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = errors.New("schema loader: unsupported source kind")
	}
	if err != nil {
		return Document{}, err
	}

	return NewDocument(src, data)
}

// Load fetches and decodes a schema in one step. A nil loader uses the
// defaults from NewLoader.
func Load(ctx context.Context, l Loader, src Source) (model.FormSchema, error) {
	if l == nil {
		l = NewLoader()
	}
	doc, err := l.Load(ctx, src)
	if err != nil {
		return model.FormSchema{}, err
	}
	return doc.Schema()
}
