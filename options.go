package diskkit

import "time"

// Option represents a per-operation write option
type Option func(*Options)

// Options contains all possible options for write operations. Filesystem
// backends accept and ignore the metadata-flavored options; object stores
// apply them to the stored object.
type Options struct {
	// ContentType specifies the MIME type of the file
	ContentType string

	// Metadata contains additional metadata for the file
	Metadata map[string]string

	// Visibility defines the file visibility (public or private)
	Visibility Visibility

	// CacheControl sets the Cache-Control header for the file
	CacheControl string

	// Expires sets when the stored object should expire
	Expires *time.Time
}

// Visibility represents file visibility
type Visibility string

const (
	// Private means the file is only accessible by authenticated users
	Private Visibility = "private"

	// Public means the file is publicly accessible
	Public Visibility = "public"
)

// ApplyOptions folds a list of options into an Options struct. Drivers use
// this to materialize the variadic option list.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithContentType sets the content type of the file
func WithContentType(contentType string) Option {
	return func(o *Options) {
		o.ContentType = contentType
	}
}

// WithMetadata sets additional metadata for the file
func WithMetadata(metadata map[string]string) Option {
	return func(o *Options) {
		o.Metadata = metadata
	}
}

// WithVisibility sets the file visibility
func WithVisibility(visibility Visibility) Option {
	return func(o *Options) {
		o.Visibility = visibility
	}
}

// WithCacheControl sets the Cache-Control header
func WithCacheControl(cacheControl string) Option {
	return func(o *Options) {
		o.CacheControl = cacheControl
	}
}

// WithExpires sets when the stored object should expire
func WithExpires(expires time.Time) Option {
	return func(o *Options) {
		o.Expires = &expires
	}
}
