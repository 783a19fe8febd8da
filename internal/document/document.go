package document

import (
	"context"
	"crypto/sha256"
	"fmt"
)

// Path identifies a resource a Loader can read: a filesystem path, a URL or a
// backend-specific key
type Path string

// String returns the path as a plain string
func (p Path) String() string {
	return string(p)
}

// Metadata keys set by the bundled loaders
const (
	MetaFormat = "format"
	MetaTitle  = "title"
	MetaPage   = "page"
)

// Document is a single unit produced by a Loader
type Document struct {
	Path        Path              `json:"path"`
	Content     string            `json:"content"`
	Fingerprint string            `json:"fingerprint"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// New creates a document and computes its content fingerprint
func New(path Path, content string) Document {
	return Document{
		Path:        path,
		Content:     content,
		Fingerprint: Fingerprint([]byte(content)),
	}
}

// WithMeta returns a copy of the document with the metadata key set
func (d Document) WithMeta(key, value string) Document {
	meta := make(map[string]string, len(d.Metadata)+1)
	for k, v := range d.Metadata {
		meta[k] = v
	}
	meta[key] = value
	d.Metadata = meta
	return d
}

// Fingerprint returns the hex-encoded SHA-256 of content
func Fingerprint(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// Loader parses a single addressable resource into zero or more documents.
// Leaf format parsers and directory loaders both implement it.
type Loader interface {
	Load(ctx context.Context, path Path) ([]Document, error)
}

// LoaderFunc adapts a plain function to the Loader interface
type LoaderFunc func(ctx context.Context, path Path) ([]Document, error)

// Load calls f(ctx, path)
func (f LoaderFunc) Load(ctx context.Context, path Path) ([]Document, error) {
	return f(ctx, path)
}
