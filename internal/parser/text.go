package parser

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/storage"
)

const FormatText = "text"

var errNotUTF8 = errors.New("content is not valid UTF-8")

// TextLoader returns a file's content unchanged as a single document
type TextLoader struct {
	disk storage.Disk
}

// NewTextLoader creates a TextLoader reading through disk
func NewTextLoader(disk storage.Disk) *TextLoader {
	return &TextLoader{disk: disk}
}

func (l *TextLoader) Load(ctx context.Context, path document.Path) ([]document.Document, error) {
	data, err := l.disk.ReadFile(ctx, path.String())
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, &ConversionError{
			OriginalError: errNotUTF8,
			Path:          path.String(),
			Format:        FormatText,
			Hint:          "bind binary files to a format-specific loader",
		}
	}

	doc := document.New(path, string(data)).WithMeta(document.MetaFormat, FormatText)
	return []document.Document{doc}, nil
}
