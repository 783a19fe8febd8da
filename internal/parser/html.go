package parser

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/storage"
)

const FormatHTML = "html"

var errNoReadableContent = errors.New("no readable content found")

// HTMLLoader extracts the main article text of an HTML file with go-readability
type HTMLLoader struct {
	disk storage.Disk
}

// NewHTMLLoader creates an HTMLLoader reading through disk
func NewHTMLLoader(disk storage.Disk) *HTMLLoader {
	return &HTMLLoader{disk: disk}
}

func (l *HTMLLoader) Load(ctx context.Context, path document.Path) ([]document.Document, error) {
	data, err := l.disk.ReadFile(ctx, path.String())
	if err != nil {
		return nil, err
	}

	pageURL := &url.URL{Scheme: "file", Path: path.String()}
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return nil, &ConversionError{
			OriginalError: err,
			Path:          path.String(),
			Format:        FormatHTML,
			Hint:          "failed to parse HTML",
		}
	}
	if article.Node == nil {
		return nil, &ConversionError{
			OriginalError: errNoReadableContent,
			Path:          path.String(),
			Format:        FormatHTML,
		}
	}

	var buf bytes.Buffer
	if err := article.RenderText(&buf); err != nil {
		return nil, &ConversionError{
			OriginalError: err,
			Path:          path.String(),
			Format:        FormatHTML,
			Hint:          "failed to render article text",
		}
	}

	content := strings.TrimSpace(buf.String())
	if content == "" {
		return nil, &ConversionError{
			OriginalError: errNoReadableContent,
			Path:          path.String(),
			Format:        FormatHTML,
		}
	}

	doc := document.New(path, content).WithMeta(document.MetaFormat, FormatHTML)
	return []document.Document{doc}, nil
}
