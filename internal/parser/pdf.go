package parser

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/storage"
)

const FormatPDF = "pdf"

// PDFLoader extracts text from PDF files using pure Go. Every page with text
// becomes its own document carrying the page number in its metadata.
type PDFLoader struct {
	disk storage.Disk
}

// NewPDFLoader creates a PDFLoader reading through disk
func NewPDFLoader(disk storage.Disk) *PDFLoader {
	return &PDFLoader{disk: disk}
}

func (l *PDFLoader) Load(ctx context.Context, path document.Path) (docs []document.Document, err error) {
	data, err := l.disk.ReadFile(ctx, path.String())
	if err != nil {
		return nil, err
	}

	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = &ConversionError{
				OriginalError: fmt.Errorf("%v", r),
				Path:          path.String(),
				Format:        FormatPDF,
				Hint:          "malformed PDF",
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ConversionError{
			OriginalError: err,
			Path:          path.String(),
			Format:        FormatPDF,
			Hint:          "failed to open PDF",
		}
	}

	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, &ConversionError{
				OriginalError: err,
				Path:          path.String(),
				Format:        FormatPDF,
				Hint:          fmt.Sprintf("failed to extract text from page %d", i),
			}
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		doc := document.New(path, text).
			WithMeta(document.MetaFormat, FormatPDF).
			WithMeta(document.MetaPage, strconv.Itoa(i))
		docs = append(docs, doc)
	}

	return docs, nil
}
