package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfreiman/docloader/internal/document"
)

func TestPDFLoader_Load(t *testing.T) {
	disk := memDisk(t, map[string][]byte{
		"/papers/two.pdf":   buildPDF([]string{"Hello from page one", "", "Page three text"}),
		"/papers/blank.pdf": buildPDF([]string{""}),
		"/papers/bad.pdf":   []byte("this is not a pdf"),
	})
	l := NewPDFLoader(disk)

	t.Run("one document per page with text", func(t *testing.T) {
		docs, err := l.Load(context.Background(), "/papers/two.pdf")
		require.NoError(t, err)
		require.Len(t, docs, 2)

		assert.Contains(t, docs[0].Content, "Hello from page one")
		assert.Equal(t, "1", docs[0].Metadata[document.MetaPage])
		assert.Contains(t, docs[1].Content, "Page three text")
		assert.Equal(t, "3", docs[1].Metadata[document.MetaPage])

		for _, doc := range docs {
			assert.Equal(t, document.Path("/papers/two.pdf"), doc.Path)
			assert.Equal(t, FormatPDF, doc.Metadata[document.MetaFormat])
			assert.Equal(t, document.Fingerprint([]byte(doc.Content)), doc.Fingerprint)
		}
	})

	t.Run("pdf without text yields no documents", func(t *testing.T) {
		docs, err := l.Load(context.Background(), "/papers/blank.pdf")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("invalid pdf", func(t *testing.T) {
		_, err := l.Load(context.Background(), "/papers/bad.pdf")
		var convErr *ConversionError
		require.ErrorAs(t, err, &convErr)
		assert.Equal(t, FormatPDF, convErr.Format)
		assert.Equal(t, "/papers/bad.pdf", convErr.Path)
	})
}
