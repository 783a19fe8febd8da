package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfreiman/docloader/internal/document"
)

func TestMarkdownLoader_Load(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		content  string
		metadata map[string]string
	}{
		{
			name:    "title from first heading",
			source:  "Intro line\n\n## Getting *started*\n\n# Later\n",
			content: "Intro line\n\n## Getting *started*\n\n# Later\n",
			metadata: map[string]string{
				document.MetaFormat: FormatMarkdown,
				document.MetaTitle:  "Getting started",
			},
		},
		{
			name:    "frontmatter becomes metadata",
			source:  "---\nauthor: jane\nversion: 2\ntags: [a, b]\n---\n# Heading\nbody\n",
			content: "# Heading\nbody\n",
			metadata: map[string]string{
				document.MetaFormat: FormatMarkdown,
				document.MetaTitle:  "Heading",
				"author":            "jane",
				"version":           "2",
			},
		},
		{
			name:    "frontmatter title wins over heading",
			source:  "---\ntitle: Explicit\n---\n# Heading\n",
			content: "# Heading\n",
			metadata: map[string]string{
				document.MetaFormat: FormatMarkdown,
				document.MetaTitle:  "Explicit",
			},
		},
		{
			name:    "no heading",
			source:  "just text",
			content: "just text",
			metadata: map[string]string{
				document.MetaFormat: FormatMarkdown,
			},
		},
		{
			name:    "unterminated frontmatter is content",
			source:  "---\nkey: value\nno end\n",
			content: "---\nkey: value\nno end\n",
			metadata: map[string]string{
				document.MetaFormat: FormatMarkdown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disk := memDisk(t, map[string][]byte{"/notes/page.md": []byte(tt.source)})

			docs, err := NewMarkdownLoader(disk).Load(context.Background(), "/notes/page.md")
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, document.Path("/notes/page.md"), docs[0].Path)
			assert.Equal(t, tt.content, docs[0].Content)
			assert.Equal(t, document.Fingerprint([]byte(tt.content)), docs[0].Fingerprint)
			assert.Equal(t, tt.metadata, docs[0].Metadata)
		})
	}
}

func TestMarkdownLoader_InvalidFrontmatter(t *testing.T) {
	disk := memDisk(t, map[string][]byte{"/bad.md": []byte("---\nkey: [unclosed\n---\nbody\n")})

	_, err := NewMarkdownLoader(disk).Load(context.Background(), "/bad.md")

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, FormatMarkdown, convErr.Format)
	assert.Equal(t, "/bad.md", convErr.Path)
}

func TestExtractFrontmatter(t *testing.T) {
	body, fm := extractFrontmatter([]byte("---\na: 1\n---\nrest"))
	assert.Equal(t, "rest", string(body))
	assert.Equal(t, "a: 1", string(fm))

	body, fm = extractFrontmatter([]byte("no frontmatter"))
	assert.Equal(t, "no frontmatter", string(body))
	assert.Nil(t, fm)
}
