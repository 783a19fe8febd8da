package parser

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/storage"
)

const FormatMarkdown = "markdown"

// MarkdownLoader loads a markdown file as one document. YAML frontmatter is
// stripped from the content and its scalar fields become metadata; the first
// heading becomes the title unless the frontmatter sets one.
type MarkdownLoader struct {
	disk     storage.Disk
	markdown goldmark.Markdown
}

// NewMarkdownLoader creates a MarkdownLoader reading through disk
func NewMarkdownLoader(disk storage.Disk) *MarkdownLoader {
	return &MarkdownLoader{
		disk:     disk,
		markdown: goldmark.New(),
	}
}

func (l *MarkdownLoader) Load(ctx context.Context, path document.Path) ([]document.Document, error) {
	data, err := l.disk.ReadFile(ctx, path.String())
	if err != nil {
		return nil, err
	}

	body, frontmatter := extractFrontmatter(data)
	meta := map[string]string{}
	if frontmatter != nil {
		fields := map[string]any{}
		if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
			return nil, &ConversionError{
				OriginalError: err,
				Path:          path.String(),
				Format:        FormatMarkdown,
				Hint:          "failed to parse frontmatter",
			}
		}
		for k, v := range fields {
			switch v.(type) {
			case map[string]any, []any, nil:
				continue
			}
			meta[k] = fmt.Sprint(v)
		}
	}

	if _, ok := meta[document.MetaTitle]; !ok {
		root := l.markdown.Parser().Parse(text.NewReader(body))
		if title := firstHeading(root, body); title != "" {
			meta[document.MetaTitle] = title
		}
	}

	meta[document.MetaFormat] = FormatMarkdown

	doc := document.New(path, string(body))
	doc.Metadata = meta
	return []document.Document{doc}, nil
}

// firstHeading returns the text of the first heading of any level
func firstHeading(root ast.Node, source []byte) string {
	var title string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			title = extractText(heading, source)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

// extractText concatenates the text segments below n
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		buf.WriteString(extractText(c, source))
	}
	return buf.String()
}

// extractFrontmatter splits a leading '---' delimited YAML block from content.
// It returns the content unchanged and nil when there is none.
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatter := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.Join(lines[i+1:], []byte("\n"))
			return body, frontmatter
		}
	}

	return content, nil
}
