package parser

import (
	"slices"
	"strings"
	"sync"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/loader"
	"github.com/kfreiman/docloader/internal/storage"
)

// DefaultPatterns binds the bundled formats to their usual extensions
const DefaultPatterns = "**/*.md=markdown,**/*.txt=text,**/*.pdf=pdf,**/*.html=html,**/*.htm=html"

// Binding pairs a glob pattern with a format name
type Binding struct {
	Pattern string
	Format  string
}

// Registry maps format names to leaf loaders
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]document.Loader
}

// NewRegistry creates a registry holding the bundled loaders, all reading
// through disk
func NewRegistry(disk storage.Disk) *Registry {
	r := &Registry{loaders: make(map[string]document.Loader)}
	r.Register(FormatText, NewTextLoader(disk))
	r.Register(FormatMarkdown, NewMarkdownLoader(disk))
	r.Register(FormatHTML, NewHTMLLoader(disk))
	r.Register(FormatPDF, NewPDFLoader(disk))
	return r
}

// Register adds or replaces the loader for format
func (r *Registry) Register(format string, l document.Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[strings.ToLower(format)] = l
}

// Lookup returns the loader registered for format
func (r *Registry) Lookup(format string) (document.Loader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[strings.ToLower(format)]
	if !ok {
		return nil, &UnknownFormatError{Format: format}
	}
	return l, nil
}

// Formats returns the registered format names, sorted
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.loaders))
	for f := range r.loaders {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

// Rules resolves bindings into loader rules, keeping their order
func (r *Registry) Rules(bindings []Binding) ([]loader.Rule, error) {
	rules := make([]loader.Rule, 0, len(bindings))
	for _, b := range bindings {
		l, err := r.Lookup(b.Format)
		if err != nil {
			return nil, err
		}
		rules = append(rules, loader.Rule{Pattern: b.Pattern, Loader: l})
	}
	return rules, nil
}

// ParseBindings parses a comma-separated list of glob=format pairs. The last
// '=' separates the format, so patterns may contain '='.
func ParseBindings(list string) ([]Binding, error) {
	var bindings []Binding
	for part := range strings.SplitSeq(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i := strings.LastIndex(part, "=")
		if i < 0 {
			return nil, &BindingError{Binding: part, Reason: "expected glob=format"}
		}
		pattern := strings.TrimSpace(part[:i])
		format := strings.TrimSpace(part[i+1:])
		if pattern == "" || format == "" {
			return nil, &BindingError{Binding: part, Reason: "pattern and format must not be empty"}
		}
		bindings = append(bindings, Binding{Pattern: pattern, Format: format})
	}
	return bindings, nil
}
