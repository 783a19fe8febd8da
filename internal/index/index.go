package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	bleveindex "github.com/blevesearch/bleve_index_api"

	"github.com/kfreiman/docloader/internal/document"
)

const contentField = "content"

// idWidth pads document ids so the lexical _id tie-break follows load order
const idWidth = 10

// DefaultLimit is the number of hits returned when none is requested
const DefaultLimit = 10

// ErrEmptyQuery is returned by Search for a blank query
var ErrEmptyQuery = errors.New("query must not be empty")

// Hit is a single search result
type Hit struct {
	Document document.Document `json:"document"`
	Score    float64           `json:"score"`
}

// TermCount is a term of the content field with the number of documents containing it
type TermCount struct {
	Term  string `json:"term"`
	Count uint64 `json:"count"`
}

// indexedDocument is the shape stored in bleve
type indexedDocument struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Index is an in-memory BM25 full-text index over loaded documents
type Index struct {
	indexMapping mapping.IndexMapping
	bleveIndex   bleve.Index
	logger       *slog.Logger

	mu   sync.RWMutex
	docs []document.Document
}

// New creates an empty in-memory index
func New(logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	indexMapping := bleve.NewIndexMapping()
	bleveIndex, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory index: %w", err)
	}
	return &Index{
		indexMapping: indexMapping,
		bleveIndex:   bleveIndex,
		logger:       logger,
	}, nil
}

// Add indexes docs in a single batch. Documents keep the position they were
// added in, so equal scores rank in load order.
func (i *Index) Add(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()
	for n, doc := range docs {
		id := docID(len(i.docs) + n)
		err := batch.Index(id, indexedDocument{
			Path:    doc.Path.String(),
			Title:   doc.Metadata[document.MetaTitle],
			Content: doc.Content,
		})
		if err != nil {
			return fmt.Errorf("failed to index document %s: %w", doc.Path, err)
		}
	}
	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply index batch: %w", err)
	}
	i.docs = append(i.docs, docs...)

	i.logger.DebugContext(ctx, "documents indexed",
		"added", len(docs),
		"total", len(i.docs),
	)
	return nil
}

// Len returns the number of indexed documents
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// Search runs a match query over every indexed field and returns at most
// limit hits ordered by descending score
func (i *Index) Search(ctx context.Context, q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(query.NewMatchQuery(q), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})
	results, err := i.bleveIndex.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := make([]Hit, 0, len(results.Hits))
	for _, match := range results.Hits {
		n, ok := docPosition(match.ID)
		if !ok || n >= len(i.docs) {
			continue
		}
		hits = append(hits, Hit{Document: i.docs[n], Score: match.Score})
	}

	i.logger.DebugContext(ctx, "search complete",
		"query", q,
		"total", results.Total,
		"returned", len(hits),
	)
	return hits, nil
}

// TopTerms returns up to n terms of the content field, most widespread first
func (i *Index) TopTerms(n int) ([]TermCount, error) {
	dict, err := i.bleveIndex.FieldDict(contentField)
	if err != nil {
		return nil, fmt.Errorf("failed to open term dictionary: %w", err)
	}
	defer dict.Close()

	terms, err := collectTerms(dict)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(terms, func(a, b TermCount) int {
		if a.Count != b.Count {
			if a.Count > b.Count {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Term, b.Term)
	})
	if n > 0 && len(terms) > n {
		terms = terms[:n]
	}
	return terms, nil
}

func collectTerms(dict bleveindex.FieldDict) ([]TermCount, error) {
	var terms []TermCount
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read term dictionary: %w", err)
		}
		if entry == nil {
			return terms, nil
		}
		terms = append(terms, TermCount{Term: entry.Term, Count: entry.Count})
	}
}

func docID(n int) string {
	return fmt.Sprintf("%0*d", idWidth, n)
}

func docPosition(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Close releases the underlying bleve index
func (i *Index) Close() error {
	return i.bleveIndex.Close()
}
