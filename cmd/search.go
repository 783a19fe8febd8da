package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/index"
	"github.com/kfreiman/docloader/internal/storage"
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <path> <query>",
		Short: "Load a directory and run a full-text query over its documents",
		Args:  cobra.ExactArgs(2),
		RunE:  runSearch,
	}
	cmd.Flags().Int("limit", index.DefaultLimit, "maximum number of hits")
	cmd.Flags().Int("terms", 0, "also print the N most widespread terms")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	l, err := newDirectoryLoader(cfg, storage.NewOSDisk(cfg.Root), logger)
	if err != nil {
		return err
	}

	docs, err := l.Load(ctx, document.Path(loadPath(cfg.Root, args[0])))
	if err != nil {
		return err
	}

	idx, err := index.New(logger)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Add(ctx, docs); err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	hits, err := idx.Search(ctx, args[1], limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeHits(out, hits, len(docs)); err != nil {
		return err
	}

	if n, _ := cmd.Flags().GetInt("terms"); n > 0 {
		terms, err := idx.TopTerms(n)
		if err != nil {
			return err
		}
		return writeTerms(out, terms)
	}
	return nil
}

// writeHits prints one line per hit in rank order
func writeHits(w io.Writer, hits []index.Hit, loaded int) error {
	if len(hits) == 0 {
		_, err := fmt.Fprintf(w, "no matches in %d documents\n", loaded)
		return err
	}
	for i, hit := range hits {
		if _, err := fmt.Fprintf(w, "%d. %s score=%.4f sha256=%s\n", i+1, hit.Document.Path, hit.Score, hit.Document.Fingerprint); err != nil {
			return err
		}
	}
	return nil
}

func writeTerms(w io.Writer, terms []index.TermCount) error {
	if _, err := fmt.Fprintln(w, "\nterms:"); err != nil {
		return err
	}
	for _, term := range terms {
		if _, err := fmt.Fprintf(w, "  %s (%d)\n", term.Term, term.Count); err != nil {
			return err
		}
	}
	return nil
}
