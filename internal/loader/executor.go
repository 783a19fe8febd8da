package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kfreiman/docloader/internal/document"
)

// execute runs every task with at most maxConcurrency loaders in flight.
// results[i] holds the documents of tasks[i]. The first failure stops further
// dispatch; tasks already running finish but their results are dropped, and
// the failure with the lowest task index is returned.
func execute(ctx context.Context, tasks []Task, maxConcurrency int, logger *slog.Logger) ([][]document.Document, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(maxConcurrency)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([][]document.Document, len(tasks))
	errs := make([]error, len(tasks))

	var (
		failed      atomic.Bool
		wg          sync.WaitGroup
		dispatchErr error
	)

	for i, task := range tasks {
		if failed.Load() {
			break
		}
		if err := ctx.Err(); err != nil {
			dispatchErr = err
			break
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			// a slot may free up only after another task failed
			if failed.Load() {
				return
			}
			docs, err := runTask(ctx, task, logger)
			if err != nil {
				errs[i] = err
				failed.Store(true)
				return
			}
			results[i] = docs
		})
		if submitErr != nil {
			wg.Done()
			dispatchErr = fmt.Errorf("dispatch %s: %w", task.Path, submitErr)
			break
		}
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if dispatchErr != nil {
		return nil, dispatchErr
	}
	return results, nil
}

// runTask invokes the task's loader, turning failures and panics into a
// ParseError carrying the task path
func runTask(ctx context.Context, task Task, logger *slog.Logger) (docs []document.Document, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = &ParseError{Path: task.Path, Err: fmt.Errorf("loader panic: %v", r)}
		}
	}()

	docs, err = task.Loader.Load(ctx, task.Path)
	if err != nil {
		logger.DebugContext(ctx, "task failed",
			"error", err,
			"path", task.Path,
			"duration", time.Since(start),
		)
		return nil, &ParseError{Path: task.Path, Err: err}
	}

	logger.DebugContext(ctx, "task completed",
		"path", task.Path,
		"documents", len(docs),
		"duration", time.Since(start),
	)
	return docs, nil
}

// flatten concatenates per-task results keeping task order
func flatten(results [][]document.Document) []document.Document {
	total := 0
	for _, docs := range results {
		total += len(docs)
	}
	out := make([]document.Document, 0, total)
	for _, docs := range results {
		out = append(out, docs...)
	}
	return out
}
