package loader

import (
	"context"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/storage"
)

// Task is a single matched file and the loader selected for it
type Task struct {
	Path   document.Path
	Loader document.Loader
}

// walk scans dir and returns one task per file matched by the registry, in
// scan order. Any storage or pattern error aborts the walk.
func walk(ctx context.Context, disk storage.Disk, dir string, rules registry) ([]Task, error) {
	root := disk.Root()

	var tasks []Task
	for entry, err := range disk.Scan(ctx, dir) {
		if err != nil {
			return nil, err
		}

		kind, err := disk.Kind(ctx, entry)
		if err != nil {
			return nil, err
		}
		if kind != storage.KindFile {
			continue
		}

		qualified := root + entry.Path
		l, err := rules.match(qualified)
		if err != nil {
			return nil, err
		}
		if l == nil {
			continue
		}

		tasks = append(tasks, Task{Path: document.Path(qualified), Loader: l})
	}

	return tasks, nil
}
