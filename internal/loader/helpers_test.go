package loader

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/storage"
)

// recordingLoader returns one document per call tagged with its name and
// tracks how many calls overlap
type recordingLoader struct {
	name  string
	delay func(path document.Path) time.Duration
	fail  func(path document.Path) error

	mu        sync.Mutex
	calls     []document.Path
	active    atomic.Int32
	maxActive atomic.Int32
}

func newRecordingLoader(name string) *recordingLoader {
	return &recordingLoader{name: name}
}

func (l *recordingLoader) Load(_ context.Context, path document.Path) ([]document.Document, error) {
	n := l.active.Add(1)
	defer l.active.Add(-1)
	for {
		cur := l.maxActive.Load()
		if n <= cur || l.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}

	l.mu.Lock()
	l.calls = append(l.calls, path)
	l.mu.Unlock()

	if l.delay != nil {
		time.Sleep(l.delay(path))
	}
	if l.fail != nil {
		if err := l.fail(path); err != nil {
			return nil, err
		}
	}
	return []document.Document{
		document.New(path, l.name+":"+path.String()),
	}, nil
}

func (l *recordingLoader) called() []document.Path {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]document.Path(nil), l.calls...)
}

func memDisk(t *testing.T, files map[string]string) *storage.AferoDisk {
	t.Helper()
	d := storage.NewMemMapDisk()
	for name, content := range files {
		require.NoError(t, d.Fs().MkdirAll(filepath.Dir(name), 0755))
		require.NoError(t, afero.WriteFile(d.Fs(), name, []byte(content), 0644))
	}
	return d
}

func paths(docs []document.Document) []document.Path {
	out := make([]document.Path, len(docs))
	for i, doc := range docs {
		out[i] = doc.Path
	}
	return out
}

func contents(docs []document.Document) []string {
	out := make([]string, len(docs))
	for i, doc := range docs {
		out[i] = doc.Content
	}
	return out
}

// faultyDisk wraps a disk and fails Kind for one entry or the scan after a
// number of entries
type faultyDisk struct {
	storage.Disk
	kindFailure string
	scanFailAt  int
}

var errInjected = errors.New("injected failure")

func (d *faultyDisk) Kind(ctx context.Context, entry storage.Entry) (storage.Kind, error) {
	if entry.Path == d.kindFailure {
		return storage.KindOther, &storage.StorageError{Operation: "stat", Path: entry.Path, Err: errInjected}
	}
	return d.Disk.Kind(ctx, entry)
}

func (d *faultyDisk) Scan(ctx context.Context, dir string) iter.Seq2[storage.Entry, error] {
	return func(yield func(storage.Entry, error) bool) {
		n := 0
		for entry, err := range d.Disk.Scan(ctx, dir) {
			if d.scanFailAt > 0 && n == d.scanFailAt {
				yield(storage.Entry{}, &storage.StorageError{Operation: "scan", Path: dir, Err: errInjected})
				return
			}
			n++
			if !yield(entry, err) {
				return
			}
		}
	}
}
