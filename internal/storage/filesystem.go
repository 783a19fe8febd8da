package storage

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Kind classifies an entry returned by a scan
type Kind int

const (
	KindOther Kind = iota
	KindFile
	KindDir
)

// String returns a lowercase name for the kind
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return "other"
	}
}

// Entry is a single item yielded while scanning. Path is relative to the disk
// root and uses forward slashes.
type Entry struct {
	Path string
}

// Disk is the storage port the loaders read through
type Disk interface {
	// Root returns the prefix joined with entry paths to build qualified paths.
	// It always ends with a slash.
	Root() string
	// Scan recursively lists everything below dir. The sequence is lazy and
	// stops as soon as the consumer stops ranging over it.
	Scan(ctx context.Context, dir string) iter.Seq2[Entry, error]
	// Kind reports whether an entry is a regular file, a directory or something else
	Kind(ctx context.Context, entry Entry) (Kind, error)
	// Exists reports whether path resolves to anything on the disk
	Exists(ctx context.Context, path string) (bool, error)
	// ReadFile reads the whole file at path
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// errStopScan unwinds afero.Walk once the consumer is done
var errStopScan = errors.New("scan stopped")

// AferoDisk implements Disk on top of an afero filesystem
type AferoDisk struct {
	fs   afero.Fs
	root string
}

// NewAferoDisk wraps fs in a Disk rooted at root. A root other than "/" is
// enforced with afero's base path filesystem.
func NewAferoDisk(fs afero.Fs, root string) *AferoDisk {
	root = normalizeRoot(root)
	if root != "/" {
		fs = afero.NewBasePathFs(fs, root)
	}
	return &AferoDisk{fs: fs, root: root}
}

// NewOSDisk returns a Disk backed by the operating system filesystem
func NewOSDisk(root string) *AferoDisk {
	return NewAferoDisk(afero.NewOsFs(), root)
}

// NewMemMapDisk returns a Disk backed by afero's in-memory filesystem
func NewMemMapDisk() *AferoDisk {
	return NewAferoDisk(afero.NewMemMapFs(), "/")
}

// Fs exposes the underlying filesystem, mainly for seeding fixtures
func (d *AferoDisk) Fs() afero.Fs {
	return d.fs
}

func (d *AferoDisk) Root() string {
	return d.root
}

func (d *AferoDisk) Scan(ctx context.Context, dir string) iter.Seq2[Entry, error] {
	start := d.name(dir)
	return func(yield func(Entry, error) bool) {
		err := afero.Walk(d.fs, start, func(path string, info os.FileInfo, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				return &StorageError{Operation: "scan", Path: d.root + internalRelative(path), Err: err}
			}
			// the directory being scanned is not an entry of itself
			if path == start && info.IsDir() {
				return nil
			}
			if !yield(Entry{Path: internalRelative(path)}, nil) {
				return errStopScan
			}
			return nil
		})
		if err == nil || errors.Is(err, errStopScan) {
			return
		}
		var storageErr *StorageError
		if !errors.As(err, &storageErr) {
			err = &StorageError{Operation: "scan", Path: d.root + internalRelative(start), Err: err}
		}
		yield(Entry{}, err)
	}
}

func (d *AferoDisk) Kind(ctx context.Context, entry Entry) (Kind, error) {
	if err := ctx.Err(); err != nil {
		return KindOther, err
	}
	info, err := d.lstat("/" + entry.Path)
	if err != nil {
		return KindOther, &StorageError{Operation: "stat", Path: d.root + entry.Path, Err: err}
	}
	mode := info.Mode()
	switch {
	case mode.IsRegular():
		return KindFile, nil
	case mode.IsDir():
		return KindDir, nil
	default:
		return KindOther, nil
	}
}

func (d *AferoDisk) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := d.fs.Stat(d.name(path)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &StorageError{Operation: "stat", Path: path, Err: err}
	}
	return true, nil
}

func (d *AferoDisk) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(d.fs, d.name(path))
	if err != nil {
		return nil, &StorageError{Operation: "read file", Path: path, Err: err}
	}
	return data, nil
}

// IsAccessible checks that the disk root can be listed
func (d *AferoDisk) IsAccessible() bool {
	info, err := d.fs.Stat("/")
	return err == nil && info.IsDir()
}

func (d *AferoDisk) lstat(name string) (os.FileInfo, error) {
	if l, ok := d.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return d.fs.Stat(name)
}

// relative strips the root prefix (when present) and any leading slash from a
// caller supplied path
func (d *AferoDisk) relative(path string) string {
	path = filepath.ToSlash(path)
	if d.root != "/" {
		if trimmed, ok := strings.CutPrefix(path, d.root); ok {
			path = trimmed
		} else if path+"/" == d.root {
			path = ""
		}
	}
	return strings.TrimLeft(path, "/")
}

// internalRelative converts a name produced by afero.Walk inside d.fs
func internalRelative(name string) string {
	return strings.TrimLeft(filepath.ToSlash(name), "/")
}

// name maps a qualified or relative path to a name inside d.fs
func (d *AferoDisk) name(path string) string {
	return "/" + d.relative(path)
}

func normalizeRoot(root string) string {
	root = filepath.ToSlash(strings.TrimSpace(root))
	if root == "" {
		return "/"
	}
	if !strings.HasPrefix(root, "/") {
		if abs, err := filepath.Abs(root); err == nil {
			root = filepath.ToSlash(abs)
		}
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root
}
