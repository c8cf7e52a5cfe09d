package loader

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/ulikunitz/xz"
)

// Source is a named definition document.
type Source interface {
	// ID identifies the source. Sources load in lexicographic ID order.
	ID() string
	// Open returns the decompressed document.
	Open() (io.ReadCloser, error)
}

// FileSource reads a definition file. Files ending in .xz or .gz are
// decompressed transparently.
type FileSource struct {
	path string
}

// NewFileSource creates a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path)}
}

func (s *FileSource) ID() string { return s.path }

// Path returns the file path.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(s.path, ".xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &stackedReader{Reader: xr, closers: []io.Closer{f}}, nil
	case strings.HasSuffix(s.path, ".gz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &stackedReader{Reader: gr, closers: []io.Closer{gr, f}}, nil
	}
	return f, nil
}

type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (r *stackedReader) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// BytesSource serves an in-memory document.
type BytesSource struct {
	id   string
	data []byte
}

// NewBytesSource creates a source named id over data.
func NewBytesSource(id string, data []byte) *BytesSource {
	return &BytesSource{id: id, data: data}
}

func (s *BytesSource) ID() string { return s.id }

func (s *BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// IsDefinitionFile reports whether name looks like a definition document.
func IsDefinitionFile(name string) bool {
	for _, ext := range []string{".xml", ".xml.xz", ".xml.gz"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// DirSources lists the definition files directly inside dir, sorted by name.
func DirSources(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []Source
	for _, e := range entries {
		if e.IsDir() || !IsDefinitionFile(e.Name()) {
			continue
		}
		out = append(out, NewFileSource(filepath.Join(dir, e.Name())))
	}
	return out, nil
}

// SystemDirs returns the shared-mime-info package directories of the XDG
// data directories, user data home first.
func SystemDirs() []string {
	roots := append([]string{xdg.DataHome}, xdg.DataDirs...)
	dirs := make([]string, 0, len(roots))
	for _, root := range roots {
		dir := filepath.Join(root, "mime", "packages")
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// SystemSources lists definition files from SystemDirs. Missing directories
// are skipped.
func SystemSources() ([]Source, error) {
	var out []Source
	for _, dir := range SystemDirs() {
		srcs, err := DirSources(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return out, err
		}
		out = append(out, srcs...)
	}
	return out, nil
}

// SortSources orders sources by ID and drops duplicate IDs.
func SortSources(sources []Source) []Source {
	out := slices.Clone(sources)
	slices.SortStableFunc(out, func(a, b Source) int {
		return strings.Compare(a.ID(), b.ID())
	})
	return slices.CompactFunc(out, func(a, b Source) bool {
		return a.ID() == b.ID()
	})
}
