// Package upload abstracts where client-submitted files end up.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"
)

type SavedFile struct {
	Path string
	Size int64
}

// Store persists uploaded files. Open takes the Path a previous Save returned.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (SavedFile, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Local writes uploads under Dir, creating it on first use. Stored names get a
// random prefix so two clients sending "document.pdf" never collide.
type Local struct {
	Dir string
}

func sanitize(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload.dat"
	}
	return name
}

func (l *Local) Save(_ context.Context, filename string, r io.Reader) (SavedFile, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return SavedFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.Must(uuid.NewV4()).String() + "_" + sanitize(filename)
	path := filepath.Join(l.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return SavedFile{}, fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return SavedFile{}, fmt.Errorf("write upload: %w", err)
	}
	return SavedFile{Path: path, Size: n}, nil
}

func (l *Local) Open(_ context.Context, path string) (io.ReadCloser, error) {
	clean := filepath.Clean(path)
	if filepath.Dir(clean) != filepath.Clean(l.Dir) {
		return nil, fmt.Errorf("open upload: %q is outside the upload dir", path)
	}
	return os.Open(clean)
}

// Memory keeps uploads in a map; test use only.
type Memory struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func (m *Memory) Save(_ context.Context, filename string, r io.Reader) (SavedFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return SavedFile{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Files == nil {
		m.Files = map[string][]byte{}
	}
	path := "mem://" + uuid.Must(uuid.NewV4()).String() + "_" + sanitize(filename)
	m.Files[path] = data
	return SavedFile{Path: path, Size: int64(len(data))}, nil
}

func (m *Memory) Open(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
