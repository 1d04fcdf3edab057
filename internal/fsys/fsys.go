// Package fsys is the file-system collaborator of the generator: the only
// place generated artifacts touch the disk.
package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FS is what the generator needs from a file system. Paths are slash
// separated and relative to the implementation's root.
type FS interface {
	EnsureDirectory(dir string) error
	WriteFile(name string, content []byte) error
	// ReadDirectory lists the entry names of dir, sorted.
	ReadDirectory(dir string) ([]string, error)
	ReadFile(name string) ([]byte, error)
}

// clean normalizes a relative path and rejects ones leaving the root.
func clean(p string) (string, error) {
	p = filepath.ToSlash(p)
	if path.IsAbs(p) {
		return "", fmt.Errorf("path %q is absolute", p)
	}
	c := path.Clean(p)
	if c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("path %q escapes the output root", p)
	}
	return c, nil
}

// OS writes below Root on the local disk.
type OS struct {
	Root string
}

// NewOS returns an FS rooted at root.
func NewOS(root string) *OS { return &OS{Root: root} }

func (o *OS) abs(p string) (string, error) {
	c, err := clean(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(o.Root, filepath.FromSlash(c)), nil
}

func (o *OS) EnsureDirectory(dir string) error {
	full, err := o.abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// WriteFile writes atomically: a temp file in the target directory is
// synced and then renamed over name.
func (o *OS) WriteFile(name string, content []byte) error {
	full, err := o.abs(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure target directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-swagger2client-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	tmpPath := tmpFile.Name()
	success := false
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return fmt.Errorf("write temp file for %s: %w", name, err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		return fmt.Errorf("set file permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, full); err != nil {
		return fmt.Errorf("atomic rename %s to %s: %w", tmpPath, full, err)
	}
	success = true
	return nil
}

func (o *OS) ReadDirectory(dir string) ([]string, error) {
	full, err := o.abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (o *OS) ReadFile(name string) ([]byte, error) {
	full, err := o.abs(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Memory keeps files in memory. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewMemory returns an empty in-memory FS.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte), dirs: map[string]bool{".": true}}
}

func (m *Memory) EnsureDirectory(dir string) error {
	c, err := clean(dir)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(c)
	return nil
}

func (m *Memory) mkdirAll(dir string) {
	for d := dir; !m.dirs[d]; d = path.Dir(d) {
		m.dirs[d] = true
	}
}

func (m *Memory) WriteFile(name string, content []byte) error {
	c, err := clean(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(path.Dir(c))
	m.files[c] = append([]byte(nil), content...)
	return nil
}

func (m *Memory) ReadFile(name string) ([]byte, error) {
	c, err := clean(name)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.files[c]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) ReadDirectory(dir string) ([]string, error) {
	c, err := clean(dir)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.dirs[c] {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrNotExist}
	}
	seen := make(map[string]bool)
	collect := func(p string) {
		if p != c && path.Dir(p) == c {
			seen[path.Base(p)] = true
		}
	}
	for p := range m.files {
		collect(p)
	}
	for p := range m.dirs {
		collect(p)
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Files returns a copy of every stored file keyed by path.
func (m *Memory) Files() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.files))
	for p, b := range m.files {
		out[p] = string(b)
	}
	return out
}

// IsNotExist reports whether err means a missing file or directory.
func IsNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }
