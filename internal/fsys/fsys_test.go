package fsys

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2client/internal/emitter"
)

func TestOSWriteAndRead(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	o := NewOS(root)

	require.NoError(t, o.WriteFile("types/widget.ts", []byte("export {};\n")))
	require.NoError(t, o.WriteFile("types/widget.ts", []byte("export interface Widget {}\n")))

	got, err := o.ReadFile("types/widget.ts")
	require.NoError(t, err)
	assert.Equal(t, "export interface Widget {}\n", string(got))

	st, err := os.Stat(filepath.Join(root, "types", "widget.ts"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), st.Mode().Perm())

	names, err := o.ReadDirectory("types")
	require.NoError(t, err)
	assert.Equal(t, []string{"widget.ts"}, names, "no temp files are left behind")

	_, err = o.ReadDirectory("services")
	assert.True(t, IsNotExist(err))
}

func TestPathsMayNotEscapeRoot(t *testing.T) {
	t.Parallel()
	o := NewOS(t.TempDir())
	assert.Error(t, o.WriteFile("../outside.ts", nil))
	assert.Error(t, o.EnsureDirectory("/etc"))
	assert.Error(t, NewMemory().WriteFile("a/../../b", nil))
}

func TestMemory(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	require.NoError(t, m.EnsureDirectory("hooks"))
	require.NoError(t, m.WriteFile("services/b.service.ts", []byte("b")))
	require.NoError(t, m.WriteFile("services/a.service.ts", []byte("a")))
	require.NoError(t, m.WriteFile("services/nested/x.ts", []byte("x")))

	names, err := m.ReadDirectory("services")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.service.ts", "b.service.ts", "nested"}, names)

	names, err = m.ReadDirectory("hooks")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = m.ReadFile("missing.ts")
	assert.True(t, IsNotExist(err))

	root, err := m.ReadDirectory(".")
	require.NoError(t, err)
	assert.Equal(t, []string{"hooks", "services"}, root)
}

// failing rejects writes below one directory.
type failing struct {
	*Memory
	dir string
}

func (f failing) WriteFile(name string, content []byte) error {
	if strings.HasPrefix(name, f.dir+"/") {
		return errors.New("disk full")
	}
	return f.Memory.WriteFile(name, content)
}

func TestWriteArtifactsIsolatesKinds(t *testing.T) {
	t.Parallel()
	set := emitter.NewArtifactSet()
	set.Add(emitter.Artifact{Key: "types:A", Kind: emitter.KindTypes, Path: "types/a.ts", Content: "a"})
	set.Add(emitter.Artifact{Key: "services:x", Kind: emitter.KindServices, Path: "services/x.service.ts", Content: "x"})
	set.Add(emitter.Artifact{Key: "services:y", Kind: emitter.KindServices, Path: "services/y.service.ts", Content: "y"})
	set.Add(emitter.Artifact{Key: "mocks:store", Kind: emitter.KindMocks, Path: "mocks/store.ts", Content: "s"})

	mem := NewMemory()
	n, err := WriteArtifacts(context.Background(), failing{Memory: mem, dir: "services"}, set, nil)
	require.Error(t, err)
	assert.Equal(t, 2, n)

	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, emitter.KindServices, we.Kind)
	assert.Equal(t, "services/x.service.ts", we.Path)
	assert.Contains(t, err.Error(), "disk full")

	files := mem.Files()
	assert.Equal(t, "a", files["types/a.ts"])
	assert.Equal(t, "s", files["mocks/store.ts"], "later kinds are still written")
	assert.NotContains(t, files, "services/y.service.ts")
}

func TestWriteArtifactsCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WriteArtifacts(ctx, NewMemory(), emitter.NewArtifactSet(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
