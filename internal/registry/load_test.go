package registry_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/vk/dynmod/internal/ctxlog"
	"github.com/vk/dynmod/internal/registry"
)

// testContext returns a context carrying a quiet logger.
func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestLoadPaths_DirectoryOfFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "registry/libs.hcl", []byte(`
package "lib/foo" {
  base_path  = "libs"
  main       = "index"
  dist_dir   = "dist"
  source_dir = "src"
}

package "lib" {
  base_path = "lib-common"
}
`), 0o600))
	require.NoError(t, afero.WriteFile(fsys, "registry/nested/root.hcl", []byte(`
package "" {
  base_path = "."
}
`), 0o600))

	reg := registry.New()

	// --- Act ---
	err := reg.LoadPaths(testContext(t), fsys, "registry")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())

	pkg, ok := reg.Lookup("lib/foo")
	require.True(t, ok)
	require.Equal(t, "libs", pkg.BasePath)
	require.Equal(t, "index", pkg.Main)
	require.Equal(t, "dist", pkg.DistDir)
	require.Equal(t, "src", pkg.SourceDir)
}

func TestLoadPaths_SingleFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "pkgs.hcl", []byte(`
package "app" {
  base_path = "app"
}
`), 0o600))

	reg := registry.New()
	require.NoError(t, reg.LoadPaths(testContext(t), fsys, "pkgs.hcl"))
	require.Equal(t, 1, reg.Len())
}

func TestLoadPaths_ParseErrorNamesFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "bad.hcl", []byte(`package "x" {`), 0o600))

	reg := registry.New()
	err := reg.LoadPaths(testContext(t), fsys, "bad.hcl")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.hcl")
}

func TestLoadPaths_DuplicateAcrossFiles(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	decl := []byte("package \"dup\" {\n  base_path = \"d\"\n}\n")
	require.NoError(t, afero.WriteFile(fsys, "reg/a.hcl", decl, 0o600))
	require.NoError(t, afero.WriteFile(fsys, "reg/b.hcl", decl, 0o600))

	reg := registry.New()
	err := reg.LoadPaths(testContext(t), fsys, "reg")
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")
}

func TestLoadPaths_MissingPath(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	err := reg.LoadPaths(testContext(t), afero.NewMemMapFs(), "nope")
	require.Error(t, err)
}
