package app_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/vk/dynmod/internal/app"
	"github.com/vk/dynmod/internal/strategy"
)

// fixtureFs builds an in-memory workspace with a registry and two modules.
func fixtureFs(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "registry/packages.hcl", []byte(`
package "lib" {
  base_path  = "libs"
  source_dir = "src"
}
`), 0o600))
	require.NoError(t, afero.WriteFile(fsys, "libs/src/base.hcl", []byte(`
greeting = "hello"
`), 0o600))
	require.NoError(t, afero.WriteFile(fsys, "libs/src/main.hcl", []byte(`
# module entry point
message = "${require("lib/base").greeting}, world"
`), 0o600))
	return fsys
}

func testConfig(modules ...string) *app.Config {
	return &app.Config{
		RegistryPaths: []string{"registry"},
		LogLevel:      "error",
		LogFormat:     "text",
		Modules:       modules,
	}
}

func TestApp_LoadsModuleAndPrintsExports(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}
	a := app.NewAppWithFs(out, testConfig("lib/main"), fixtureFs(t))

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), `"hello, world"`)
	require.Equal(t, strategy.NativeAsync, a.Dispatcher().Strategy(),
		"the host async capability wins probing")
}

func TestApp_ResolveOnly(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg := testConfig("lib/main")
	cfg.ResolveOnly = true
	a := app.NewAppWithFs(out, cfg, fixtureFs(t))

	require.NoError(t, a.Run(context.Background()))
	require.Contains(t, out.String(), "artifact=libs/main")
	require.Contains(t, out.String(), "source=libs/src/main.hcl")
}

func TestApp_StripCommentsTransform(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg := testConfig("lib/main")
	cfg.StripComments = true
	a := app.NewAppWithFs(out, cfg, fixtureFs(t))

	require.NoError(t, a.Run(context.Background()))
	require.Contains(t, out.String(), `"hello, world"`)
}

func TestApp_UnresolvableModuleFails(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	a := app.NewAppWithFs(out, testConfig("ghost/module"), fixtureFs(t))

	err := a.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "ghost/module")
}

func TestNewApp_PanicsOnBadRegistry(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "registry/broken.hcl", []byte(`package "x" {`), 0o600))

	require.Panics(t, func() {
		app.NewAppWithFs(&bytes.Buffer{}, testConfig(), fsys)
	})
}
