package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/dynmod/internal/registry"
	"github.com/vk/dynmod/internal/resolver"
)

func newRegistry(t *testing.T, pkgs ...*registry.Package) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, pkg := range pkgs {
		require.NoError(t, reg.Add(pkg))
	}
	return reg
}

func TestResolve_LongestPrefixWins(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	reg := newRegistry(t,
		&registry.Package{Prefix: "a", BasePath: "pkg-a"},
		&registry.Package{Prefix: "a/b", BasePath: "pkg-ab"},
	)
	r := resolver.New(reg, "", "")

	// --- Act ---
	loc, err := r.Resolve("a/b/c")

	// --- Assert ---
	// "a/b" is more specific than "a", so the component is "c", not "b/c".
	require.NoError(t, err)
	require.Equal(t, "pkg-ab/c", loc)
}

func TestResolve_ConcreteScenario(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, &registry.Package{
		Prefix:    "lib/foo",
		BasePath:  "libs",
		Main:      "index",
		DistDir:   "dist",
		SourceDir: "src",
	})
	r := resolver.New(reg, "", "")

	loc, err := r.Resolve("lib/foo/bar")
	require.NoError(t, err)
	require.Equal(t, "libs/bar", loc)

	src, err := r.ResolveSource("lib/foo/bar")
	require.NoError(t, err)
	require.Equal(t, "libs/src/bar.hcl", src)
}

func TestResolve_EntryPointForExactPackageMatch(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, &registry.Package{Prefix: "lib/foo", BasePath: "libs", Main: "index"})
	r := resolver.New(reg, "root", "")

	loc, err := r.Resolve("lib/foo")
	require.NoError(t, err)
	require.Equal(t, "root/libs/index", loc)
}

func TestResolve_DefaultEntryPoint(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, &registry.Package{Prefix: "app", BasePath: "app"})
	r := resolver.New(reg, "", "")

	loc, err := r.Resolve("app")
	require.NoError(t, err)
	require.Equal(t, "app/main", loc)
}

func TestResolveSource_DistDirRebasedOntoSourceDir(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, &registry.Package{
		Prefix:    "ui",
		BasePath:  "ui",
		DistDir:   "dist",
		SourceDir: "src",
	})
	r := resolver.New(reg, "", ".mod")

	// The identifier addresses the built artifact under dist/; the source
	// form strips dist/ and rebases under src/.
	src, err := r.ResolveSource("ui/dist/widget")
	require.NoError(t, err)
	require.Equal(t, "ui/src/widget.mod", src)
}

func TestResolve_RootPackageMatchesEmptyPrefix(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, &registry.Package{Prefix: "", BasePath: "vendor"})
	r := resolver.New(reg, "", "")

	loc, err := r.Resolve("some/deep/module")
	require.NoError(t, err)
	require.Equal(t, "vendor/some/deep/module", loc)
}

func TestResolve_UnresolvableNamesOriginalIdentifier(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, &registry.Package{Prefix: "known", BasePath: "k"})
	r := resolver.New(reg, "", "")

	_, err := r.Resolve("un/known/module")
	require.Error(t, err)

	var resErr *resolver.ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, "un/known/module", resErr.Identifier)
}

func TestResolve_RepeatedCallsAreIdentical(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, &registry.Package{Prefix: "lib", BasePath: "libs"})
	r := resolver.New(reg, "root", "")

	first, err := r.Resolve("lib/x/y")
	require.NoError(t, err)
	second, err := r.Resolve("lib/x/y")
	require.NoError(t, err)
	require.Equal(t, first, second)

	srcFirst, err := r.ResolveSource("lib/x/y")
	require.NoError(t, err)
	srcSecond, err := r.ResolveSource("lib/x/y")
	require.NoError(t, err)
	require.Equal(t, srcFirst, srcSecond)

	// Artifact and source modes memoize independently.
	require.NotEqual(t, first, srcFirst)
}
