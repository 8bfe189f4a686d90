package registry

import (
	"fmt"
)

// DefaultMain is the entry-point name assumed when a package declares none.
const DefaultMain = "main"

// Package describes one registered package: where its artifacts live and
// how its directory layout maps onto module identifiers.
type Package struct {
	// Prefix is the exact identifier prefix this package is keyed by.
	// The empty string registers a root package that matches everything.
	Prefix string

	// BasePath is the directory all of the package's artifacts live under,
	// relative to the resolver's configured root.
	BasePath string

	// Main is the entry-point component used when an identifier names the
	// package itself. Defaults to DefaultMain.
	Main string

	// DistDir is the subdirectory of BasePath holding built artifacts.
	// Only consulted when resolving original-source locations.
	DistDir string

	// SourceDir is the subdirectory of BasePath holding original sources.
	// Only consulted when resolving original-source locations.
	SourceDir string
}

// Registry is a read-only (after population) mapping from identifier prefix
// to package descriptor.
type Registry struct {
	packages map[string]*Package
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{packages: make(map[string]*Package)}
}

// Add registers a package descriptor. Registering the same prefix twice is
// a configuration error and is rejected.
func (r *Registry) Add(pkg *Package) error {
	if pkg.BasePath == "" {
		return fmt.Errorf("package %q: base_path must not be empty", pkg.Prefix)
	}
	if _, exists := r.packages[pkg.Prefix]; exists {
		return fmt.Errorf("package prefix %q already registered", pkg.Prefix)
	}
	if pkg.Main == "" {
		pkg.Main = DefaultMain
	}
	r.packages[pkg.Prefix] = pkg
	return nil
}

// Lookup returns the package registered under the exact prefix, if any.
func (r *Registry) Lookup(prefix string) (*Package, bool) {
	pkg, ok := r.packages[prefix]
	return pkg, ok
}

// Len returns the number of registered packages.
func (r *Registry) Len() int {
	return len(r.packages)
}

// Prefixes returns all registered prefixes. Order is unspecified.
func (r *Registry) Prefixes() []string {
	out := make([]string, 0, len(r.packages))
	for p := range r.packages {
		out = append(out, p)
	}
	return out
}
