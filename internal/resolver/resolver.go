package resolver

import (
	"fmt"
	"path"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/vk/dynmod/internal/registry"
)

// DefaultSourceExt is the extension appended to source-mode locations when
// none is configured.
const DefaultSourceExt = ".hcl"

// ResolutionError reports that no registered package prefix matched the
// identifier. It always names the originally requested identifier.
type ResolutionError struct {
	Identifier string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve module %q: no matching package in registry", e.Identifier)
}

// mode selects which physical form of a module is being resolved.
type mode int

const (
	modeArtifact mode = iota
	modeSource
)

// Resolver resolves module identifiers against a package registry.
type Resolver struct {
	reg       *registry.Registry
	root      string
	sourceExt string

	// results memoizes resolved locations. Resolution is deterministic for
	// a fixed registry, so entries never expire.
	results *gocache.Cache
}

// New creates a Resolver rooted at root. sourceExt is appended to
// source-mode results; the empty string selects DefaultSourceExt.
func New(reg *registry.Registry, root string, sourceExt string) *Resolver {
	if sourceExt == "" {
		sourceExt = DefaultSourceExt
	}
	return &Resolver{
		reg:       reg,
		root:      root,
		sourceExt: sourceExt,
		results:   gocache.New(gocache.NoExpiration, 0),
	}
}

// Resolve maps an identifier to the physical location of its built artifact.
func (r *Resolver) Resolve(id string) (string, error) {
	return r.resolve(id, modeArtifact)
}

// ResolveSource maps an identifier to the physical location of its original
// source, with the configured source extension appended.
func (r *Resolver) ResolveSource(id string) (string, error) {
	return r.resolve(id, modeSource)
}

func (r *Resolver) resolve(id string, m mode) (string, error) {
	key := fmt.Sprintf("%d\x00%s", m, id)
	if loc, ok := r.results.Get(key); ok {
		return loc.(string), nil
	}

	loc, err := r.locate(id, m)
	if err != nil {
		return "", err
	}

	r.results.Set(key, loc, gocache.NoExpiration)
	return loc, nil
}

// locate performs the longest-prefix match by progressive right-truncation:
// the full identifier is tried first, then each shorter prefix down to and
// including the empty one. Stripped segments accumulate into the component.
func (r *Resolver) locate(id string, m mode) (string, error) {
	prefix := id
	component := ""

	for {
		if pkg, ok := r.reg.Lookup(prefix); ok {
			return r.build(pkg, component, m), nil
		}
		if prefix == "" {
			return "", &ResolutionError{Identifier: id}
		}

		var segment string
		if i := strings.LastIndex(prefix, "/"); i >= 0 {
			segment, prefix = prefix[i+1:], prefix[:i]
		} else {
			segment, prefix = prefix, ""
		}
		if component == "" {
			component = segment
		} else {
			component = segment + "/" + component
		}
	}
}

// build assembles the physical location for a matched package. The registry
// descriptor is never mutated; layout hints are applied to a request-local
// component copy.
func (r *Resolver) build(pkg *registry.Package, component string, m mode) string {
	if component == "" {
		component = pkg.Main
	} else {
		component = path.Clean(component)
	}

	if m == modeSource {
		component = rebase(component, pkg.DistDir, pkg.SourceDir)
		return path.Join(r.root, pkg.BasePath, component) + r.sourceExt
	}
	return path.Join(r.root, pkg.BasePath, component)
}

// rebase strips the distribution subdirectory off the front of the
// component, if present, and prepends the source subdirectory.
func rebase(component, distDir, sourceDir string) string {
	if distDir != "" {
		if component == distDir {
			component = ""
		} else if strings.HasPrefix(component, distDir+"/") {
			component = component[len(distDir)+1:]
		}
	}
	if sourceDir != "" {
		component = path.Join(sourceDir, component)
	}
	return component
}
