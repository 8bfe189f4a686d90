// Package resolver maps logical module identifiers to physical artifact
// locations using the package registry.
//
// Resolution walks the identifier from its longest prefix down to the empty
// prefix, stripping one trailing segment per step, and picks the first
// prefix registered as a package. The stripped segments accumulate into the
// component, which is joined under the package's base path. Resolution is a
// pure function of (registry, identifier, mode), so results are memoized.
package resolver
