// Package pipeline orchestrates resolve, load, transform, and invoke for
// module requests.
//
// Two variants share the module-loading contract. The text pipeline serves
// original sources: resolve-source, load text, optionally transform it,
// then invoke; results are memoized per identifier. The artifact pipeline
// serves pre-resolved artifacts: resolve, load bytes, invoke; results are
// memoized per resolved location with identifier aliases folded onto the
// shared entry, so identifiers naming the same artifact share one
// evaluation. Both variants are single-flight per key.
package pipeline
