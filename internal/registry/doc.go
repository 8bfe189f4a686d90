// Package registry holds the package registry consulted during module
// resolution.
//
// The registry maps exact module-identifier prefixes (e.g. "lib/foo") to
// package descriptors: a base directory plus optional layout hints (entry
// point name, distribution subdirectory, source subdirectory). Descriptors
// are populated once, from HCL registry files or programmatically, and are
// read-only during resolution.
package registry
