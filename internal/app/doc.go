// Package app wires the module-loading runtime together: configuration,
// logging, the package registry, the resolver, the source cache, the text
// pipeline, and the strategy dispatcher that fronts it all.
package app
