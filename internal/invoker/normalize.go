package invoker

import "regexp"

// importCallPattern matches the reserved dynamic-load surface form. The
// name "import" is reserved for a future block type in the module dialect,
// so it cannot be supplied as an ordinary function binding.
var importCallPattern = regexp.MustCompile(`\bimport\s*\(`)

// normalizeImports rewrites occurrences of the reserved import(...) form to
// the internal asynchronous-accessor alias before parsing.
func normalizeImports(src string) string {
	return importCallPattern.ReplaceAllString(src, asyncAccessor+"(")
}
