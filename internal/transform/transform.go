// Package transform holds built-in source transformers.
//
// A transformer rewrites module source text before invocation. The built-in
// set is intentionally small; hosts supply their own for anything serious.
package transform

import (
	"context"
	"strings"
)

// StripComments removes full-line comments from module source. Lines whose
// first non-blank characters start a comment are dropped; trailing comments
// are left alone so string literals stay intact.
func StripComments(_ context.Context, src string, _ string) (string, error) {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), nil
}
