// Package stacktrace trims raw goroutine stacks down to project frames.
package stacktrace

import "strings"

// InternalPaths returns the "internal/.../file.go:line" locations found in a
// debug.Stack dump, in call order.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		loc, _, _ := strings.Cut(line, " ")
		if _, after, ok := strings.Cut(loc, "/internal/"); ok {
			paths = append(paths, "internal/"+after)
		}
	}
	return paths
}
