package scheduler

import (
	"path/filepath"
	"strings"
)

// matchesAny reports whether relPath qualifies under the project's trigger
// patterns. A pattern matches against the full relative path and against
// the base name; a "**/" prefix matches the remainder at any depth. An
// empty pattern list matches everything.
func matchesAny(patterns []string, relPath string) bool {
	if len(patterns) == 0 {
		return true
	}

	relPath = filepath.ToSlash(relPath)
	base := filepath.Base(relPath)

	for _, pat := range patterns {
		if ok, err := filepath.Match(pat, relPath); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pat, base); err == nil && ok {
			return true
		}
		if tail, found := strings.CutPrefix(pat, "**/"); found {
			if ok, err := filepath.Match(tail, base); err == nil && ok {
				return true
			}
		}
	}
	return false
}
