package filter

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// excludeSet holds user exclude patterns. Patterns containing "/" match the
// whole slash-separated relative path; others match the base name.
type excludeSet []string

func (s excludeSet) match(rel string) bool {
	if len(s) == 0 {
		return false
	}
	rel = strings.TrimPrefix(rel, "./")
	base := path.Base(rel)
	for _, pattern := range s {
		name := base
		if strings.Contains(pattern, "/") || strings.Contains(pattern, "**") {
			name = rel
		}
		// Malformed patterns never match; Validate reports them up front.
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
