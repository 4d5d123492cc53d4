package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcludeSet(t *testing.T) {
	tests := []struct {
		patterns []string
		rel      string
		want     bool
	}{
		{nil, "a.coffee", false},
		{[]string{"*.min.coffee"}, "lib/x.min.coffee", true},
		{[]string{"vendor/**"}, "vendor/a/b.coffee", true},
		{[]string{"vendor/**"}, "src/vendor.coffee", false},
		{[]string{"**/generated/*.coffee"}, "a/b/generated/x.coffee", true},
		{[]string{"**/generated/*.coffee"}, "generated/x.coffee", true},
		{[]string{"src/*.coffee"}, "src/a/b.coffee", false},
		{[]string{"src/*.coffee"}, "src/b.coffee", true},
		{[]string{"{vendor,lib}/**/*.coffee"}, "lib/x/y.coffee", true},
		{[]string{"vendor/[a"}, "vendor/[a", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, excludeSet(tt.patterns).match(tt.rel), "%v", tt.patterns)
		})
	}
}
