package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForbiddenKeywordsDefaults(t *testing.T) {
	findings := lintOnly(t, forbiddenKeywordsName, nil, "a = yes\nb = off\nc = true\n")
	require.Len(t, findings, 2)
	assert.Equal(t, `The "yes" keyword is forbidden. Use "true" instead`, findings[0].Message)
	assert.Equal(t, 1, findings[0].LineNumber)
	assert.Equal(t, `The "off" keyword is forbidden. Use "false" instead`, findings[1].Message)
	assert.Equal(t, 2, findings[1].LineNumber)
}

func TestForbiddenKeywordsConfigured(t *testing.T) {
	opts := map[string]any{"forbidden": map[string]any{
		"or":   "||",
		"and":  "&&",
		"is":   "==",
		"isnt": "!=",
		"not":  "!",
		"==":   nil,
	}}

	tests := []struct {
		src  string
		want string
	}{
		{"a or b", `The "or" keyword is forbidden. Use "||" instead`},
		{"a and b", `The "and" keyword is forbidden. Use "&&" instead`},
		{"a is b", `The "is" keyword is forbidden. Use "==" instead`},
		{"a isnt b", `The "isnt" keyword is forbidden. Use "!=" instead`},
		{"not a", `The "not" keyword is forbidden. Use "!" instead`},
		{"a == b", `The "==" keyword is forbidden`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			findings := lintOnly(t, forbiddenKeywordsName, opts, tt.src)
			require.Len(t, findings, 1)
			assert.Equal(t, tt.want, findings[0].Message)
			assert.Equal(t, forbiddenKeywordsName, findings[0].Rule)
		})
	}
}

func TestForbiddenKeywordsIgnoresNonKeywords(t *testing.T) {
	opts := map[string]any{"forbidden": map[string]any{"or": "||", "and": "&&", "yes": "true"}}

	for _, src := range []string{
		"obj.or",
		"x = {or: 1}",
		"s = 'a or b'",
		"# yes or no",
		"a || b",
		"@or()",
		"a or= b",
		"c and= d",
	} {
		t.Run(src, func(t *testing.T) {
			assert.Empty(t, lintOnly(t, forbiddenKeywordsName, opts, src))
		})
	}
}

func TestForbiddenKeywordsConfigReplacesDefaults(t *testing.T) {
	opts := map[string]any{"forbidden": map[string]any{"unless": "if not"}}
	findings := lintOnly(t, forbiddenKeywordsName, opts, "a = yes unless b\n")
	require.Len(t, findings, 1)
	assert.Equal(t, `The "unless" keyword is forbidden. Use "if not" instead`, findings[0].Message)
}

func TestForbiddenKeywordsMatchesSpelling(t *testing.T) {
	opts := map[string]any{"forbidden": map[string]any{"--": "-= 1", "...": nil}}

	findings := lintOnly(t, forbiddenKeywordsName, opts, "i--\nx = a - b\nf(rest...)\n[1..3]\n")
	require.Len(t, findings, 2)
	assert.Equal(t, 1, findings[0].LineNumber)
	assert.Equal(t, 3, findings[1].LineNumber)
	assert.Equal(t, `The "..." keyword is forbidden`, findings[1].Message)
}
