package rules

import (
	"regexp"
	"strings"

	"github.com/sofmeright/coffeefreight/src/lint"
)

var standaloneComment = regexp.MustCompile(`^\s*#`)

// Lines matching any of these carry a '#' that is allowed. Go regexps have no
// backreferences, so each quote style gets its own pattern.
var permittedMarkers = []*regexp.Regexp{
	regexp.MustCompile(`".*#\{.*"`), // interpolation
	regexp.MustCompile(`".*#.*"`),
	regexp.MustCompile(`'.*#.*'`),
}

type forbiddenInlineComments struct{}

func (r *forbiddenInlineComments) Descriptor() lint.Descriptor {
	return lint.Descriptor{
		Name:        "forbidden_inline_comments",
		Level:       lint.LevelError,
		Message:     "Disallows inline comments",
		Description: "Disallows a comment appended after code on the same line.",
	}
}

// LintLine flags a line carrying a comment marker unless the whole line is a
// comment, the line uses '#' inside quotes or an interpolation anywhere, or
// no marker is left outside a string. Strings are tracked per line only, so a
// line inside a multi-line string is judged on its own.
func (r *forbiddenInlineComments) LintLine(line string, _ lint.LineAPI) *lint.Finding {
	if !strings.Contains(line, "#") {
		return nil
	}
	if standaloneComment.MatchString(line) {
		return nil
	}
	for _, re := range permittedMarkers {
		if re.MatchString(line) {
			return nil
		}
	}
	at := bareMarker(line)
	if at < 0 {
		return nil
	}
	return &lint.Finding{Column: at + 1, Context: line}
}

// bareMarker returns the byte offset of the first '#' outside any quoted
// string, or -1. A string left open at end of line swallows the rest of it.
// Inside double quotes, "#{" opens an interpolation whose own quotes are
// tracked until the matching brace.
func bareMarker(line string) int {
	var stack []byte // open quotes; '{' marks an interpolation
	for i := 0; i < len(line); i++ {
		c := line[i]
		top := byte(0)
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}
		switch {
		case top == '"' || top == '\'':
			switch {
			case c == '\\':
				i++
			case c == top:
				stack = stack[:len(stack)-1]
			case top == '"' && c == '#' && i+1 < len(line) && line[i+1] == '{':
				stack = append(stack, '{')
				i++
			}
		case c == '"' || c == '\'':
			stack = append(stack, c)
		case top == '{' && c == '{':
			stack = append(stack, '{')
		case top == '{' && c == '}':
			stack = stack[:len(stack)-1]
		case c == '#':
			return i
		}
	}
	return -1
}
