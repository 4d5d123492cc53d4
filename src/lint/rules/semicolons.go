package rules

import "github.com/sofmeright/coffeefreight/src/lint"

type trailingSemicolons struct{}

func (r *trailingSemicolons) Descriptor() lint.Descriptor {
	return lint.Descriptor{
		Name:        "no_trailing_semicolons",
		Level:       lint.LevelError,
		Message:     "Line contains a trailing semicolon",
		Description: "Statements should not end in semicolons.",
	}
}

func (r *trailingSemicolons) Tokens() []string { return []string{";"} }

// LintToken flags a semicolon that is the last token on its line. Semicolons
// inside strings and comments never become tokens.
func (r *trailingSemicolons) LintToken(tok lint.Token, api lint.TokenAPI) *lint.Finding {
	next := api.Peek(1)
	if next != nil && next.Pos.FirstLine == tok.Pos.LastLine {
		return nil
	}
	return &lint.Finding{}
}
