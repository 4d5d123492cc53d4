package rules

import (
	"fmt"

	"github.com/sofmeright/coffeefreight/src/lint"
)

const forbiddenKeywordsName = "forbidden_keywords"

type forbiddenKeywordsConfig struct {
	// Forbidden maps a keyword spelling to its suggested replacement; a null
	// replacement forbids the keyword without a suggestion.
	Forbidden map[string]*string `json:"forbidden"`
}

type forbiddenKeywords struct {
	cfg forbiddenKeywordsConfig
}

func newForbiddenKeywords() *forbiddenKeywords {
	return &forbiddenKeywords{cfg: defaultForbiddenKeywords()}
}

func defaultForbiddenKeywords() forbiddenKeywordsConfig {
	t, f := "true", "false"
	return forbiddenKeywordsConfig{Forbidden: map[string]*string{
		"yes": &t,
		"no":  &f,
		"on":  &t,
		"off": &f,
	}}
}

func (r *forbiddenKeywords) Descriptor() lint.Descriptor {
	return lint.Descriptor{
		Name:    forbiddenKeywordsName,
		Level:   lint.LevelError,
		Message: "The keyword is forbidden",
		Description: "Forbids a configured subset of: if, unless, while, loop, until, true, yes, on, " +
			"false, no, off, is, ==, isnt, !=, !, not, &&, and, ||, or, ++, --, .., ...\n" +
			"By default yes, no, on and off are forbidden.",
	}
}

// Configure implements lint.ConfigurableRule. A configured "forbidden" map
// replaces the defaults.
func (r *forbiddenKeywords) Configure(opts map[string]any) error {
	cfg := forbiddenKeywordsConfig{}
	if err := decodeOptions(forbiddenKeywordsName, opts, &cfg); err != nil {
		return err
	}
	if cfg.Forbidden == nil {
		cfg = defaultForbiddenKeywords()
	}
	r.cfg = cfg
	return nil
}

func (r *forbiddenKeywords) Tokens() []string {
	return []string{
		lint.TokenIf, lint.TokenLoop, lint.TokenWhile, lint.TokenUntil, lint.TokenBool,
		lint.TokenUnary, lint.TokenUnaryMath, lint.TokenCompare, lint.TokenLogic,
		lint.TokenIncrement, lint.TokenDecrement, lint.TokenRange, lint.TokenSplat,
	}
}

// LintToken compares the spelling the author wrote, not the token's canonical
// value, so "-" never matches a "--" entry and "isnt" is distinct from "!=".
func (r *forbiddenKeywords) LintToken(tok lint.Token, api lint.TokenAPI) *lint.Finding {
	if api.LineNumber >= len(api.Lines) {
		return nil
	}
	line := api.Lines[api.LineNumber]
	first, last := tok.Pos.FirstColumn, tok.Pos.LastColumn+1
	if tok.Pos.LastLine != tok.Pos.FirstLine || last > len(line) {
		last = len(line)
	}
	if first >= last {
		return nil
	}
	keyword := line[first:last]

	replacement, ok := r.cfg.Forbidden[keyword]
	if !ok {
		return nil
	}
	if replacement != nil {
		return &lint.Finding{Message: fmt.Sprintf("The %q keyword is forbidden. Use %q instead", keyword, *replacement)}
	}
	return &lint.Finding{Message: fmt.Sprintf("The %q keyword is forbidden", keyword)}
}
