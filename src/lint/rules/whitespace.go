package rules

import (
	"strings"

	"github.com/sofmeright/coffeefreight/src/lint"
)

const trailingWhitespaceName = "no_trailing_whitespace"

type trailingWhitespaceConfig struct {
	AllowedInComments   bool `json:"allowed_in_comments"`
	AllowedInEmptyLines bool `json:"allowed_in_empty_lines"`
}

type trailingWhitespace struct {
	cfg trailingWhitespaceConfig
}

func newTrailingWhitespace() *trailingWhitespace {
	return &trailingWhitespace{cfg: trailingWhitespaceConfig{AllowedInEmptyLines: true}}
}

func (r *trailingWhitespace) Descriptor() lint.Descriptor {
	return lint.Descriptor{
		Name:        trailingWhitespaceName,
		Level:       lint.LevelError,
		Message:     "Line ends with trailing whitespace",
		Description: "Lines must not end in spaces or tabs.",
	}
}

// Configure implements lint.ConfigurableRule.
func (r *trailingWhitespace) Configure(opts map[string]any) error {
	cfg := trailingWhitespaceConfig{AllowedInEmptyLines: true}
	if err := decodeOptions(trailingWhitespaceName, opts, &cfg); err != nil {
		return err
	}
	r.cfg = cfg
	return nil
}

func (r *trailingWhitespace) LintLine(line string, _ lint.LineAPI) *lint.Finding {
	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) == len(line) {
		return nil
	}
	if trimmed == "" && r.cfg.AllowedInEmptyLines {
		return nil
	}
	if r.cfg.AllowedInComments && standaloneComment.MatchString(trimmed) {
		return nil
	}
	return &lint.Finding{}
}
