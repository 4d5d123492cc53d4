package rules

import (
	"fmt"
	"unicode/utf8"

	"github.com/sofmeright/coffeefreight/src/lint"
)

const (
	maxLineLengthName    = "max_line_length"
	defaultMaxLineLength = 80
)

type maxLineLengthConfig struct {
	Value         int  `json:"value"`
	LimitComments bool `json:"limitComments"`
}

type maxLineLength struct {
	cfg maxLineLengthConfig
}

func newMaxLineLength() *maxLineLength {
	return &maxLineLength{cfg: maxLineLengthConfig{Value: defaultMaxLineLength, LimitComments: true}}
}

func (r *maxLineLength) Descriptor() lint.Descriptor {
	return lint.Descriptor{
		Name:        maxLineLengthName,
		Level:       lint.LevelError,
		Message:     "Line exceeds maximum allowed length",
		Description: "Lines longer than the configured value (default 80) are flagged.",
	}
}

// Configure implements lint.ConfigurableRule.
func (r *maxLineLength) Configure(opts map[string]any) error {
	cfg := maxLineLengthConfig{Value: defaultMaxLineLength, LimitComments: true}
	if err := decodeOptions(maxLineLengthName, opts, &cfg); err != nil {
		return err
	}
	if cfg.Value < 0 {
		return fmt.Errorf("%s: value must be non-negative, got %d", maxLineLengthName, cfg.Value)
	}
	if cfg.Value == 0 {
		cfg.Value = defaultMaxLineLength
	}
	r.cfg = cfg
	return nil
}

func (r *maxLineLength) LintLine(line string, _ lint.LineAPI) *lint.Finding {
	n := utf8.RuneCountInString(line)
	if n <= r.cfg.Value {
		return nil
	}
	if !r.cfg.LimitComments && standaloneComment.MatchString(line) {
		return nil
	}
	return &lint.Finding{Context: fmt.Sprintf("Length is %d, max is %d", n, r.cfg.Value)}
}
