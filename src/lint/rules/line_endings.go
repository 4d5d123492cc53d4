package rules

import (
	"fmt"

	"github.com/sofmeright/coffeefreight/src/lint"
)

const lineEndingsName = "line_endings"

var lineTerminators = map[string]string{
	"unix":    "\n",
	"windows": "\r\n",
}

type lineEndingsConfig struct {
	Value string `json:"value"`
}

// lineEndings is off unless a configuration raises its level.
type lineEndings struct {
	want string
}

func newLineEndings() *lineEndings { return &lineEndings{want: "unix"} }

func (r *lineEndings) Descriptor() lint.Descriptor {
	return lint.Descriptor{
		Name:        lineEndingsName,
		Level:       lint.LevelIgnore,
		Message:     "Line contains incorrect line endings",
		Description: `Every line must end the same way: "unix" (LF, default) or "windows" (CRLF).`,
	}
}

// Configure implements lint.ConfigurableRule.
func (r *lineEndings) Configure(opts map[string]any) error {
	cfg := lineEndingsConfig{Value: "unix"}
	if err := decodeOptions(lineEndingsName, opts, &cfg); err != nil {
		return err
	}
	if _, ok := lineTerminators[cfg.Value]; !ok {
		return fmt.Errorf("%s: unknown value %q, want unix or windows", lineEndingsName, cfg.Value)
	}
	r.want = cfg.Value
	return nil
}

func (r *lineEndings) LintLine(_ string, api lint.LineAPI) *lint.Finding {
	if api.EOL == "" || api.EOL == lineTerminators[r.want] {
		return nil
	}
	return &lint.Finding{Context: "Expected " + r.want}
}
