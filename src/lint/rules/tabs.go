package rules

import (
	"strings"

	"github.com/sofmeright/coffeefreight/src/lint"
)

type tabs struct{}

func (r *tabs) Descriptor() lint.Descriptor {
	return lint.Descriptor{
		Name:        "no_tabs",
		Level:       lint.LevelError,
		Message:     "Line contains tab indentation",
		Description: "Indentation must use spaces; tabs inside content are allowed.",
	}
}

// LintLine only flags tabs in the indentation, not tabs inside content.
func (r *tabs) LintLine(line string, _ lint.LineAPI) *lint.Finding {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	if !strings.Contains(indent, "\t") {
		return nil
	}
	return &lint.Finding{}
}
