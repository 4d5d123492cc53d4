// Package rules contains the built-in lint rules.
package rules

import (
	"encoding/json"
	"fmt"

	"github.com/sofmeright/coffeefreight/src/lint"
)

// Constructors lists every built-in rule.
func Constructors() []func() lint.Rule {
	return []func() lint.Rule{
		func() lint.Rule { return newForbiddenKeywords() },
		func() lint.Rule { return &forbiddenInlineComments{} },
		func() lint.Rule { return &trailingSemicolons{} },
		func() lint.Rule { return &tabs{} },
		func() lint.Rule { return newTrailingWhitespace() },
		func() lint.Rule { return newMaxLineLength() },
		func() lint.Rule { return newLineEndings() },
	}
}

// Default returns a registry holding every built-in rule.
func Default() *lint.Registry {
	reg, err := lint.NewRegistry(Constructors()...)
	if err != nil {
		panic(err) // built-in names are unique
	}
	return reg
}

// decodeOptions copies a rule's coffeelint.json section onto cfg.
func decodeOptions(name string, opts map[string]any, cfg any) error {
	if len(opts) == 0 {
		return nil
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("%s: marshal options: %w", name, err)
	}
	if err := json.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("%s: unmarshal options: %w", name, err)
	}
	return nil
}
