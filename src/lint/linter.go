package lint

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sofmeright/coffeefreight/src/config"
)

// SyntaxErrorRule names the finding raised for source the lexer rejects.
const SyntaxErrorRule = "coffeescript_error"

// EngineError reports a failure of the lint engine itself, as opposed to a
// finding about the linted source. It aborts the build.
type EngineError struct {
	Rule string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("lint: %v", e.Err)
	}
	return fmt.Sprintf("lint: rule %s: %v", e.Rule, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

type lineEntry struct {
	desc Descriptor
	rule LineRule
}

type tokenEntry struct {
	desc Descriptor
	rule TokenRule
}

// Linter is a registry compiled against one rule configuration. It holds no
// per-call state, so Lint is safe for concurrent use.
type Linter struct {
	active     []Descriptor
	lineRules  []lineEntry
	tokenRules map[string][]tokenEntry
}

// New instantiates and configures every rule in reg that cfg does not set to
// "ignore". A nil cfg applies each rule's defaults.
func New(reg *Registry, cfg config.RuleConfig) (*Linter, error) {
	l := &Linter{tokenRules: map[string][]tokenEntry{}}
	for _, name := range reg.Names() {
		r, err := reg.Get(name)
		if err != nil {
			return nil, err
		}
		desc := r.Descriptor()
		opts := cfg[name]

		if raw, ok := opts["level"]; ok {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("lint: %s: level must be a string, got %T", name, raw)
			}
			lvl, err := ParseLevel(s)
			if err != nil {
				return nil, fmt.Errorf("lint: %s: %w", name, err)
			}
			desc.Level = lvl
		}
		if desc.Level == LevelIgnore {
			continue
		}

		if cr, ok := r.(ConfigurableRule); ok {
			if err := cr.Configure(opts); err != nil {
				return nil, fmt.Errorf("lint: configure %s: %w", name, err)
			}
		}

		l.active = append(l.active, desc)
		if lr, ok := r.(LineRule); ok {
			l.lineRules = append(l.lineRules, lineEntry{desc: desc, rule: lr})
		}
		if tr, ok := r.(TokenRule); ok {
			seen := map[string]bool{}
			for _, typ := range tr.Tokens() {
				if seen[typ] {
					continue
				}
				seen[typ] = true
				l.tokenRules[typ] = append(l.tokenRules[typ], tokenEntry{desc: desc, rule: tr})
			}
		}
	}
	return l, nil
}

// Rules returns the descriptors of the active rules, levels resolved.
func (l *Linter) Rules() []Descriptor {
	if l == nil {
		return nil
	}
	return append([]Descriptor(nil), l.active...)
}

// Lint runs every active rule over source and returns findings ordered by
// line, then column. A nil Linter has no rules and reports nothing. Source
// the lexer cannot tokenize yields a coffeescript_error finding; a rule that
// panics yields an *EngineError.
func (l *Linter) Lint(source string) (findings []Finding, err error) {
	if l == nil {
		return nil, nil
	}

	current := ""
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = &EngineError{Rule: current, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	lines, eols := splitLines(source)

	for i, line := range lines {
		for _, e := range l.lineRules {
			current = e.desc.Name
			if f := e.rule.LintLine(line, LineAPI{LineNumber: i, Lines: lines, EOL: eols[i]}); f != nil {
				findings = append(findings, complete(*f, e.desc, i))
			}
		}
	}

	current = ""
	tokens, lexErr := Tokenize(source)
	if lexErr != nil {
		var le *LexError
		if !errors.As(lexErr, &le) {
			return nil, &EngineError{Err: lexErr}
		}
		findings = append(findings, Finding{
			Rule:       SyntaxErrorRule,
			Level:      LevelError,
			LineNumber: le.Line + 1,
			Message:    "[stdin]:" + le.Error(),
		})
	} else {
		for i, tok := range tokens {
			for _, e := range l.tokenRules[tok.Type] {
				current = e.desc.Name
				api := TokenAPI{LineNumber: tok.Pos.FirstLine, Lines: lines, Tokens: tokens, Index: i}
				if f := e.rule.LintToken(tok, api); f != nil {
					c := complete(*f, e.desc, tok.Pos.FirstLine)
					if c.Column == 0 {
						c.Column = tok.Pos.FirstColumn + 1
					}
					findings = append(findings, c)
				}
			}
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].LineNumber != findings[j].LineNumber {
			return findings[i].LineNumber < findings[j].LineNumber
		}
		return findings[i].Column < findings[j].Column
	})
	return findings, nil
}

// complete fills the fields a rule may leave blank.
func complete(f Finding, desc Descriptor, line int) Finding {
	if f.Rule == "" {
		f.Rule = desc.Name
	}
	f.Level = desc.Level
	if f.Message == "" {
		f.Message = desc.Message
	}
	if f.LineNumber == 0 {
		f.LineNumber = line + 1
	}
	return f
}

// splitLines splits on "\n" and strips a preceding "\r", recording which
// terminator each line had.
func splitLines(source string) (lines, eols []string) {
	lines = strings.Split(source, "\n")
	eols = make([]string, len(lines))
	last := len(lines) - 1
	for i, line := range lines {
		if i < last {
			eols[i] = "\n"
		}
		if strings.HasSuffix(line, "\r") {
			lines[i] = line[:len(line)-1]
			if i < last {
				eols[i] = "\r\n"
			}
		}
	}
	return lines, eols
}
