// Package report turns lint findings into the per-file report block printed
// at the end of a build and the test stub written in place of the source.
package report

import (
	"fmt"
	"path"
	"strings"

	"github.com/sofmeright/coffeefreight/src/lint"
)

// FormatVersion identifies the report and stub layout. Bump it whenever
// Format or TestStub output changes so persisted artifacts are invalidated.
const FormatVersion = "report/1"

var (
	banner    = strings.Repeat("=", 60)
	separator = strings.Repeat("-", 60)
)

// Format renders the findings of one file. It returns "" when there are none.
func Format(file string, findings []lint.Finding) string {
	if len(findings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(banner + "\n")
	noun := "errors"
	if len(findings) == 1 {
		noun = "error"
	}
	fmt.Fprintf(&b, "%s (%d %s):\n", file, len(findings), noun)

	for _, f := range findings {
		b.WriteString(separator + "\n")
		if f.Level != "" {
			fmt.Fprintf(&b, "level: %s\n", f.Level)
		}
		fmt.Fprintf(&b, "line: %d\n", f.LineNumber)
		fmt.Fprintf(&b, "rule: %s\n", f.Rule)
		fmt.Fprintf(&b, "message: %s\n", f.Message)
		if f.Line != "" {
			b.WriteString(f.Line + "\n")
		}
		if f.Context != "" {
			b.WriteString(f.Context + "\n")
		}
	}
	return b.String()
}

// Escape makes s safe inside a single-quoted JavaScript string literal.
func Escape(s string) string {
	return escaper.Replace(s)
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	"'", `\'`,
)

// Outcome is the result of processing one lintable file.
type Outcome struct {
	Path     string
	Findings int
	Report   string
	Cached   bool
}

// Passed reports whether the file linted clean.
func (o Outcome) Passed() bool { return o.Findings == 0 }

// Emitter produces the derived artifact for a linted file.
type Emitter struct {
	// DisableTestGenerator makes Stub return "".
	DisableTestGenerator bool
	// Escape overrides the string escaping used inside stubs.
	Escape func(string) string
	// EscapeID names a custom Escape for cache fingerprinting. Change it
	// whenever the function's behaviour changes.
	EscapeID string
}

// Identity fingerprints the formatting and escaping in effect.
func (e *Emitter) Identity() string {
	id := FormatVersion + "|escape:default"
	if e.Escape != nil {
		id = FormatVersion + "|escape:" + e.EscapeID
	}
	return fmt.Sprintf("%s|stubs:%t", id, !e.DisableTestGenerator)
}

// Stub returns the test file asserting that file passed the linter. report
// is the output of Format for the same file.
func (e *Emitter) Stub(file string, passed bool, report string) string {
	if e.DisableTestGenerator {
		return ""
	}
	escape := Escape
	if e.Escape != nil {
		escape = e.Escape
	}

	detail := ""
	if report != "" {
		detail = `\n` + escape(report)
	}
	name := Escape(file)

	var b strings.Builder
	fmt.Fprintf(&b, "module('CoffeeLint - %s');\n", Escape(path.Dir(file)))
	fmt.Fprintf(&b, "test('%s should pass coffeelint', function() {\n", name)
	fmt.Fprintf(&b, "  ok(%t, '%s should pass coffeelint.%s');\n", passed, name, detail)
	b.WriteString("});\n")
	return b.String()
}
