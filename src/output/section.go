package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// frameWidth is the number of rule characters after the frame corner.
const frameWidth = 61

// Section is a framed block of build statistics:
//
//	── Build ─────────────────────────── 1.2s ──
//	│ linted             3
//	└───────────────────────────────────────────
type Section struct {
	w     io.Writer
	color bool
}

// NewSection writes the header for name and returns the open section. A
// non-zero elapsed is shown at the right end of the header.
func NewSection(w io.Writer, name string, elapsed time.Duration, color bool) *Section {
	s := &Section{w: w, color: color}
	fmt.Fprintf(w, "\n    %s\n", colorize(header(name, elapsed), colorDimCyan, color))
	return s
}

func header(name string, elapsed time.Duration) string {
	left := "── " + name + " "
	right := "──"
	if elapsed > 0 {
		right = " " + formatElapsed(elapsed) + " ──"
	}
	fill := frameWidth + 4 - len(left) - len(right)
	return left + strings.Repeat("─", max(fill, 1)) + right
}

// Row writes one formatted line inside the frame.
func (s *Section) Row(format string, args ...any) {
	fmt.Fprintf(s.w, "    │ %s\n", fmt.Sprintf(format, args...))
}

// StatsRow writes a labelled count, optionally followed by detail.
func (s *Section) StatsRow(label string, n int, detail string) {
	if detail == "" {
		s.Row("%-14s%6d", label, n)
		return
	}
	s.Row("%-14s%6d   %s", label, n, detail)
}

// Status writes a labelled status icon.
func (s *Section) Status(label, status string) {
	s.Row("%-14s%s", label, StatusIcon(status, s.color))
}

func (s *Section) Separator() { s.rule("├") }

func (s *Section) Close() { s.rule("└") }

func (s *Section) rule(corner string) {
	fmt.Fprintf(s.w, "    %s%s\n", corner, strings.Repeat("─", frameWidth))
}

var statusIcons = map[string]struct{ glyph, color string }{
	"success": {"✓", colorGreen},
	"failed":  {"✗", colorRed},
}

// StatusIcon renders "success" or "failed"; anything else is shown as
// skipped.
func StatusIcon(status string, color bool) string {
	icon, ok := statusIcons[status]
	if !ok {
		icon.glyph, icon.color = "⊘", colorYellow
	}
	return colorize(icon.glyph, icon.color, color)
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d / time.Minute)
	return fmt.Sprintf("%dm%.1fs", mins, (d - time.Duration(mins)*time.Minute).Seconds())
}
