package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Colors for terminal output.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorYellow  = "\033[33m"
	colorGreen   = "\033[32m"
	colorGray    = "\033[90m"
	colorDimCyan = "\033[2;36m"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(os.Stdout) || IsCI()
}

// IsCI reports whether the process runs under a CI system.
func IsCI() bool {
	return os.Getenv("CI") == "true"
}

func colorize(text, color string, enabled bool) string {
	if !enabled {
		return text
	}
	return color + text + colorReset
}

// Red colors text red when enabled.
func Red(text string, enabled bool) string { return colorize(text, colorRed, enabled) }

// SummaryLine returns the closing line of a build report.
func SummaryLine(count int, color bool) string {
	label := " CoffeeLint Error"
	if count != 1 {
		label += "s"
	}
	return colorize(fmt.Sprintf("===== %d%s", count, label), colorYellow, color)
}

// PrintReport writes the accumulated per-file reports followed by the
// summary line. Nothing is written when there are no reports.
func PrintReport(w io.Writer, reports []string, count int, color bool) {
	if len(reports) == 0 {
		return
	}
	colored := make([]string, len(reports))
	for i, r := range reports {
		colored[i] = colorize(r, colorRed, color) + "\n"
	}
	fmt.Fprintf(w, "\n%s\n", strings.Join(colored, "\n"))
	fmt.Fprintf(w, "%s\n\n", SummaryLine(count, color))
}

// Dimmed returns dimmed text if color is enabled.
func Dimmed(text string, color bool) string {
	return colorize(text, colorGray, color)
}
