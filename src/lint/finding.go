package lint

import (
	"fmt"
	"strings"
)

// Level indicates how a rule's findings are reported.
type Level string

const (
	LevelError  Level = "error"
	LevelWarn   Level = "warn"
	LevelIgnore Level = "ignore"
)

// ParseLevel accepts the spellings used in coffeelint.json files.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "ignore", "off":
		return LevelIgnore, nil
	default:
		return "", fmt.Errorf("lint: unknown level %q", s)
	}
}

func (l Level) String() string { return string(l) }

// Finding represents a single lint result.
type Finding struct {
	Rule       string
	Level      Level
	LineNumber int // 1-based
	Column     int // 1-based; 0 when the finding covers the whole line
	Message    string
	Line       string // raw source line, when the rule reports it
	Context    string
}
