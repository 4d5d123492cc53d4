package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// RuleConfigFile is the file name searched for, case-insensitively.
const RuleConfigFile = "coffeelint.json"

// RuleConfig maps a rule name to its settings object from coffeelint.json.
// Top-level entries that are not objects are dropped.
type RuleConfig map[string]map[string]any

// ParseError reports a coffeelint.json that exists but cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config: parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ResolveRuleConfig locates and loads the coffeelint.json governing inputDir.
// Discovery starts at opts.ConfigPath when set, else at inputDir joined with
// opts.ConfigRoot, and walks up through ancestor directories.
// It returns "", nil, nil when no file is found and a *ParseError when the
// file is malformed.
func ResolveRuleConfig(opts Options, inputDir string) (string, RuleConfig, error) {
	start := opts.ConfigPath
	if start == "" {
		start = filepath.Join(inputDir, opts.ConfigRoot)
	}
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, err
		}
		start = wd
	}

	path := ""
	if info, err := os.Stat(start); err == nil && !info.IsDir() {
		path = start
	} else {
		found, err := FindUp(start, RuleConfigFile)
		if err != nil {
			return "", nil, err
		}
		path = found
	}
	if path == "" {
		return "", nil, nil
	}

	rc, err := LoadRuleConfig(path)
	return path, rc, err
}

// FindUp searches dir and its ancestors for a regular file whose name equals
// name, ignoring case. The first match wins; "" means none was found.
// Directories that do not exist or cannot be listed are skipped.
func FindUp(dir, name string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() || !strings.EqualFold(e.Name(), name) {
					continue
				}
				return filepath.Join(dir, e.Name()), nil
			}
		} else if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadRuleConfig reads a coffeelint.json, tolerating // and /* */ comments
// and trailing commas.
func LoadRuleConfig(path string) (RuleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseRuleConfig(path, data)
}

func parseRuleConfig(path string, data []byte) (RuleConfig, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	rc := make(RuleConfig, len(raw))
	for name, msg := range raw {
		var section map[string]any
		if err := json.Unmarshal(msg, &section); err != nil || section == nil {
			continue
		}
		rc[name] = section
	}
	return rc, nil
}
