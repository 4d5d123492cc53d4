package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// CacheBackend selects where persisted artifacts live.
type CacheBackend string

const (
	CacheBackendDir    CacheBackend = "dir"
	CacheBackendBadger CacheBackend = "badger"
)

// defaultConfigFiles are tried in order when no options file is named.
var defaultConfigFiles = []string{".coffeefreight.yml", ".coffeefreight.yaml", ".coffeefreight.toml"}

// Options are the build options of one filter. Fields marked json:"-" tune
// how a build runs without changing what it produces, so they stay out of the
// cache fingerprint.
type Options struct {
	// Persist keeps artifacts in durable storage across builds.
	Persist bool `yaml:"persist" toml:"persist" json:"persist"`
	// DisableTestGenerator writes empty artifacts instead of test stubs.
	// Files are still linted and reported.
	DisableTestGenerator bool `yaml:"disable_test_generator" toml:"disable_test_generator" json:"disableTestGenerator"`
	// Log appends per-file reports to the build error log.
	Log bool `yaml:"log" toml:"log" json:"log"`
	// ConfigPath starts coffeelint.json discovery here instead of the input
	// tree. It may also name the file itself.
	ConfigPath string `yaml:"coffeelint_json_path" toml:"coffeelint_json_path" json:"coffeelintJSONPath,omitempty"`
	// ConfigRoot is joined to the input directory to start discovery.
	ConfigRoot string `yaml:"coffeelint_json_root" toml:"coffeelint_json_root" json:"coffeelintJSONRoot,omitempty"`
	// Annotation labels this filter in diagnostics.
	Annotation string `yaml:"annotation" toml:"annotation" json:"annotation,omitempty"`

	Extensions      []string `yaml:"extensions" toml:"extensions" json:"extensions"`
	TargetExtension string   `yaml:"target_extension" toml:"target_extension" json:"targetExtension"`
	Exclude         []string `yaml:"exclude" toml:"exclude" json:"exclude,omitempty"`

	CacheDir     string       `yaml:"cache_dir" toml:"cache_dir" json:"-"`
	CacheBackend CacheBackend `yaml:"cache_backend" toml:"cache_backend" json:"-"`
	// Workers bounds concurrent file processing; 0 means 2×NumCPU.
	Workers int `yaml:"workers" toml:"workers" json:"-"`
}

// DefaultOptions returns production defaults.
func DefaultOptions() Options {
	return Options{
		Persist:         true,
		Log:             true,
		Extensions:      []string{"coffee"},
		TargetExtension: "coffeelint.js",
		Exclude:         []string{},
		CacheDir:        ".coffeefreight/cache",
		CacheBackend:    CacheBackendDir,
	}
}

// Validate rejects option combinations the filter cannot run with.
func (o Options) Validate() error {
	if len(o.Extensions) == 0 {
		return errors.New("config: at least one extension is required")
	}
	for _, ext := range o.Extensions {
		if strings.TrimPrefix(ext, ".") == "" {
			return errors.New("config: empty extension")
		}
	}
	if strings.TrimPrefix(o.TargetExtension, ".") == "" {
		return errors.New("config: target_extension is required")
	}
	switch o.CacheBackend {
	case CacheBackendDir, CacheBackendBadger:
	default:
		return fmt.Errorf("config: unknown cache_backend %q", o.CacheBackend)
	}
	for _, pattern := range o.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("config: malformed exclude pattern %q", pattern)
		}
	}
	if o.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", o.Workers)
	}
	return nil
}

// Load reads options from a YAML or TOML file, chosen by extension.
// If path is empty, it tries the default files.
// Returns defaults if no file exists.
func Load(path string) (*Options, error) {
	if path == "" {
		for _, name := range defaultConfigFiles {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
		if path == "" {
			opts := DefaultOptions()
			return &opts, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			opts := DefaultOptions()
			return &opts, nil
		}
		return nil, err
	}

	opts := DefaultOptions()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &opts)
	default:
		err = yaml.Unmarshal(data, &opts)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}
