package filter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/coffeefreight/src/config"
	"github.com/sofmeright/coffeefreight/src/lint"
	"github.com/sofmeright/coffeefreight/src/lint/rules"
)

// countingRule flags lines containing "bad" and counts how many files it
// has linted.
type countingRule struct {
	files *atomic.Int64
}

func (r *countingRule) Descriptor() lint.Descriptor {
	return lint.Descriptor{Name: "no_bad", Level: lint.LevelError, Message: "bad line"}
}

func (r *countingRule) LintLine(line string, api lint.LineAPI) *lint.Finding {
	if api.LineNumber == 0 {
		r.files.Add(1)
	}
	if strings.Contains(line, "boom") {
		panic("rule exploded")
	}
	if strings.Contains(line, "bad") {
		return &lint.Finding{}
	}
	return nil
}

func countingRegistry(t *testing.T) (*lint.Registry, *atomic.Int64) {
	t.Helper()
	var n atomic.Int64
	reg, err := lint.NewRegistry(func() lint.Rule { return &countingRule{files: &n} })
	require.NoError(t, err)
	return reg, &n
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

type fixture struct {
	in, out string
	report  *bytes.Buffer
	filter  *Filter
}

func newFixture(t *testing.T, opts config.Options, reg *lint.Registry, store Store, files map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	fx := &fixture{
		in:     filepath.Join(root, "in"),
		out:    filepath.Join(root, "out"),
		report: &bytes.Buffer{},
	}
	writeTree(t, fx.in, files)

	f, err := New(opts, reg, store, zerolog.Nop())
	require.NoError(t, err)
	f.RuleConfig = config.RuleConfig{}
	f.Report = fx.report
	fx.filter = f
	return fx
}

func (fx *fixture) build(t *testing.T) *Result {
	t.Helper()
	fx.report.Reset()
	res, err := fx.filter.Build(context.Background(), fx.in, fx.out)
	require.NoError(t, err)
	return res
}

func memoryOptions() config.Options {
	opts := config.DefaultOptions()
	opts.Persist = false
	return opts
}

func TestBuildLintsAndCopies(t *testing.T) {
	fx := newFixture(t, memoryOptions(), rules.Default(), nil, map[string]string{
		"a.coffee":       "x = 1\n",
		"lib/b.coffee":   "y = 2;\n",
		"README.md":      "# readme\n",
		"assets/app.css": "body {}\n",
	})

	res := fx.build(t)
	assert.Equal(t, 2, res.Linted)
	assert.Equal(t, 2, res.Copied)
	assert.Equal(t, 0, res.Cached)
	assert.Equal(t, 1, res.Findings())
	assert.NotEmpty(t, res.BuildID)

	assert.NoFileExists(t, filepath.Join(fx.out, "a.coffee"))
	assert.Contains(t, readFile(t, filepath.Join(fx.out, "a.coffeelint.js")), "ok(true, 'a.coffee should pass coffeelint.');")

	stub := readFile(t, filepath.Join(fx.out, "lib", "b.coffeelint.js"))
	assert.Contains(t, stub, "module('CoffeeLint - lib');")
	assert.Contains(t, stub, "ok(false, 'lib/b.coffee should pass coffeelint.\\n")

	assert.Equal(t, "# readme\n", readFile(t, filepath.Join(fx.out, "README.md")))
	assert.Equal(t, "body {}\n", readFile(t, filepath.Join(fx.out, "assets", "app.css")))

	out := fx.report.String()
	assert.Contains(t, out, "lib/b.coffee (1 error):")
	assert.Contains(t, out, "rule: no_trailing_semicolons")
	assert.Contains(t, out, "===== 1 CoffeeLint Error\n")

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, "a.coffee", res.Outcomes[0].Path)
	assert.True(t, res.Outcomes[0].Passed())
	assert.False(t, res.Outcomes[1].Passed())
}

func TestBuildCleanTreePrintsNothing(t *testing.T) {
	fx := newFixture(t, memoryOptions(), rules.Default(), nil, map[string]string{"a.coffee": "x = 1\n"})
	res := fx.build(t)
	assert.Equal(t, 0, res.Findings())
	assert.Empty(t, fx.report.String())
}

func TestRebuildRelintsOnlyChangedFiles(t *testing.T) {
	reg, linted := countingRegistry(t)
	fx := newFixture(t, memoryOptions(), reg, nil, map[string]string{
		"a.coffee":     "a = 1\n",
		"b.coffee":     "bad = 2\n",
		"sub/c.coffee": "c = 3\n",
	})

	res := fx.build(t)
	assert.EqualValues(t, 3, linted.Load())
	assert.Equal(t, 3, res.Linted)

	res = fx.build(t)
	assert.EqualValues(t, 3, linted.Load(), "unchanged files are not re-linted")
	assert.Equal(t, 3, res.Cached)
	assert.Equal(t, 1, res.Findings(), "cached findings are replayed")
	assert.Contains(t, fx.report.String(), "b.coffee (1 error):")
	assert.Contains(t, readFile(t, filepath.Join(fx.out, "b.coffeelint.js")), "ok(false,")

	writeTree(t, fx.in, map[string]string{"a.coffee": "a = 'changed'\n"})
	res = fx.build(t)
	assert.EqualValues(t, 4, linted.Load())
	assert.Equal(t, 1, res.Linted)
	assert.Equal(t, 2, res.Cached)

	assert.EqualValues(t, 4, fx.filter.CacheMisses.Load())
	assert.EqualValues(t, 5, fx.filter.CacheHits.Load())
}

func TestRuleConfigChangeInvalidatesCache(t *testing.T) {
	reg, linted := countingRegistry(t)
	fx := newFixture(t, memoryOptions(), reg, nil, map[string]string{"a.coffee": "bad\n"})

	fx.build(t)
	fx.filter.RuleConfig = config.RuleConfig{"no_bad": {"level": "warn"}}
	res := fx.build(t)

	assert.EqualValues(t, 2, linted.Load())
	assert.Contains(t, fx.report.String(), "level: warn")
	assert.Equal(t, 1, res.Findings())
}

func TestPersistentStoreSurvivesFilters(t *testing.T) {
	opts := config.DefaultOptions()
	opts.CacheDir = t.TempDir()

	reg, linted := countingRegistry(t)
	files := map[string]string{"a.coffee": "a\n", "b.coffee": "b\n"}

	store, err := OpenStore(opts, "", zerolog.Nop())
	require.NoError(t, err)
	fx := newFixture(t, opts, reg, store, files)
	fx.build(t)
	require.NoError(t, store.Close())

	store, err = OpenStore(opts, "", zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()
	fx2 := newFixture(t, opts, reg, store, files)
	res := fx2.build(t)

	assert.EqualValues(t, 2, linted.Load())
	assert.Equal(t, 2, res.Cached)
}

func TestCacheDirInsideInputIsNotCopied(t *testing.T) {
	reg, _ := countingRegistry(t)
	opts := config.DefaultOptions()
	fx := newFixture(t, opts, reg, nil, map[string]string{"a.coffee": "a\n"})

	opts.CacheDir = filepath.Join(fx.in, ".cache")
	store, err := OpenStore(opts, "", zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()
	fx.filter.Options = opts
	fx.filter.Store = store

	fx.build(t)
	fx.build(t)
	assert.DirExists(t, filepath.Join(fx.in, ".cache"))
	assert.NoDirExists(t, filepath.Join(fx.out, ".cache"))
}

func TestDisableTestGenerator(t *testing.T) {
	opts := memoryOptions()
	opts.DisableTestGenerator = true
	fx := newFixture(t, opts, rules.Default(), nil, map[string]string{"a.coffee": "x = 1;\n"})

	res := fx.build(t)
	assert.Equal(t, "", readFile(t, filepath.Join(fx.out, "a.coffeelint.js")))
	assert.Equal(t, 1, res.Findings())
	assert.Contains(t, fx.report.String(), "a.coffee (1 error):")
}

func TestLogDisabled(t *testing.T) {
	opts := memoryOptions()
	opts.Log = false
	fx := newFixture(t, opts, rules.Default(), nil, map[string]string{"a.coffee": "x = 1;\n"})

	res := fx.build(t)
	assert.Equal(t, 0, res.Log.Len())
	assert.Equal(t, 1, res.Findings())
	assert.Empty(t, fx.report.String())
	assert.Contains(t, readFile(t, filepath.Join(fx.out, "a.coffeelint.js")), "ok(false,")
}

func TestLogErrorOverride(t *testing.T) {
	fx := newFixture(t, memoryOptions(), rules.Default(), nil, map[string]string{
		"a.coffee": "x = 1;\n",
		"b.coffee": "y = 2;\n",
		"c.coffee": "z = 3\n",
	})
	var (
		mu  sync.Mutex
		got []string
	)
	fx.filter.LogError = func(report string) {
		mu.Lock()
		got = append(got, report)
		mu.Unlock()
	}

	res := fx.build(t)
	assert.Len(t, got, 2)
	assert.Equal(t, 0, res.Log.Len())
	assert.Empty(t, fx.report.String())
}

func TestMalformedRuleConfigDisablesRules(t *testing.T) {
	opts := memoryOptions()
	fx := newFixture(t, opts, rules.Default(), nil, map[string]string{
		"coffeelint.json": `{"no_trailing_semicolons": `,
		"a.coffee":        "x = 1;\n",
	})
	fx.filter.RuleConfig = nil
	fx.filter.Options.ConfigPath = fx.in

	res := fx.build(t)
	assert.Equal(t, filepath.Join(fx.in, "coffeelint.json"), res.ConfigPath)
	assert.Equal(t, 0, res.Findings())
	assert.Contains(t, readFile(t, filepath.Join(fx.out, "a.coffeelint.js")), "ok(true,")
	assert.Equal(t, 1, res.Copied, "coffeelint.json is copied through")
}

func TestDiscoveredRuleConfigApplies(t *testing.T) {
	fx := newFixture(t, memoryOptions(), rules.Default(), nil, map[string]string{
		"CoffeeLint.json": `{
			// allow semicolons
			"no_trailing_semicolons": {"level": "ignore"}
		}`,
		"a.coffee": "x = 1;\n",
	})
	fx.filter.RuleConfig = nil
	fx.filter.Options.ConfigPath = fx.in

	res := fx.build(t)
	assert.Equal(t, 0, res.Findings())
}

func TestEngineErrorAbortsBuild(t *testing.T) {
	reg, _ := countingRegistry(t)
	opts := memoryOptions()
	opts.Workers = 1
	fx := newFixture(t, opts, reg, nil, map[string]string{
		"a.coffee": "bad\n",
		"z.coffee": "boom\n",
	})

	_, err := fx.filter.Build(context.Background(), fx.in, fx.out)
	var ee *lint.EngineError
	require.True(t, errors.As(err, &ee), "got %v", err)
	assert.Equal(t, "no_bad", ee.Rule)
	assert.Contains(t, err.Error(), "z.coffee")

	assert.Contains(t, fx.report.String(), "a.coffee (1 error):", "report is flushed on failure")
}

func TestSyntaxErrorIsAFinding(t *testing.T) {
	fx := newFixture(t, memoryOptions(), rules.Default(), nil, map[string]string{"a.coffee": "s = 'open\n"})

	res := fx.build(t)
	assert.Equal(t, 1, res.Findings())
	assert.Contains(t, fx.report.String(), "rule: coffeescript_error")
}

func TestBuildCancelled(t *testing.T) {
	fx := newFixture(t, memoryOptions(), rules.Default(), nil, map[string]string{"a.coffee": "x\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.filter.Build(ctx, fx.in, fx.out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildRejectsOutputContainingInput(t *testing.T) {
	fx := newFixture(t, memoryOptions(), rules.Default(), nil, map[string]string{"a.coffee": "x\n"})

	_, err := fx.filter.Build(context.Background(), fx.in, fx.in)
	assert.Error(t, err)
	_, err = fx.filter.Build(context.Background(), fx.in, filepath.Dir(fx.in))
	assert.Error(t, err)
	assert.FileExists(t, filepath.Join(fx.in, "a.coffee"))
}

func TestBuildRemovesStaleOutput(t *testing.T) {
	fx := newFixture(t, memoryOptions(), rules.Default(), nil, map[string]string{"a.coffee": "x\n"})
	fx.build(t)

	require.NoError(t, os.Remove(filepath.Join(fx.in, "a.coffee")))
	fx.build(t)
	assert.NoFileExists(t, filepath.Join(fx.out, "a.coffeelint.js"))
}

func TestExcludeAndExtensions(t *testing.T) {
	opts := memoryOptions()
	opts.Extensions = []string{"coffee", ".litcoffee"}
	opts.TargetExtension = ".lint.js"
	opts.Exclude = []string{"vendor/**"}
	fx := newFixture(t, opts, rules.Default(), nil, map[string]string{
		"a.coffee":          "x\n",
		"b.litcoffee":       "y\n",
		"vendor/lib.coffee": "z;\n",
	})

	res := fx.build(t)
	assert.Equal(t, 2, res.Linted)
	assert.Equal(t, 1, res.Copied)
	assert.FileExists(t, filepath.Join(fx.out, "a.lint.js"))
	assert.FileExists(t, filepath.Join(fx.out, "b.lint.js"))
	assert.Equal(t, "z;\n", readFile(t, filepath.Join(fx.out, "vendor", "lib.coffee")))
}

func TestNewValidates(t *testing.T) {
	_, err := New(memoryOptions(), nil, nil, zerolog.Nop())
	assert.Error(t, err)

	opts := memoryOptions()
	opts.Extensions = nil
	_, err = New(opts, rules.Default(), nil, zerolog.Nop())
	assert.Error(t, err)
}
