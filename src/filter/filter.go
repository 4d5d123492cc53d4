// Package filter implements the incremental build step: it walks an input
// tree, lints every CoffeeScript file into a derived test stub and copies
// everything else through, reusing artifacts whose fingerprint is unchanged.
package filter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sofmeright/coffeefreight/src/config"
	"github.com/sofmeright/coffeefreight/src/lint"
	"github.com/sofmeright/coffeefreight/src/output"
	"github.com/sofmeright/coffeefreight/src/report"
)

// Filter lints a source tree into an output tree.
type Filter struct {
	Options  config.Options
	Registry *lint.Registry
	Emitter  *report.Emitter
	Store    Store
	Logger   zerolog.Logger
	Metrics  *Metrics

	// RuleConfig, when non-nil, is used instead of discovering coffeelint.json.
	RuleConfig config.RuleConfig
	// LogError, when set, receives each per-file report instead of the build
	// error log.
	LogError func(report string)
	// Report receives the aggregated report at the end of each build
	// (default os.Stdout).
	Report io.Writer
	Color  bool

	CacheHits   atomic.Int64
	CacheMisses atomic.Int64
}

// New creates a filter. A nil store keeps artifacts in memory.
func New(opts config.Options, reg *lint.Registry, store Store, logger zerolog.Logger) (*Filter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, errors.New("filter: rule registry is required")
	}
	if store == nil {
		var err error
		if store, err = NewMemoryStore(defaultMemoryEntries); err != nil {
			return nil, err
		}
	}
	if opts.Annotation != "" {
		logger = logger.With().Str("annotation", opts.Annotation).Logger()
	}
	return &Filter{
		Options:  opts,
		Registry: reg,
		Emitter:  &report.Emitter{DisableTestGenerator: opts.DisableTestGenerator},
		Store:    store,
		Logger:   logger,
	}, nil
}

// Result summarizes one build.
type Result struct {
	BuildID    string
	ConfigPath string // coffeelint.json in effect, "" when none
	Log        *ErrorLog
	Outcomes   []report.Outcome // lintable files, sorted by path
	Linted     int
	Cached     int
	Copied     int
	Elapsed    time.Duration
}

// Findings returns the total number of findings in the build.
func (r *Result) Findings() int { return r.Log.Findings() }

type build struct {
	f       *Filter
	linter  *lint.Linter
	fp      string
	log     *ErrorLog
	logger  zerolog.Logger
	in, out string
	skip    map[string]bool

	mu  sync.Mutex
	res *Result
}

// Build processes inputDir into outputDir, which is recreated. Configuration
// is resolved once per build. The aggregated report is written on every exit
// path, including failures and cancellation.
func (f *Filter) Build(ctx context.Context, inputDir, outputDir string) (res *Result, err error) {
	start := time.Now()
	log := NewErrorLog(f.LogError)
	res = &Result{BuildID: log.ID, Log: log}
	logger := f.Logger.With().Str("build", log.ID).Logger()

	defer func() {
		res.Elapsed = time.Since(start)
		f.Metrics.build(res.Elapsed.Seconds(), err)
		f.flush(log)
		ev := logger.Debug()
		if err != nil {
			ev = logger.Error().Err(err)
		}
		ev.Int("linted", res.Linted).Int("cached", res.Cached).Int("copied", res.Copied).
			Int("findings", log.Findings()).Dur("elapsed", res.Elapsed).Msg("build finished")
	}()

	in, out, err := prepareOutput(inputDir, outputDir)
	if err != nil {
		return res, err
	}

	linter, cfgPath, rc, err := f.resolveLinter(in, logger)
	if err != nil {
		return res, err
	}
	res.ConfigPath = cfgPath

	var active []string
	for _, d := range linter.Rules() {
		active = append(active, d.Name+":"+d.Level.String())
	}
	fp, err := fingerprint(f.Options, rc, active, f.Emitter)
	if err != nil {
		return res, fmt.Errorf("fingerprinting options: %w", err)
	}

	b := &build{
		f:      f,
		linter: linter,
		fp:     fp,
		log:    log,
		logger: logger,
		in:     in,
		out:    out,
		skip:   map[string]bool{out: true},
		res:    res,
	}
	if f.Options.Persist {
		if dir, err := filepath.Abs(f.Options.CacheDir); err == nil {
			b.skip[dir] = true
		}
	}

	err = b.run(ctx)
	sort.Slice(res.Outcomes, func(i, j int) bool { return res.Outcomes[i].Path < res.Outcomes[j].Path })
	return res, err
}

// resolveLinter compiles the registry against the build's rule
// configuration. A malformed configuration is logged and leaves the build
// with no active rules.
func (f *Filter) resolveLinter(inputDir string, logger zerolog.Logger) (*lint.Linter, string, config.RuleConfig, error) {
	rc := f.RuleConfig
	path := ""
	if rc == nil {
		var err error
		path, rc, err = config.ResolveRuleConfig(f.Options, inputDir)
		var pe *config.ParseError
		switch {
		case errors.As(err, &pe):
			logger.Warn().Err(pe.Err).Str("path", pe.Path).Msg("error occurred parsing coffeelint.json, no rules active")
			return nil, path, nil, nil
		case err != nil:
			return nil, "", nil, fmt.Errorf("resolving %s: %w", config.RuleConfigFile, err)
		}
		if path != "" {
			logger.Debug().Str("path", path).Msg("using rule configuration")
		}
	}

	l, err := lint.New(f.Registry, rc)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid rule configuration, no rules active")
		return nil, path, nil, nil
	}
	return l, path, rc, nil
}

func (b *build) run(ctx context.Context) error {
	workers := b.f.Options.Workers
	if workers == 0 {
		workers = runtime.NumCPU() * 2
	}
	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	walkErr := filepath.WalkDir(b.in, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(b.in, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(b.out, rel)

		switch {
		case d.IsDir():
			if b.skip[path] {
				return filepath.SkipDir
			}
			if rel == "." {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(dest, info.Mode().Perm()|0o700)
		case d.Type()&fs.ModeSymlink != 0:
			return b.copied(copySymlink(path, dest))
		case !d.Type().IsRegular():
			return nil
		}

		if err := sem.Acquire(gctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			return b.file(gctx, filepath.ToSlash(rel), path, dest)
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return walkErr
}

func (b *build) file(ctx context.Context, rel, src, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.f.lintable(rel) {
		return b.copied(copyFile(src, dest))
	}

	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	key := cacheKey(b.fp, rel, content)
	e, hit := b.f.lookup(key)
	if hit {
		b.f.CacheHits.Add(1)
	} else {
		b.f.CacheMisses.Add(1)
		findings, err := b.linter.Lint(string(content))
		if err != nil {
			return fmt.Errorf("linting %s: %w", rel, err)
		}
		rep := report.Format(rel, findings)
		e = entry{
			Artifact: b.f.Emitter.Stub(rel, len(findings) == 0, rep),
			Report:   rep,
			Findings: len(findings),
		}
		b.f.save(key, e, b.logger)
	}

	if err := os.WriteFile(b.f.artifactPath(dest), []byte(e.Artifact), 0o644); err != nil {
		return err
	}

	b.log.AddFindings(e.Findings)
	if e.Report != "" && b.f.Options.Log {
		b.log.Append(e.Report)
	}

	outcome := outcomeLinted
	if hit {
		outcome = outcomeCached
	}
	b.f.Metrics.file(outcome, e.Findings)

	b.mu.Lock()
	defer b.mu.Unlock()
	if hit {
		b.res.Cached++
	} else {
		b.res.Linted++
	}
	b.res.Outcomes = append(b.res.Outcomes, report.Outcome{
		Path:     rel,
		Findings: e.Findings,
		Report:   e.Report,
		Cached:   hit,
	})
	return nil
}

func (b *build) copied(err error) error {
	if err != nil {
		return err
	}
	b.f.Metrics.file(outcomeCopied, 0)
	b.mu.Lock()
	b.res.Copied++
	b.mu.Unlock()
	return nil
}

// lintable reports whether a slash-separated relative path is linted rather
// than copied.
func (f *Filter) lintable(rel string) bool {
	ext := strings.TrimPrefix(filepath.Ext(rel), ".")
	if ext == "" {
		return false
	}
	for _, want := range f.Options.Extensions {
		if strings.TrimPrefix(want, ".") == ext {
			return !excludeSet(f.Options.Exclude).match(rel)
		}
	}
	return false
}

// artifactPath maps src/app.coffee to src/app.coffeelint.js.
func (f *Filter) artifactPath(dest string) string {
	stem := strings.TrimSuffix(dest, filepath.Ext(dest))
	return stem + "." + strings.TrimPrefix(f.Options.TargetExtension, ".")
}

func (f *Filter) lookup(key string) (entry, bool) {
	data, ok := f.Store.Get(key)
	if !ok {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return entry{}, false
	}
	return e, true
}

// save stores an entry. Failures only cost a future cache miss.
func (f *Filter) save(key string, e entry, logger zerolog.Logger) {
	data, err := json.Marshal(e)
	if err == nil {
		err = f.Store.Put(key, data)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("artifact cache write failed")
	}
}

func (f *Filter) flush(log *ErrorLog) {
	w := f.Report
	if w == nil {
		w = os.Stdout
	}
	output.PrintReport(w, log.Reports(), log.Findings(), f.Color)
}

// prepareOutput validates and recreates the output directory. It returns
// both directories as absolute paths.
func prepareOutput(inputDir, outputDir string) (string, string, error) {
	in, err := filepath.Abs(inputDir)
	if err != nil {
		return "", "", err
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return "", "", err
	}
	info, err := os.Stat(in)
	if err != nil {
		return "", "", err
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("filter: input %s is not a directory", in)
	}
	if in == out || strings.HasPrefix(in, out+string(filepath.Separator)) {
		return "", "", fmt.Errorf("filter: output %s must not contain input %s", out, in)
	}
	if err := os.RemoveAll(out); err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", "", err
	}
	return in, out, nil
}

// copyFile copies content, permissions and modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	return os.Symlink(target, dst)
}
