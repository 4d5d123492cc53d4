package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sofmeright/coffeefreight/src/config"
	"github.com/sofmeright/coffeefreight/src/filter"
	"github.com/sofmeright/coffeefreight/src/lint/rules"
	"github.com/sofmeright/coffeefreight/src/output"
)

var (
	buildNoPersist  bool
	buildNoTests    bool
	buildQuiet      bool
	buildConfigPath string
	buildConfigRoot string
	buildAnnotation string
	buildBackend    string
	buildWorkers    int
	buildExclude    []string
	buildWatch      bool
	buildJUnit      string
	buildMetrics    string
	buildStrict     bool
)

var buildCmd = &cobra.Command{
	Use:   "build <input-dir> <output-dir>",
	Short: "Lint a source tree into test stubs",
	Long: `Lint every .coffee file under input-dir and write a test stub per file
(app.coffee -> app.coffeelint.js) to output-dir. Other files are copied.

Artifacts are cached by content and configuration fingerprint; unchanged
files are never re-linted. Findings print as one report at the end.`,
	Args: cobra.ExactArgs(2),
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.BoolVar(&buildNoPersist, "no-persist", false, "keep artifacts in memory only")
	f.BoolVar(&buildNoTests, "no-tests", false, "lint and report without generating test stubs")
	f.BoolVarP(&buildQuiet, "quiet", "q", false, "do not print per-file reports")
	f.StringVar(&buildConfigPath, "coffeelint", "", "coffeelint.json, or directory to start searching from")
	f.StringVar(&buildConfigRoot, "coffeelint-root", "", "directory below the input to start searching from")
	f.StringVar(&buildAnnotation, "annotation", "", "label for diagnostics")
	f.StringVar(&buildBackend, "cache-backend", "", "artifact cache backend: dir or badger")
	f.IntVar(&buildWorkers, "workers", 0, "files processed concurrently (default 2×CPUs)")
	f.StringSliceVar(&buildExclude, "exclude", nil, "glob of lintable files to copy instead (repeatable)")
	f.BoolVarP(&buildWatch, "watch", "w", false, "rebuild when the input changes")
	f.StringVar(&buildJUnit, "junit", "", "write JUnit XML of lint outcomes to this directory")
	f.StringVar(&buildMetrics, "metrics-file", "", "write Prometheus metrics to this textfile after each build")
	f.BoolVar(&buildStrict, "strict", false, "exit non-zero when any finding is reported")

	rootCmd.AddCommand(buildCmd)
}

// buildOptions applies command-line overrides to the loaded options.
func buildOptions(cmd *cobra.Command) (config.Options, error) {
	o := *opts
	flags := cmd.Flags()
	if flags.Changed("no-persist") {
		o.Persist = !buildNoPersist
	}
	if flags.Changed("no-tests") {
		o.DisableTestGenerator = buildNoTests
	}
	if flags.Changed("quiet") {
		o.Log = !buildQuiet
	}
	if buildConfigPath != "" {
		o.ConfigPath = buildConfigPath
	}
	if buildConfigRoot != "" {
		o.ConfigRoot = buildConfigRoot
	}
	if buildAnnotation != "" {
		o.Annotation = buildAnnotation
	}
	if buildBackend != "" {
		o.CacheBackend = config.CacheBackend(buildBackend)
	}
	if flags.Changed("workers") {
		o.Workers = buildWorkers
	}
	o.Exclude = append(o.Exclude, buildExclude...)
	return o, o.Validate()
}

func runBuild(cmd *cobra.Command, args []string) error {
	o, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	store, err := filter.OpenStore(o, rootDir, logger)
	if err != nil {
		return fmt.Errorf("opening artifact cache: %w", err)
	}
	defer store.Close()

	f, err := filter.New(o, rules.Default(), store, logger)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	f.Metrics = filter.NewMetrics(reg)
	f.Color = output.UseColor()
	w := cmd.OutOrStdout()
	f.Report = w

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, out := args[0], args[1]

	if buildWatch {
		return f.Watch(ctx, in, out, filter.DefaultDebounce, func(res *filter.Result, err error) {
			printStats(w, f, res)
			if err != nil {
				logger.Error().Err(err).Msg("build failed")
			}
			writeMetrics(reg)
		})
	}

	res, err := f.Build(ctx, in, out)
	printStats(w, f, res)
	if buildJUnit != "" {
		if jErr := output.WriteJUnit(buildJUnit, res.Outcomes, res.Elapsed); jErr != nil {
			logger.Warn().Err(jErr).Msg("failed to write junit report")
		}
	}
	writeMetrics(reg)

	if err != nil {
		return err
	}
	if buildStrict && res.Findings() > 0 {
		return fmt.Errorf("lint failed: %d findings", res.Findings())
	}
	return nil
}

func printStats(w io.Writer, f *filter.Filter, res *filter.Result) {
	sec := output.NewSection(w, "Build", res.Elapsed, f.Color)
	sec.StatsRow("linted", res.Linted, "")
	sec.StatsRow("cached", res.Cached, "")
	sec.StatsRow("copied", res.Copied, "")
	cfg := res.ConfigPath
	if cfg == "" {
		cfg = "defaults"
	}
	sec.StatsRow("findings", res.Findings(), output.Dimmed(cfg, f.Color))
	sec.Separator()
	status := "success"
	if res.Findings() > 0 {
		status = "failed"
	}
	sec.Status("total", status)
	sec.Close()
}

func writeMetrics(reg *prometheus.Registry) {
	if buildMetrics == "" {
		return
	}
	if err := prometheus.WriteToTextfile(buildMetrics, reg); err != nil {
		logger.Warn().Err(err).Msg("failed to write metrics")
	}
}
