package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sift/internal/cache"
	"sift/internal/diagfmt"
	"sift/internal/driver"
	"sift/internal/observ"
	"sift/internal/project"
	"sift/internal/version"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <file|dir>...",
		Short: "Analyze C/C++ sources",
		Long: `Analyze C/C++ sources and report diagnostics that no suppression covers.

Settings are read from sift.toml (found by walking up from the working
directory, or named by --config); command-line flags override them.`,
		RunE: runCheck,
	}

	flags := cmd.Flags()
	flags.Bool("inline-suppr", false, "honor cppcheck-suppress comments in analyzed files")
	flags.StringArray("enable", nil, "enable additional checks or severities (style,warning,information,all,<check>)")
	flags.StringArray("disable", nil, "disable checks or severities")
	flags.StringArray("suppress", nil, "suppress a diagnostic: id[:file[:line]]")
	flags.StringArray("suppressions-list", nil, "read suppressions from a file")
	flags.Int("error-exitcode", 0, "exit status when diagnostics are reported")
	flags.String("build-dir", "", "cache analysis results in this directory (auto for the user cache)")
	flags.IntP("jobs", "j", 0, "number of parallel workers (0 for GOMAXPROCS)")
	flags.StringArrayP("include", "I", nil, "add an include search path")
	flags.StringArrayP("define", "D", nil, "check only the configuration with this macro defined: NAME or NAME=VALUE")
	flags.String("project", "", "read files and include paths from compile_commands.json")
	flags.String("config", "", "path to sift.toml")
	flags.String("template", "simple", "output template name (simple|gcc|vs|edit) or text")
	flags.String("format", "template", "output format (template|pretty|json|sarif)")
	flags.String("path-mode", "auto", "path display mode (auto|absolute|relative|basename)")
	flags.Int("context", 2, "source lines shown before a pretty diagnostic")
	flags.Int("max-diagnostics", 0, "limit JSON output to this many diagnostics (0 for no limit)")
	flags.String("ui", "auto", "progress UI mode (auto|on|off)")

	return cmd
}

// checkSettings is the merged view of sift.toml and flags.
type checkSettings struct {
	inline      bool
	enable      []string
	disable     []string
	suppress    []string
	lists       []string
	exitCode    int
	buildDir    string
	jobs        int
	includes    []string
	defines     []string
	project     string
	template    string
	format      diagfmt.Format
	pathMode    diagfmt.PathMode
	context     int
	maxDiags    int
	ui          uiMode
	manifest    *project.Manifest
	quiet       bool
	timings     bool
	colorOutput bool
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	profiler, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", stopErr)
		}
	}()
	defer func() {
		var ee *exitError
		if err != nil && !errors.As(err, &ee) {
			dumpTrace(cmd.ErrOrStderr(), tracer)
		}
	}()

	st, err := readCheckSettings(cmd)
	if err != nil {
		return err
	}
	color.NoColor = !st.colorOutput

	files, err := collectInputs(st, args)
	if err != nil {
		return err
	}

	extra, err := st.manifest.Suppressions()
	if err != nil {
		return err
	}
	cacheDir := st.buildDir
	if cacheDir == "auto" {
		if cacheDir, err = cache.DefaultDir("sift"); err != nil {
			return err
		}
	}

	var timer *observ.Timer
	if st.timings {
		timer = observ.NewTimer()
	}
	opts := driver.Options{
		InlineSuppressions: st.inline,
		Enable:             st.enable,
		Disable:            st.disable,
		Suppressions:       st.suppress,
		SuppressionLists:   st.lists,
		Defines:            st.defines,
		Extra:              extra,
		ErrorExitCode:      st.exitCode,
		CacheDir:           cacheDir,
		Jobs:               st.jobs,
		Timer:              timer,
	}
	in := driver.Input{Files: files}

	var res *driver.Result
	switch {
	case !st.quiet && shouldUseTUI(st.ui):
		res, err = runAnalyzeWithUI(cmd.Context(), in, opts)
	case st.quiet:
		res, err = driver.Analyze(cmd.Context(), in, opts, nil)
	default:
		res, err = driver.Analyze(cmd.Context(), in, opts, &lineSink{w: cmd.OutOrStdout()})
	}
	if err != nil {
		return err
	}

	if err := render(cmd, st, res); err != nil {
		return err
	}
	if timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if res.ExitCode != 0 {
		return &exitError{code: res.ExitCode}
	}
	return nil
}

func readCheckSettings(cmd *cobra.Command) (*checkSettings, error) {
	flags := cmd.Flags()
	st := &checkSettings{}
	var err error

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if st.manifest, err = loadManifest(configPath); err != nil {
		return nil, err
	}
	cfg := project.CheckConfig{}
	if st.manifest != nil {
		cfg = st.manifest.Check
	}

	if st.inline, err = flags.GetBool("inline-suppr"); err != nil {
		return nil, fmt.Errorf("failed to get inline-suppr flag: %w", err)
	}
	if !flags.Changed("inline-suppr") && st.manifest.Defined("inline-suppressions") {
		st.inline = cfg.InlineSuppressions
	}

	if st.enable, err = flags.GetStringArray("enable"); err != nil {
		return nil, fmt.Errorf("failed to get enable flag: %w", err)
	}
	if !flags.Changed("enable") {
		st.enable = cfg.Enable
	}
	if st.disable, err = flags.GetStringArray("disable"); err != nil {
		return nil, fmt.Errorf("failed to get disable flag: %w", err)
	}
	if !flags.Changed("disable") {
		st.disable = cfg.Disable
	}

	if st.suppress, err = flags.GetStringArray("suppress"); err != nil {
		return nil, fmt.Errorf("failed to get suppress flag: %w", err)
	}
	lists, err := flags.GetStringArray("suppressions-list")
	if err != nil {
		return nil, fmt.Errorf("failed to get suppressions-list flag: %w", err)
	}
	st.lists = append(append([]string(nil), cfg.SuppressionsLists...), lists...)

	if st.exitCode, err = flags.GetInt("error-exitcode"); err != nil {
		return nil, fmt.Errorf("failed to get error-exitcode flag: %w", err)
	}
	if !flags.Changed("error-exitcode") && st.manifest.Defined("error-exitcode") {
		st.exitCode = cfg.ErrorExitCode
	}
	if st.exitCode < 0 || st.exitCode > 255 {
		return nil, fmt.Errorf("--error-exitcode must be within 0..255, got %d", st.exitCode)
	}

	if st.buildDir, err = flags.GetString("build-dir"); err != nil {
		return nil, fmt.Errorf("failed to get build-dir flag: %w", err)
	}
	if !flags.Changed("build-dir") {
		st.buildDir = cfg.BuildDir
	}

	if st.jobs, err = flags.GetInt("jobs"); err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !flags.Changed("jobs") && st.manifest.Defined("jobs") {
		st.jobs = cfg.Jobs
	}
	if st.jobs < 0 {
		return nil, fmt.Errorf("--jobs must not be negative, got %d", st.jobs)
	}

	includes, err := flags.GetStringArray("include")
	if err != nil {
		return nil, fmt.Errorf("failed to get include flag: %w", err)
	}
	st.includes = append(append([]string(nil), cfg.IncludePaths...), includes...)

	defines, err := flags.GetStringArray("define")
	if err != nil {
		return nil, fmt.Errorf("failed to get define flag: %w", err)
	}
	st.defines = append(append([]string(nil), cfg.Defines...), defines...)

	if st.project, err = flags.GetString("project"); err != nil {
		return nil, fmt.Errorf("failed to get project flag: %w", err)
	}

	if st.template, err = flags.GetString("template"); err != nil {
		return nil, fmt.Errorf("failed to get template flag: %w", err)
	}
	if !flags.Changed("template") && cfg.Template != "" {
		st.template = cfg.Template
	}

	formatStr, err := flags.GetString("format")
	if err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	if st.format, err = diagfmt.ParseFormat(formatStr); err != nil {
		return nil, err
	}
	pathModeStr, err := flags.GetString("path-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if st.pathMode, err = readPathMode(pathModeStr); err != nil {
		return nil, err
	}
	if st.context, err = flags.GetInt("context"); err != nil {
		return nil, fmt.Errorf("failed to get context flag: %w", err)
	}
	if st.maxDiags, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	uiStr, err := flags.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if st.ui, err = readUIMode(uiStr); err != nil {
		return nil, err
	}

	if st.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if st.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	colorStr, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	if st.colorOutput, err = readColorMode(colorStr, os.Stderr); err != nil {
		return nil, err
	}
	return st, nil
}

// loadManifest reads an explicit --config path, or sift.toml found from
// the working directory. No manifest is not an error.
func loadManifest(path string) (*project.Manifest, error) {
	if path == "" {
		found, ok, err := project.FindManifest("")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		path = found
	}
	return project.LoadManifest(path)
}

func collectInputs(st *checkSettings, args []string) ([]project.File, error) {
	if st.project == "" {
		return project.Collect(args, st.includes)
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("--project cannot be combined with file arguments")
	}
	files, err := project.LoadCompileDB(st.project)
	if err != nil {
		return nil, err
	}
	if len(st.includes) > 0 {
		for i := range files {
			files[i].IncludePaths = append(files[i].IncludePaths, st.includes...)
		}
	}
	return files, nil
}

func readPathMode(value string) (diagfmt.PathMode, error) {
	switch strings.ToLower(value) {
	case "", "auto":
		return diagfmt.PathModeAuto, nil
	case "absolute", "abs":
		return diagfmt.PathModeAbsolute, nil
	case "relative", "rel":
		return diagfmt.PathModeRelative, nil
	case "basename", "base":
		return diagfmt.PathModeBasename, nil
	default:
		return diagfmt.PathModeAuto, fmt.Errorf("invalid --path-mode value %q (expected auto|absolute|relative|basename)", value)
	}
}

// render writes diagnostics. Text renderings go to stderr next to other
// messages; machine-readable ones go to stdout.
func render(cmd *cobra.Command, st *checkSettings, res *driver.Result) error {
	lines := diagfmt.NewFileLines()
	switch st.format {
	case diagfmt.FormatPretty:
		return diagfmt.Pretty(cmd.ErrOrStderr(), res.Diagnostics, lines, diagfmt.PrettyOpts{
			Color:    st.colorOutput,
			Context:  st.context,
			PathMode: st.pathMode,
		})
	case diagfmt.FormatJSON:
		return diagfmt.JSON(cmd.OutOrStdout(), res.Diagnostics, diagfmt.JSONOpts{
			PathMode: st.pathMode,
			Max:      st.maxDiags,
		})
	case diagfmt.FormatSarif:
		return diagfmt.Sarif(cmd.OutOrStdout(), res.Diagnostics, diagfmt.SarifRunMeta{
			ToolName:       "sift",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args,
		})
	default:
		return diagfmt.Template(cmd.ErrOrStderr(), res.Diagnostics, st.template, lines)
	}
}
