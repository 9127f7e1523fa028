package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"kiln/internal/diag"
	"kiln/internal/diagfmt"
	"kiln/internal/driver"
	"kiln/internal/trace"
	"kiln/internal/ui"
	"kiln/internal/version"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [path]",
	Short: "Type-check a kiln project and report diagnostics",
	Long: `Diag loads the project around path (a .kn file or a directory with kiln.toml),
parses every reachable module in parallel and type-checks them in dependency order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|short|json|yaml|sarif)")
	diagCmd.Flags().String("ui", "off", "show progress (auto|on|off)")
	diagCmd.Flags().Int("jobs", 0, "parser workers (0 = from kiln.toml or GOMAXPROCS)")
	diagCmd.Flags().Bool("cache", false, "reuse diagnostics from the disk cache")
	diagCmd.Flags().Bool("clear-cache", false, "drop the disk cache before checking")
	diagCmd.Flags().Bool("warn-unused", false, "report unused local bindings")
	diagCmd.Flags().Bool("with-notes", false, "print notes attached to diagnostics")
	diagCmd.Flags().Bool("positions", true, "include line/column in json and yaml output")
	diagCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	diagCmd.Flags().Int8("context", 1, "source lines around each diagnostic")
	diagCmd.Flags().Uint8("width", 0, "truncate source lines to this width (0 = no limit)")
}

type diagFlags struct {
	format     string
	ui         autoSwitch
	jobs       int
	cache      bool
	clearCache bool
	warnUnused bool
	withNotes  bool
	positions  bool
	pathMode   diagfmt.PathMode
	context    int8
	width      uint8
}

func readDiagFlags(cmd *cobra.Command) (diagFlags, error) {
	var (
		f   diagFlags
		err error
	)
	flags := cmd.Flags()
	if f.format, err = flags.GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	f.format = strings.ToLower(f.format)
	switch f.format {
	case "pretty", "short", "json", "yaml", "sarif":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = parseAutoSwitch("ui", uiValue); err != nil {
		return f, err
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.cache, err = flags.GetBool("cache"); err != nil {
		return f, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if f.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return f, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if f.warnUnused, err = flags.GetBool("warn-unused"); err != nil {
		return f, fmt.Errorf("failed to get warn-unused flag: %w", err)
	}
	if f.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if f.positions, err = flags.GetBool("positions"); err != nil {
		return f, fmt.Errorf("failed to get positions flag: %w", err)
	}
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return f, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if f.pathMode, ok = diagfmt.ParsePathMode(pathMode); !ok {
		return f, fmt.Errorf("invalid --path-mode %q (expected auto|absolute|relative|basename)", pathMode)
	}
	if f.context, err = flags.GetInt8("context"); err != nil {
		return f, fmt.Errorf("failed to get context flag: %w", err)
	}
	if f.width, err = flags.GetUint8("width"); err != nil {
		return f, fmt.Errorf("failed to get width flag: %w", err)
	}
	return f, nil
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	f, err := readDiagFlags(cmd)
	if err != nil {
		return err
	}
	maxDiagnostics, err := maxDiagnosticsFlag(cmd)
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	opts := driver.DiagnoseOptions{
		Jobs:           f.jobs,
		MaxDiagnostics: maxDiagnostics,
		WarnUnused:     f.warnUnused,
		Timings:        timings,
		Tracer:         trace.TracerFrom(cmd.Context()),
	}
	if f.cache || f.clearCache {
		cache, err := driver.OpenDiskCache("kiln")
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		if f.clearCache {
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
		}
		if f.cache {
			opts.Cache = cache
		}
	}

	var result *driver.DiagnoseResult
	if f.ui.enabled(terminalStream(os.Stderr)) && !quiet {
		result, err = runDiagnoseWithUI(cmd.Context(), "kiln diag", path, opts)
	} else {
		result, err = driver.Diagnose(cmd.Context(), path, opts)
	}
	if err != nil {
		return fmt.Errorf("diagnose failed: %w", err)
	}

	if err := writeDiagnostics(cmd, cmd.OutOrStdout(), result, f); err != nil {
		return err
	}
	if timings && f.format == "pretty" && !quiet && result.Workspace != nil {
		fmt.Fprint(cmd.ErrOrStderr(), result.Timings.Summary(result.Workspace.TotalLines))
	}
	if result.Bag.HasErrors() {
		return errDiagnostics{count: result.Bag.ErrorCount()}
	}
	return nil
}

func writeDiagnostics(cmd *cobra.Command, w io.Writer, result *driver.DiagnoseResult, f diagFlags) error {
	bag, fs := result.Bag, result.FileSet
	jsonOpts := diagfmt.JSONOpts{
		IncludePositions: f.positions,
		PathMode:         f.pathMode,
		IncludeNotes:     f.withNotes,
	}
	switch f.format {
	case "pretty":
		color, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     color,
			Context:   f.context,
			PathMode:  f.pathMode,
			Width:     f.width,
			ShowNotes: f.withNotes,
		})
		return nil
	case "short":
		if out := diag.FormatShortDiagnostics(bag.Items(), fs, f.withNotes); out != "" {
			_, err := fmt.Fprintln(w, out)
			return err
		}
		return nil
	case "json":
		return diagfmt.JSON(w, bag, fs, jsonOpts)
	case "yaml":
		return diagfmt.YAML(w, bag, fs, jsonOpts)
	case "sarif":
		return diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "kiln",
			ToolVersion:    version.Current().Version,
			InvocationArgs: os.Args[1:],
		})
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

type diagnoseOutcome struct {
	result *driver.DiagnoseResult
	err    error
}

// runDiagnoseWithUI запускает проверку в фоне, а прогресс рисует Bubble Tea.
func runDiagnoseWithUI(ctx context.Context, title, path string, opts driver.DiagnoseOptions) (*driver.DiagnoseResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan diagnoseOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Diagnose(ctx, path, opts)
		outcomeCh <- diagnoseOutcome{result: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// модель больше не читает канал; не даём воркерам зависнуть
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
