package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kiln/internal/prof"
	"kiln/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "kiln",
	Short: "Kiln language front end",
	Long:  `Kiln parses and type-checks kiln projects and reports diagnostics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		stop, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		profStop = stop
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	traceCleanup func()
	profStop     func() error
)

func main() {
	rootCmd.Version = version.Current().Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|phase|module|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson|chrome)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write CPU profile to file")
	rootCmd.PersistentFlags().String("memprofile", "", "write heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write Go runtime trace to file")

	err := rootCmd.Execute()
	// закрываем здесь, а не в PersistentPostRun: он не вызывается при ошибке команды
	if traceCleanup != nil {
		traceCleanup()
	}
	if profStop != nil {
		if perr := profStop(); perr != nil {
			fmt.Fprintf(os.Stderr, "profile: %v\n", perr)
		}
	}
	if err != nil {
		// диагностики уже напечатаны командой
		if _, ok := err.(errDiagnostics); !ok {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

// errDiagnostics означает, что команда отработала, но нашла ошибки в исходниках.
type errDiagnostics struct{ count int }

func (e errDiagnostics) Error() string {
	if e.count == 1 {
		return "1 error"
	}
	return fmt.Sprintf("%d errors", e.count)
}

func exitCode(err error) int {
	if _, ok := err.(errDiagnostics); ok {
		return 2
	}
	return 1
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor разбирает --color для потока f.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := parseAutoSwitch("color", value)
	if err != nil {
		return false, err
	}
	return mode.enabled(terminalStream(f)), nil
}

func maxDiagnosticsFlag(cmd *cobra.Command) (int, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("--max-diagnostics must be positive, got %d", n)
	}
	return n, nil
}

func setupProfiling(cmd *cobra.Command) (func() error, error) {
	flags := cmd.Root().PersistentFlags()
	var cfg prof.Config
	var err error
	if cfg.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return nil, fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	if cfg.Mem, err = flags.GetString("memprofile"); err != nil {
		return nil, fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	if cfg.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !cfg.Enabled() {
		return nil, nil
	}
	return prof.Start(cfg)
}
