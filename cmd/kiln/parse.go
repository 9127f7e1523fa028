package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kiln/internal/diagfmt"
	"kiln/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.kn",
	Short: "Parse a kiln source file and print its syntax tree",
	Long:  `Parse builds the AST of a single file. Imports are not followed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := maxDiagnosticsFlag(cmd)
	if err != nil {
		return err
	}

	result, err := driver.Parse(args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	if result.Bag.Len() > 0 {
		color, err := useColor(cmd, os.Stderr)
		if err != nil {
			return err
		}
		diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, diagfmt.PrettyOpts{Color: color, Context: 1})
	}

	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		err = diagfmt.FormatASTPretty(out, result.Builder, result.FileID, result.FileSet)
	case "json":
		err = diagfmt.FormatASTJSON(out, result.Builder, result.FileID)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return errDiagnostics{count: result.Bag.ErrorCount()}
	}
	return nil
}
