package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kiln/internal/version"
)

type versionOptions struct {
	format      string
	showHash    bool
	showMessage bool
	showDate    bool
}

type versionPayload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
	Modified   bool   `json:"modified,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show kiln build metadata",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("message", false, "include git commit message")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	format, _ := flags.GetString("format")
	full, _ := flags.GetBool("full")
	hash, _ := flags.GetBool("hash")
	message, _ := flags.GetBool("message")
	date, _ := flags.GetBool("date")
	opts := versionOptions{
		format:      strings.ToLower(format),
		showHash:    hash || full,
		showMessage: message || full,
		showDate:    date || full,
	}

	info := version.Current()
	switch opts.format {
	case "json":
		return renderVersionJSON(cmd.OutOrStdout(), info, opts)
	case "pretty":
		colorOn, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		color.NoColor = !colorOn
		renderVersionPretty(cmd.OutOrStdout(), info, opts)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func renderVersionPretty(out io.Writer, info version.Info, opts versionOptions) {
	v := version.Colored(info.Version)
	if info.Modified {
		v += " (modified)"
	}
	fmt.Fprintf(out, "kiln %s\n", v)
	if opts.showHash {
		fmt.Fprintf(out, "commit:  %s\n", valueOrUnknown(info.GitCommit))
	}
	if opts.showMessage {
		fmt.Fprintf(out, "message: %s\n", valueOrUnknown(info.Message))
	}
	if opts.showDate {
		fmt.Fprintf(out, "built:   %s\n", valueOrUnknown(info.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, info version.Info, opts versionOptions) error {
	payload := versionPayload{Tool: "kiln", Version: info.Version, Modified: info.Modified}
	if opts.showHash {
		payload.GitCommit = valueOrUnknown(info.GitCommit)
	}
	if opts.showMessage {
		payload.GitMessage = valueOrUnknown(info.Message)
	}
	if opts.showDate {
		payload.BuildDate = valueOrUnknown(info.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
