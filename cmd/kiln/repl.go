package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"kiln/internal/diagfmt"
	"kiln/internal/driver"
	"kiln/internal/lexer"
	"kiln/internal/source"
	"kiln/internal/token"
	"kiln/internal/trace"
)

const (
	replPrompt  = "kiln> "
	replCont    = "  ... "
	historyFile = ".kiln_history"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Type-check declarations and expressions interactively",
	Long: `Repl keeps every accepted declaration and prints the type of each expression.
Commands: :decls, :reset, :time, :quit`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func runRepl(cmd *cobra.Command, _ []string) error {
	maxDiagnostics, err := maxDiagnosticsFlag(cmd)
	if err != nil {
		return err
	}
	colorOn, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	typeColor := color.New(color.FgCyan)
	constColor := color.New(color.FgYellow)
	okColor := color.New(color.FgGreen)
	for _, c := range []*color.Color{typeColor, constColor, okColor} {
		if colorOn {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	st := &replState{sess: driver.NewSession(), tracer: trace.TracerFrom(cmd.Context())}
	st.sess.MaxDiagnostics = maxDiagnostics

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	out := cmd.OutOrStdout()
	for {
		input, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if strings.HasPrefix(input, ":") {
			if st.command(out, input) {
				return nil
			}
			continue
		}

		var rec *trace.Recorder
		st.sess.Tracer = st.tracer
		if st.showTime {
			rec = trace.NewRecorder(trace.LevelModule)
			st.sess.Tracer = rec
		}
		res, err := st.sess.Eval(cmd.Context(), input)
		if err != nil {
			return err
		}
		if res.Bag.Len() > 0 {
			diagfmt.Pretty(out, res.Bag, res.FileSet, diagfmt.PrettyOpts{Color: colorOn, PathMode: diagfmt.PathModeBasename})
		}
		switch {
		case res.Decl && res.Accepted:
			okColor.Fprintln(out, "ok")
		case res.Type != "" && res.Const != "":
			fmt.Fprintf(out, "%s = %s\n", typeColor.Sprint(res.Type), constColor.Sprint(res.Const))
		case res.Type != "":
			typeColor.Fprintln(out, res.Type)
		}
		if rec != nil {
			printPhases(out, rec)
		}
	}
}

type replState struct {
	sess     *driver.Session
	tracer   trace.Tracer
	showTime bool
}

// command выполняет команду вида `:name`; true означает выход.
func (st *replState) command(w io.Writer, input string) bool {
	switch strings.ToLower(input) {
	case ":quit", ":q", ":exit":
		return true
	case ":decls":
		for _, d := range st.sess.Decls() {
			fmt.Fprintln(w, d)
		}
	case ":reset":
		st.sess.Reset()
	case ":time":
		st.showTime = !st.showTime
		if st.showTime {
			fmt.Fprintln(w, "timing on")
		} else {
			fmt.Fprintln(w, "timing off")
		}
	default:
		fmt.Fprintln(w, "unknown command. Commands: :decls, :reset, :time, :quit")
	}
	return false
}

// printPhases печатает закрытые спаны проверки в порядке завершения.
func printPhases(w io.Writer, rec *trace.Recorder) {
	for _, ev := range rec.Finished() {
		fmt.Fprintf(w, "  %-20s %8.3fms\n", ev.Name, float64(ev.Dur.Microseconds())/1000)
	}
}

// readInput читает строки, пока скобки не сбалансированы.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := replPrompt
		if b.Len() > 0 {
			prompt = replCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			if b.Len() > 0 && errors.Is(err, liner.ErrPromptAborted) {
				// Ctrl-C сбрасывает незаконченный ввод
				return "", true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete сообщает, что во вводе остались незакрытые скобки.
func incomplete(src string) bool {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("<repl>", []byte(src)))
	depth := 0
	for _, tok := range lexer.New(file, lexer.Options{}).Tokenize() {
		switch tok.Kind {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			depth--
		}
	}
	return depth > 0
}
