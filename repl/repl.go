/*
File    : raven/repl/repl.go
Package : repl
*/

// Package repl implements Raven's interactive Read-Eval-Print Loop (spec
// section 6). It is a direct adaptation of the teacher's repl/repl.go:
// readline-backed line editing and history, fatih/color-coded output, a
// banner/version/prompt the caller configures, and per-line panic recovery
// so one bad line never kills the session. Where the teacher recreates an
// evaluator once and re-parses each line against it, Raven additionally
// resolves each line's piece (package resolver) before evaluating it,
// since Raven's evaluator consults a resolved address table rather than
// walking environments by name.
package repl

import (
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/mahrr/l-lang/eval"
	"github.com/mahrr/l-lang/object"
	"github.com/mahrr/l-lang/parser"
	"github.com/mahrr/l-lang/resolver"
	"github.com/mahrr/l-lang/std"
)

// Color definitions for REPL output, matching the teacher's palette:
// blue for separators, green for the banner, yellow for results, red for
// errors, cyan for informational text.
var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// REPL holds the configuration and session state of one interactive run.
type REPL struct {
	Banner  string
	Version string
	Author  string
	Line    string
	Prompt  string

	env *object.Environment
}

// New creates a REPL instance with its own persistent global environment
// (spec section 5: "the REPL reuses one resolver and one global
// environment for the whole session so that declarations persist" — Raven
// resolves each line with a fresh resolver.Resolve call, since every
// top-level reference is tagged Address{Global: true} regardless of which
// piece produced it, but the Environment backing those globals is this one
// instance, held for the session's lifetime).
func New(banner, version, author, line, prompt string) *REPL {
	env := object.NewGlobal()
	std.Install(env)
	return &REPL{Banner: banner, Version: version, Author: author, Line: line, Prompt: prompt, env: env}
}

// PrintBanner writes the startup banner to w.
func (r *REPL) PrintBanner(w io.Writer) {
	blueColor.Fprintf(w, "%s\n", r.Line)
	greenColor.Fprintf(w, "%s\n", r.Banner)
	blueColor.Fprintf(w, "%s\n", r.Line)
	yellowColor.Fprintf(w, "Raven %s | %s\n", r.Version, r.Author)
	blueColor.Fprintf(w, "%s\n", r.Line)
	cyanColor.Fprintln(w, "Type an expression and press enter.")
	cyanColor.Fprintln(w, "Ctrl-D or an empty line at EOF exits.")
	blueColor.Fprintf(w, "%s\n", r.Line)
}

// Start runs the read-eval-print loop until EOF or a readline error,
// reading lines through readline (which also draws the prompt) and
// writing the banner, results, and errors to out.
func (r *REPL) Start(out io.Writer) error {
	r.PrintBanner(out)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(out, "bye")
			return nil
		}
		if err != nil {
			return fmt.Errorf("repl: %w", err)
		}
		if line == "" {
			continue
		}
		r.evalLine(out, line)
	}
}

// evalLine runs one line of source through the full pipeline (lex, parse,
// resolve, evaluate), recovering from any panic escaping the evaluator so
// the session survives a bug in user code, and printing either the
// resulting value or a diagnostic, per spec section 6.
func (r *REPL) evalLine(out io.Writer, line string) {
	defer func() {
		if rec := recover(); rec != nil {
			redColor.Fprintf(out, "Error: %v\n", rec)
		}
	}()

	piece, errs := parser.ParseProgram(line, "<repl>")
	if len(errs) > 0 {
		for _, e := range errs {
			redColor.Fprintf(out, "%s\n", e)
		}
		return
	}

	table, err := resolver.Resolve(piece)
	if err != nil {
		redColor.Fprintf(out, "%s\n", err)
		return
	}

	ev := eval.New(table)
	v, err := ev.Run(piece, r.env)
	if err != nil {
		redColor.Fprintf(out, "Error: %s\n", err)
		return
	}
	if v != nil && v.Type() != object.VoidType {
		yellowColor.Fprintf(out, "=> %s\n", v.String())
	}
}
