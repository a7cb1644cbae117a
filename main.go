/*
File    : raven/main.go
Package : main
*/

// Raven's CLI driver (spec section 6): no arguments starts the REPL; one
// or more file arguments interprets each file in order; exit code 0 on
// success, 1 on any pipeline failure. Grounded on the teacher's
// main/main.go (the flag-less `os.Args` switch, the colored diagnostics,
// the panic-recovery wrapper around file execution) adapted to Raven's
// pipeline: lex -> parse -> resolve -> evaluate, with an optional `--vm`
// flag that instead compiles to bytecode and runs it on package vm,
// exercising the second of the spec's two coexisting execution
// strategies from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/mahrr/l-lang/compiler"
	"github.com/mahrr/l-lang/eval"
	"github.com/mahrr/l-lang/object"
	"github.com/mahrr/l-lang/parser"
	"github.com/mahrr/l-lang/repl"
	"github.com/mahrr/l-lang/resolver"
	"github.com/mahrr/l-lang/std"
	"github.com/mahrr/l-lang/vm"
)

const (
	version = "v0.1.0"
	author  = "the Raven project"
	line    = "----------------------------------------------------------------"
	prompt  = "raven >> "
)

var banner = `
  ____
 |  _ \ __ ___   _____ _ __
 | |_) / _` + "`" + ` \ \ / / _ \ '_ \
 |  _ < (_| |\ V /  __/ | | |
 |_| \_\__,_| \_/ \___|_| |_|
`

var (
	redColor  = color.New(color.FgRed)
	cyanColor = color.New(color.FgCyan)
)

func main() {
	cfg, err := loadConfig(".raven.yml")
	if err != nil {
		redColor.Fprintf(os.Stderr, "[CONFIG ERROR] %v\n", err)
		os.Exit(1)
	}

	args := os.Args[1:]
	useVM := false
	var files []string
	for _, a := range args {
		switch a {
		case "--help", "-h":
			showHelp()
			os.Exit(0)
		case "--version", "-v":
			showVersion()
			os.Exit(0)
		case "--vm":
			useVM = true
		default:
			files = append(files, a)
		}
	}

	for _, path := range cfg.Preload {
		if !runFile(path, useVM) {
			os.Exit(1)
		}
	}

	if len(files) == 0 {
		startREPL(cfg)
		return
	}

	ok := true
	for _, path := range files {
		if !runFile(path, useVM) {
			ok = false
		}
	}
	if !ok {
		os.Exit(1)
	}
}

func startREPL(cfg *Config) {
	p, b := prompt, banner
	if cfg.Prompt != "" {
		p = cfg.Prompt
	}
	if cfg.Banner != "" {
		b = cfg.Banner
	}
	r := repl.New(b, version, author, line, p)
	if err := r.Start(os.Stdout); err != nil {
		redColor.Fprintf(os.Stderr, "[REPL ERROR] %v\n", err)
		os.Exit(1)
	}
}

// runFile interprets one source file end-to-end, returning false (and
// printing a diagnostic) on any pipeline failure, matching spec section 6's
// "Exit code 1 on any pipeline failure" without itself calling os.Exit so
// callers can run multiple files and report a combined status.
func runFile(path string, useVM bool) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			redColor.Fprintf(os.Stderr, "[RUNTIME ERROR] %v\n", rec)
			ok = false
		}
	}()

	src, err := os.ReadFile(path)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] could not read %q: %v\n", path, err)
		return false
	}

	piece, errs := parser.ParseProgram(string(src), path)
	if len(errs) > 0 {
		for _, e := range errs {
			redColor.Fprintf(os.Stderr, "%s\n", e)
		}
		return false
	}

	table, err := resolver.Resolve(piece)
	if err != nil {
		redColor.Fprintf(os.Stderr, "%s\n", err)
		return false
	}

	if useVM {
		c := compiler.New(table)
		chunk, err := c.CompileProgram(piece)
		if err != nil {
			redColor.Fprintf(os.Stderr, "Error: %s\n", err)
			return false
		}
		m := vm.New()
		for name, v := range std.Builtins() {
			m.DefineGlobal(name, v)
		}
		if _, err := m.Run(chunk); err != nil {
			redColor.Fprintf(os.Stderr, "Error: %s\n", err)
			return false
		}
		return true
	}

	env := object.NewGlobal()
	std.Install(env)
	ev := eval.New(table)
	if _, err := ev.Run(piece, env); err != nil {
		redColor.Fprintf(os.Stderr, "Error: %s\n", err)
		return false
	}
	return true
}

func showHelp() {
	cyanColor.Println("Raven - an expression-oriented scripting language")
	cyanColor.Println()
	cyanColor.Println("USAGE:")
	fmt.Println("  raven                 start the interactive REPL")
	fmt.Println("  raven <file> ...      interpret one or more files in order")
	fmt.Println("  raven --vm <file>     interpret via the bytecode compiler + VM")
	fmt.Println("  raven --help          show this help message")
	fmt.Println("  raven --version       show version information")
}

func showVersion() {
	cyanColor.Printf("Raven %s\n", version)
}
