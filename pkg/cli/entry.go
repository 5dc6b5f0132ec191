// Package cli implements the brio command line: running source files,
// piped input and the interactive prompt.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/briolang/brio/internal/config"
	"github.com/briolang/brio/internal/vm"
)

// Entry runs the brio command and returns the process exit code.
// One path argument executes that file; no arguments starts the REPL
// when stdin is a terminal, otherwise the piped input is interpreted
// whole.
func Entry(args []string) int {
	showDisasm := false
	var paths []string

	for _, arg := range args[1:] {
		switch arg {
		case "--help", "-help", "help":
			printUsage(args[0], os.Stdout)
			return config.ExitOK
		case "--disasm":
			showDisasm = true
		default:
			paths = append(paths, arg)
		}
	}

	if len(paths) > 1 {
		printUsage(args[0], os.Stderr)
		return config.ExitCompileError
	}

	cfg, err := config.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return config.ExitCompileError
	}

	if len(paths) == 1 {
		source, err := os.ReadFile(paths[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
			return config.ExitCompileError
		}
		return runSource(string(source), cfg, showDisasm)
	}

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return RunREPL(os.Stdin, os.Stdout, cfg)
	}

	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
		return config.ExitCompileError
	}
	return runSource(string(source), cfg, showDisasm)
}

// runSource interprets one program, or just disassembles it when
// --disasm was given.
func runSource(source string, cfg *config.Config, showDisasm bool) int {
	if showDisasm {
		fn, diags := vm.Compile(source, vm.NewStringTable())
		if len(diags) > 0 {
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d.Error())
			}
			return config.ExitCompileError
		}
		fmt.Print(vm.DisassembleFunction(fn))
		return config.ExitOK
	}

	machine := vm.NewWithConfig(cfg)
	machine.RegisterBuiltins()

	switch machine.Interpret(source) {
	case vm.ResultCompileError:
		return config.ExitCompileError
	case vm.ResultRuntimeError:
		return config.ExitRuntimeError
	}
	return config.ExitOK
}

func printUsage(name string, w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [options] [script%s]\n", name, config.SourceFileExtension)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "With no script, brio reads from stdin; an interactive prompt")
	fmt.Fprintln(w, "starts when stdin is a terminal (type 'exit' to leave).")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --disasm   print the compiled bytecode instead of running")
	fmt.Fprintln(w, "  --help     show this help")
}
