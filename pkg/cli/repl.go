package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/briolang/brio/internal/config"
	"github.com/briolang/brio/internal/vm"
)

// RunREPL reads lines from in and interprets each one against a single
// VM, so globals defined on one line are visible on the next. The loop
// ends on EOF or the 'exit' sentinel. Compile and runtime errors are
// reported and the session continues.
func RunREPL(in io.Reader, out io.Writer, cfg *config.Config) int {
	machine := vm.NewWithConfig(cfg)
	machine.RegisterBuiltins()
	machine.SetOutput(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, cfg.REPL.Prompt)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "exit" {
			break
		}
		machine.Interpret(line)
	}

	fmt.Fprintln(out)
	return config.ExitOK
}
