package vm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/briolang/brio/internal/config"
)

var errStackOverflow = errors.New("Stack overflow.")

// InterpretResult classifies the outcome of one Interpret call
type InterpretResult int

const (
	ResultOK InterpretResult = iota
	ResultCompileError
	ResultRuntimeError
)

// CallFrame represents a single ongoing function call
type CallFrame struct {
	function *Function // The function being executed
	ip       int       // Instruction pointer within this frame's chunk
	base     int       // Base pointer: where this frame's slots start in the stack
}

// VM is the virtual machine that executes bytecode. Its globals and
// interned strings persist across Interpret calls, so a REPL session
// keeps its definitions.
type VM struct {
	stack []Value
	sp    int // Stack pointer (points to next free slot)

	frames     []CallFrame
	frameCount int

	globals map[string]Value
	strings *StringTable

	// Output writers: program output and diagnostics
	out    io.Writer
	errOut io.Writer

	// Per-instruction stack/disassembly tracing
	trace bool

	// Most recent value printed by OP_PRINT
	lastPrinted Value
	hasPrinted  bool
}

// New creates a VM with the default limits
func New() *VM {
	return NewWithConfig(config.Default())
}

// NewWithConfig creates a VM sized by the given configuration
func NewWithConfig(cfg *config.Config) *VM {
	maxFrames := cfg.VM.MaxFrames
	if maxFrames <= 0 {
		maxFrames = config.DefaultMaxFrames
	}
	return &VM{
		stack:   make([]Value, maxFrames*config.StackSlotsPerFrame),
		frames:  make([]CallFrame, maxFrames),
		globals: make(map[string]Value),
		strings: NewStringTable(),
		out:     os.Stdout,
		errOut:  os.Stderr,
		trace:   cfg.VM.Trace,
	}
}

// SetOutput sets the writer print statements go to
func (vm *VM) SetOutput(w io.Writer) {
	vm.out = w
}

// SetErrorOutput sets the writer diagnostics and traces go to
func (vm *VM) SetErrorOutput(w io.Writer) {
	vm.errOut = w
}

// SetTrace toggles per-instruction execution tracing
func (vm *VM) SetTrace(on bool) {
	vm.trace = on
}

// DefineNative registers a host function under the given global name.
// A negative arity marks the native as variadic.
func (vm *VM) DefineNative(name string, arity int, fn NativeFn) {
	vm.globals[name] = ObjVal(&Native{Name: name, Arity: arity, Fn: fn})
}

// LastPrinted returns the most recent value written by a print
// statement, if any.
func (vm *VM) LastPrinted() (Value, bool) {
	return vm.lastPrinted, vm.hasPrinted
}

// Interpret compiles and runs a source string. Compile errors are
// reported without executing anything; runtime errors unwind with a
// stack trace and reset the VM for the next call.
func (vm *VM) Interpret(source string) InterpretResult {
	fn, diags := Compile(source, vm.strings)
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(vm.errOut, d.Error())
		}
		return ResultCompileError
	}

	vm.push(ObjVal(fn))
	if err := vm.call(fn, 0); err != nil {
		vm.reportRuntimeError(err)
		return ResultRuntimeError
	}

	if err := vm.run(); err != nil {
		vm.reportRuntimeError(err)
		return ResultRuntimeError
	}
	return ResultOK
}

// runtimeError builds the error carried up the dispatch loop
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// reportRuntimeError prints the message and a stack trace, innermost
// frame first, then resets the stack so the session can continue.
func (vm *VM) reportRuntimeError(err error) {
	fmt.Fprintln(vm.errOut, err.Error())

	for i := vm.frameCount - 1; i >= 0; i-- {
		frame := &vm.frames[i]
		fn := frame.function
		line := fn.Chunk.Lines[frame.ip-1]
		if fn.Name == "" {
			fmt.Fprintf(vm.errOut, "[line %d] in script\n", line)
		} else {
			fmt.Fprintf(vm.errOut, "[line %d] in %s()\n", line, fn.Name)
		}
	}

	vm.resetStack()
}

func (vm *VM) resetStack() {
	vm.sp = 0
	vm.frameCount = 0
}

// Stack primitives. push panics with errStackOverflow when the fixed
// stack is exhausted; run recovers it into a runtime error.

func (vm *VM) push(v Value) {
	if vm.sp >= len(vm.stack) {
		panic(errStackOverflow)
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.sp-1-distance]
}
