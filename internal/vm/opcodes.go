// Package vm implements a bytecode virtual machine for Brio.
package vm

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Constants and literals
	OP_CONST Opcode = iota // Push constant from pool (1-byte index)
	OP_NIL                 // Push nil
	OP_TRUE                // Push true
	OP_FALSE               // Push false

	// Stack manipulation
	OP_POP // Discard top of stack

	// Variables
	OP_GET_LOCAL     // Get local variable by slot
	OP_SET_LOCAL     // Set local variable by slot (value stays on stack)
	OP_GET_GLOBAL    // Get global variable by name constant
	OP_DEFINE_GLOBAL // Define global variable by name constant
	OP_SET_GLOBAL    // Set global variable by name constant (value stays on stack)

	// Comparison
	OP_EQ // ==
	OP_GT // >
	OP_LT // <

	// Arithmetic
	OP_ADD // + (numbers add; a string left operand concatenates)
	OP_SUB // -
	OP_MUL // *
	OP_DIV // /
	OP_MOD // %

	// Unary
	OP_NOT // !
	OP_NEG // Unary minus

	// Side effects
	OP_PRINT // Pop a value and write it to the output sink

	// Control flow
	OP_JUMP          // Jump forward (2-byte offset)
	OP_JUMP_IF_FALSE // Jump forward if top of stack is falsey (peeks, does not pop)
	OP_LOOP          // Jump backward (2-byte offset)

	// Functions
	OP_CALL   // Call value at stack[top-argc-1] (1-byte argc)
	OP_RETURN // Return from function
)

// OpcodeNames maps opcodes to their string names (for disassembly)
var OpcodeNames = map[Opcode]string{
	OP_CONST: "CONST",
	OP_NIL:   "NIL",
	OP_TRUE:  "TRUE",
	OP_FALSE: "FALSE",

	OP_POP: "POP",

	OP_GET_LOCAL:     "GET_LOCAL",
	OP_SET_LOCAL:     "SET_LOCAL",
	OP_GET_GLOBAL:    "GET_GLOBAL",
	OP_DEFINE_GLOBAL: "DEFINE_GLOBAL",
	OP_SET_GLOBAL:    "SET_GLOBAL",

	OP_EQ: "EQ",
	OP_GT: "GT",
	OP_LT: "LT",

	OP_ADD: "ADD",
	OP_SUB: "SUB",
	OP_MUL: "MUL",
	OP_DIV: "DIV",
	OP_MOD: "MOD",

	OP_NOT: "NOT",
	OP_NEG: "NEG",

	OP_PRINT: "PRINT",

	OP_JUMP:          "JUMP",
	OP_JUMP_IF_FALSE: "JUMP_IF_FALSE",
	OP_LOOP:          "LOOP",

	OP_CALL:   "CALL",
	OP_RETURN: "RETURN",
}
