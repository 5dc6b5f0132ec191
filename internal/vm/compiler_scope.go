package vm

import "github.com/briolang/brio/internal/config"

// beginScope starts a new lexical scope
func (c *Compiler) beginScope() {
	c.fn.scopeDepth++
}

// endScope ends the current scope and pops its locals off the runtime
// stack
func (c *Compiler) endScope() {
	fc := c.fn
	fc.scopeDepth--

	for fc.localCount > 0 && fc.locals[fc.localCount-1].Depth > fc.scopeDepth {
		c.emit(OP_POP)
		fc.localCount--
	}
}

// addLocal reserves the next stack slot for a local variable. The
// local stays marked undefined (depth -1) until its initializer
// completes.
func (c *Compiler) addLocal(name string) {
	fc := c.fn
	if fc.localCount >= config.MaxLocals {
		c.error("Too many local variables in function.")
		return
	}
	fc.locals[fc.localCount] = Local{Name: name, Depth: -1}
	fc.localCount++
}

// declareVariable records a local declaration. Globals are late bound
// and need no declaration.
func (c *Compiler) declareVariable() {
	fc := c.fn
	if fc.scopeDepth == 0 {
		return
	}

	name := c.previous.Lexeme
	for i := fc.localCount - 1; i >= 0; i-- {
		local := &fc.locals[i]
		if local.Depth != -1 && local.Depth < fc.scopeDepth {
			break
		}
		if local.Name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}

	c.addLocal(name)
}

// markInitialized flips the newest local from declared to defined
func (c *Compiler) markInitialized() {
	fc := c.fn
	if fc.scopeDepth == 0 {
		return
	}
	fc.locals[fc.localCount-1].Depth = fc.scopeDepth
}

// resolveLocal looks up a local variable by name, innermost first.
// Returns the stack slot, or -1 when the name must be a global.
func (c *Compiler) resolveLocal(name string) int {
	fc := c.fn
	for i := fc.localCount - 1; i >= 0; i-- {
		local := &fc.locals[i]
		if local.Name == name {
			if local.Depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// identifierConstant interns the name and stores it in the constant
// pool for the global-variable opcodes.
func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(ObjVal(c.strings.Intern(name)))
}

// Emit helpers. Every byte is annotated with the line of the token
// that produced it.

func (c *Compiler) currentChunk() *Chunk {
	return c.fn.function.Chunk
}

func (c *Compiler) emit(op Opcode) {
	c.currentChunk().WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitByte(b byte) {
	c.currentChunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitOps(op1, op2 Opcode) {
	c.emit(op1)
	c.emit(op2)
}

func (c *Compiler) emitReturn() {
	c.emit(OP_NIL)
	c.emit(OP_RETURN)
}

func (c *Compiler) makeConstant(value Value) byte {
	idx := c.currentChunk().AddConstant(value)
	if idx >= config.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(value Value) {
	c.emit(OP_CONST)
	c.emitByte(c.makeConstant(value))
}

// emitJump writes a jump with a placeholder offset and returns the
// offset's position for later patching
func (c *Compiler) emitJump(op Opcode) int {
	c.emit(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return c.currentChunk().Len() - 2
}

// patchJump writes the distance from the end of the operand to the
// current position into a previously emitted jump
func (c *Compiler) patchJump(offset int) {
	jump := c.currentChunk().Len() - offset - 2

	if jump > config.MaxJump {
		c.error("Too much code to jump over.")
	}

	c.currentChunk().Code[offset] = byte(jump >> 8)
	c.currentChunk().Code[offset+1] = byte(jump)
}

// emitLoop writes a backward jump to loopStart
func (c *Compiler) emitLoop(loopStart int) {
	c.emit(OP_LOOP)

	offset := c.currentChunk().Len() - loopStart + 2
	if offset > config.MaxJump {
		c.error("Loop body too large.")
	}

	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}
