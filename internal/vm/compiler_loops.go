package vm

import "github.com/briolang/brio/internal/token"

func (c *Compiler) whileStatement() {
	loopStart := c.currentChunk().Len()

	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emit(OP_POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emit(OP_POP)
}

// forStatement desugars for (init; cond; incr) body into while form.
// The increment runs after the body, so its code is emitted first and
// reached through a pair of jumps. The initializer scope keeps the
// loop variable local.
func (c *Compiler) forStatement() {
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after 'for'.")
	switch {
	case c.match(token.SEMICOLON):
		// No initializer.
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.currentChunk().Len()

	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")

		exitJump = c.emitJump(OP_JUMP_IF_FALSE)
		c.emit(OP_POP)
	}

	if !c.match(token.RPAREN) {
		bodyJump := c.emitJump(OP_JUMP)
		incrementStart := c.currentChunk().Len()

		c.expression()
		c.emit(OP_POP)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emit(OP_POP)
	}

	c.endScope()
}
