package vm

import "github.com/briolang/brio/internal/token"

// declaration parses one declaration or statement, synchronizing after
// a parse error so later statements still get checked
func (c *Compiler) declaration() {
	switch {
	case c.match(token.FUNCTION):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

// varDeclaration compiles `var name;` and `var name = expr;`. At
// global scope the value lands in the globals table; inside a scope it
// stays on the stack as a new local slot.
func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.ASSIGN) {
		c.expression()
	} else {
		c.emit(OP_NIL)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

// parseVariable consumes an identifier and declares it. The returned
// constant index is only meaningful at global scope.
func (c *Compiler) parseVariable(message string) byte {
	c.consume(token.IDENT, message)

	c.declareVariable()
	if c.fn.scopeDepth > 0 {
		return 0
	}

	return c.identifierConstant(c.previous.Lexeme)
}

func (c *Compiler) defineVariable(global byte) {
	if c.fn.scopeDepth > 0 {
		c.markInitialized()
		return
	}

	c.emit(OP_DEFINE_GLOBAL)
	c.emitByte(global)
}

// funDeclaration compiles a fun declaration. The name is marked
// initialized before the body so the function can call itself.
func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function()
	c.defineVariable(global)
}

// function compiles a parameter list and body in a fresh compile
// context, then stores the finished function in the enclosing chunk's
// constant pool.
func (c *Compiler) function() {
	c.fn = newFuncCompiler(c.fn, c.previous.Lexeme, TYPE_FUNCTION)
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			if c.fn.function.Arity == 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			c.fn.function.Arity++
			param := c.parseVariable("Expect parameter name.")
			c.defineVariable(param)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")

	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	fn := c.endCompiler()
	c.emitConstant(ObjVal(fn))
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emit(OP_PRINT)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emit(OP_POP)
}

func (c *Compiler) returnStatement() {
	if c.fn.funcType == TYPE_SCRIPT {
		c.error("Can't return from top-level code.")
	}

	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}

	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emit(OP_RETURN)
}

// ifStatement compiles the condition, a jump over the then branch and
// a jump over the else branch. The condition value is popped on both
// paths.
func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emit(OP_POP)
	c.statement()

	elseJump := c.emitJump(OP_JUMP)

	c.patchJump(thenJump)
	c.emit(OP_POP)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}
