package vm

import (
	"strconv"

	"github.com/briolang/brio/internal/token"
)

// number parses a numeric literal
func (c *Compiler) number(canAssign bool) {
	f, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(NumberVal(f))
}

// str parses a string literal. The lexer already stripped the quotes.
func (c *Compiler) str(canAssign bool) {
	c.emitConstant(ObjVal(c.strings.Intern(c.previous.Lexeme)))
}

// literal parses nil, true and false
func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case token.NIL:
		c.emit(OP_NIL)
	case token.TRUE:
		c.emit(OP_TRUE)
	case token.FALSE:
		c.emit(OP_FALSE)
	}
}

// grouping parses a parenthesized expression
func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

// unary parses ! and unary -
func (c *Compiler) unary(canAssign bool) {
	opType := c.previous.Type

	c.parsePrecedence(PrecUnary)

	switch opType {
	case token.BANG:
		c.emit(OP_NOT)
	case token.MINUS:
		c.emit(OP_NEG)
	}
}

// binary parses an infix operator. The right operand binds one level
// tighter, making the operators left associative.
func (c *Compiler) binary(canAssign bool) {
	opType := c.previous.Type
	rule := getRule(opType)
	c.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.PLUS:
		c.emit(OP_ADD)
	case token.MINUS:
		c.emit(OP_SUB)
	case token.ASTERISK:
		c.emit(OP_MUL)
	case token.SLASH:
		c.emit(OP_DIV)
	case token.PERCENT:
		c.emit(OP_MOD)
	case token.EQ:
		c.emit(OP_EQ)
	case token.NOT_EQ:
		c.emitOps(OP_EQ, OP_NOT)
	case token.GT:
		c.emit(OP_GT)
	case token.GT_EQ:
		c.emitOps(OP_LT, OP_NOT)
	case token.LT:
		c.emit(OP_LT)
	case token.LT_EQ:
		c.emitOps(OP_GT, OP_NOT)
	}
}

// and short-circuits: if the left value is falsey it stays on the
// stack as the result and the right operand is skipped
func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(OP_JUMP_IF_FALSE)

	c.emit(OP_POP)
	c.parsePrecedence(PrecAnd)

	c.patchJump(endJump)
}

// or short-circuits: a truthy left value stays as the result
func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(OP_JUMP_IF_FALSE)
	endJump := c.emitJump(OP_JUMP)

	c.patchJump(elseJump)
	c.emit(OP_POP)

	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

// variable parses an identifier reference or assignment
func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// namedVariable resolves a name against the locals of the current
// function, falling back to a global. Functions do not capture
// enclosing locals, so there is no middle tier.
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp Opcode
	var arg byte

	if slot := c.resolveLocal(name.Lexeme); slot != -1 {
		getOp, setOp = OP_GET_LOCAL, OP_SET_LOCAL
		arg = byte(slot)
	} else {
		getOp, setOp = OP_GET_GLOBAL, OP_SET_GLOBAL
		arg = c.identifierConstant(name.Lexeme)
	}

	if canAssign && c.match(token.ASSIGN) {
		c.expression()
		c.emit(setOp)
		c.emitByte(arg)
	} else {
		c.emit(getOp)
		c.emitByte(arg)
	}
}

// call parses a call expression; the callee is already on the stack
func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emit(OP_CALL)
	c.emitByte(argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(count)
}
