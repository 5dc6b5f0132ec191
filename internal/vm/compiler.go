package vm

import (
	"github.com/briolang/brio/internal/config"
	"github.com/briolang/brio/internal/diagnostics"
	"github.com/briolang/brio/internal/lexer"
	"github.com/briolang/brio/internal/token"
)

// Local represents a local variable during compilation
type Local struct {
	Name  string
	Depth int // Scope depth where this local was declared; -1 until its initializer completes
}

// FunctionType distinguishes top-level code from functions
type FunctionType int

const (
	TYPE_SCRIPT FunctionType = iota
	TYPE_FUNCTION
)

// funcCompiler holds the compile state of one function body. Nested
// fun declarations push a new one; the enclosing chain restores the
// outer state when the body closes.
type funcCompiler struct {
	enclosing *funcCompiler
	function  *Function
	funcType  FunctionType

	locals     []Local
	localCount int
	scopeDepth int
}

// Compiler is a single-pass Pratt parser that consumes tokens and
// emits bytecode directly, with no intermediate AST.
type Compiler struct {
	lx       *lexer.Lexer
	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
	errors    []*diagnostics.Diagnostic

	fn      *funcCompiler
	strings *StringTable
}

// Precedence levels, low to high
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment              // =
	PrecOr                      // or
	PrecAnd                     // and
	PrecEquality                // == !=
	PrecComparison              // < > <= >=
	PrecTerm                    // + -
	PrecFactor                  // * / %
	PrecUnary                   // ! -
	PrecCall                    // ()
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules maps each token type to its prefix handler, infix handler and
// infix precedence. Token types absent from the map parse as nothing.
var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LPAREN:   {(*Compiler).grouping, (*Compiler).call, PrecCall},
		token.MINUS:    {(*Compiler).unary, (*Compiler).binary, PrecTerm},
		token.PLUS:     {nil, (*Compiler).binary, PrecTerm},
		token.SLASH:    {nil, (*Compiler).binary, PrecFactor},
		token.ASTERISK: {nil, (*Compiler).binary, PrecFactor},
		token.PERCENT:  {nil, (*Compiler).binary, PrecFactor},
		token.BANG:     {(*Compiler).unary, nil, PrecNone},
		token.NOT_EQ:   {nil, (*Compiler).binary, PrecEquality},
		token.EQ:       {nil, (*Compiler).binary, PrecEquality},
		token.GT:       {nil, (*Compiler).binary, PrecComparison},
		token.GT_EQ:    {nil, (*Compiler).binary, PrecComparison},
		token.LT:       {nil, (*Compiler).binary, PrecComparison},
		token.LT_EQ:    {nil, (*Compiler).binary, PrecComparison},
		token.IDENT:    {(*Compiler).variable, nil, PrecNone},
		token.STRING:   {(*Compiler).str, nil, PrecNone},
		token.NUMBER:   {(*Compiler).number, nil, PrecNone},
		token.AND:      {nil, (*Compiler).and, PrecAnd},
		token.OR:       {nil, (*Compiler).or, PrecOr},
		token.FALSE:    {(*Compiler).literal, nil, PrecNone},
		token.TRUE:     {(*Compiler).literal, nil, PrecNone},
		token.NIL:      {(*Compiler).literal, nil, PrecNone},
	}
}

func getRule(t token.Type) parseRule {
	return rules[t]
}

// newFuncCompiler creates the compile context for one function body.
// Slot 0 is reserved for the callee.
func newFuncCompiler(enclosing *funcCompiler, name string, funcType FunctionType) *funcCompiler {
	fc := &funcCompiler{
		enclosing: enclosing,
		function:  &Function{Chunk: NewChunk(), Name: name},
		funcType:  funcType,
		locals:    make([]Local, config.MaxLocals),
	}
	fc.locals[0] = Local{Name: "", Depth: 0}
	fc.localCount = 1
	return fc
}

// Compile compiles a source string to a top-level script function.
// Interned strings go through the given table so the VM can compare
// them by identity later. On any compile error the function is nil and
// the diagnostics describe every error found.
func Compile(source string, strings *StringTable) (*Function, []*diagnostics.Diagnostic) {
	c := &Compiler{
		lx:      lexer.New(source),
		strings: strings,
	}
	c.fn = newFuncCompiler(nil, "", TYPE_SCRIPT)

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}

	fn := c.endCompiler()
	if c.hadError {
		return nil, c.errors
	}
	return fn, nil
}

// parsePrecedence parses an expression at the given precedence level
// or higher. The prefix handler of the first token starts the
// expression; infix handlers extend it while their precedence holds.
func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.ASSIGN) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// endCompiler finishes the current function body and pops its compile
// context. Every function ends with an implicit nil return.
func (c *Compiler) endCompiler() *Function {
	c.emitReturn()
	fn := c.fn.function
	c.fn = c.fn.enclosing
	return fn
}

// Token plumbing

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lx.NextToken()
		if c.current.Type != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(t token.Type, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) check(t token.Type) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

// Error reporting

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

// errorAt records a diagnostic for the given token. While in panic
// mode further errors are suppressed until the parser synchronizes.
func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	var d *diagnostics.Diagnostic
	switch tok.Type {
	case token.EOF:
		d = diagnostics.NewAtEnd(tok.Line, message)
	case token.ILLEGAL:
		d = diagnostics.NewBare(tok.Line, message)
	default:
		d = diagnostics.New(tok.Line, tok.Lexeme, message)
	}
	c.errors = append(c.errors, d)
}

// synchronize discards tokens until a statement boundary so one error
// does not cascade into spurious follow-ups.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.Type != token.EOF {
		if c.previous.Type == token.SEMICOLON {
			return
		}
		switch c.current.Type {
		case token.CLASS, token.FUNCTION, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}
