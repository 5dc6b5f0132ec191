package vm

import (
	"bytes"
	"strings"
	"testing"
)

// runVM compiles and runs source on a fresh VM, failing the test on
// any error. Returns the VM and everything the program printed.
func runVM(t *testing.T, source string) (*VM, string) {
	t.Helper()

	machine := New()
	machine.RegisterBuiltins()

	var out, errOut bytes.Buffer
	machine.SetOutput(&out)
	machine.SetErrorOutput(&errOut)

	if result := machine.Interpret(source); result != ResultOK {
		t.Fatalf("interpret failed (%d): %s", result, errOut.String())
	}
	return machine, out.String()
}

func testPrintedNumber(t *testing.T, machine *VM, expected float64) {
	t.Helper()
	value, ok := machine.LastPrinted()
	if !ok {
		t.Fatal("nothing was printed")
	}
	if !value.IsNumber() {
		t.Fatalf("printed value is not a number. got=%s", value.Inspect())
	}
	if value.AsNumber() != expected {
		t.Errorf("printed value has wrong number. got=%v, want=%v", value.AsNumber(), expected)
	}
}

func testPrintedBool(t *testing.T, machine *VM, expected bool) {
	t.Helper()
	value, ok := machine.LastPrinted()
	if !ok {
		t.Fatal("nothing was printed")
	}
	if !value.IsBool() {
		t.Fatalf("printed value is not a bool. got=%s", value.Inspect())
	}
	if value.AsBool() != expected {
		t.Errorf("printed value has wrong bool. got=%t, want=%t", value.AsBool(), expected)
	}
}

func TestPrintHello(t *testing.T) {
	_, out := runVM(t, `print "Hello, World!";`)
	if out != "Hello, World!\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"print 6 + 2;", 8},
		{"print 6 - 2;", 4},
		{"print 6 * 2;", 12},
		{"print 6 / 2;", 3},
		{"print 7 / 2;", 3.5},
		{"print 6 % 2;", 0},
		{"print 5 % 2;", 1},
		{"print 5 % 3;", 2},
		{"print -7 % 3;", -1},
		{"print 1 + 2 * 3;", 7},
		{"print (1 + 2) * 3;", 9},
		{"print -4 + 2;", -2},
		{"print -(4 + 2);", -6},
		{"print 2 * 3 + 4 / 2;", 8},
		{"print 10 - 2 - 3;", 5},
	}

	for _, tt := range tests {
		machine, _ := runVM(t, tt.input)
		testPrintedNumber(t, machine, tt.expected)
	}
}

func TestNumberFormatting(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"print 3;", "3\n"},
		{"print 3.0;", "3\n"},
		{"print 1.5;", "1.5\n"},
		{"print 2 / 4;", "0.5\n"},
		{"print 0 - 0.25;", "-0.25\n"},
	}

	for _, tt := range tests {
		_, out := runVM(t, tt.input)
		if out != tt.expected {
			t.Errorf("%s: wrong output. got=%q, want=%q", tt.input, out, tt.expected)
		}
	}
}

func TestStringConcatenation(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`print "foo" + "bar";`, "foobar\n"},
		{`print "Number: " + 3;`, "Number: 3\n"},
		{`print "ok: " + true;`, "ok: true\n"},
		{`print "value: " + nil;`, "value: nil\n"},
		{`print "pi is " + 3.14;`, "pi is 3.14\n"},
	}

	for _, tt := range tests {
		_, out := runVM(t, tt.input)
		if out != tt.expected {
			t.Errorf("%s: wrong output. got=%q, want=%q", tt.input, out, tt.expected)
		}
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"print 1 < 2;", true},
		{"print 2 < 1;", false},
		{"print 2 > 1;", true},
		{"print 1 >= 1;", true},
		{"print 1 <= 0;", false},
		{"print 1 == 1;", true},
		{"print 1 != 1;", false},
		{`print "a" == "a";`, true},
		{`print "a" == "b";`, false},
		{"print nil == nil;", true},
		{"print true == true;", true},
		{"print true == false;", false},
		{`print 1 == "1";`, false},
		{"print nil == false;", false},
		{`print "" == false;`, false},
	}

	for _, tt := range tests {
		machine, _ := runVM(t, tt.input)
		testPrintedBool(t, machine, tt.expected)
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"print !nil;", true},
		{"print !false;", true},
		{"print !true;", false},
		{"print !0;", false},
		{`print !"";`, false},
		{"print !!nil;", false},
	}

	for _, tt := range tests {
		machine, _ := runVM(t, tt.input)
		testPrintedBool(t, machine, tt.expected)
	}
}

func TestGlobalVariables(t *testing.T) {
	machine, out := runVM(t, `
var a = 1;
var b = a + 2;
print b;
a = 10;
print a + b;
var c;
print c;
`)
	if out != "3\n13\nnil\n" {
		t.Errorf("wrong output: %q", out)
	}
	_ = machine
}

func TestAssignmentIsAnExpression(t *testing.T) {
	_, out := runVM(t, `var a = 1; print a = 2; print a;`)
	if out != "2\n2\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestShadowing(t *testing.T) {
	_, out := runVM(t, `var a = 3; { var b = 4; var a = 5; print a; print b; } print a;`)
	if out != "5\n4\n3\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestNestedScopes(t *testing.T) {
	_, out := runVM(t, `
{
	var a = 1;
	{
		var a = 2;
		{
			var a = 3;
			print a;
		}
		print a;
	}
	print a;
}
`)
	if out != "3\n2\n1\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestLocalsReadOuterScope(t *testing.T) {
	_, out := runVM(t, `
{
	var a = 10;
	{
		var b = a + 5;
		print b;
		a = a + 1;
	}
	print a;
}
`)
	if out != "15\n11\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestIfElse(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`if (true) print "then"; else print "else";`, "then\n"},
		{`if (false) print "then"; else print "else";`, "else\n"},
		{`if (nil) print "then"; else print "else";`, "else\n"},
		{`if (0) print "then";`, "then\n"},
		{`if (false) print "then";`, ""},
	}

	for _, tt := range tests {
		_, out := runVM(t, tt.input)
		if out != tt.expected {
			t.Errorf("%s: wrong output. got=%q, want=%q", tt.input, out, tt.expected)
		}
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"print 1 and 2;", "2\n"},
		{"print nil and 2;", "nil\n"},
		{"print false and 2;", "false\n"},
		{"print 1 or 2;", "1\n"},
		{"print nil or 2;", "2\n"},
		{`print false or "fallback";`, "fallback\n"},
		{"print true and false or 3;", "3\n"},
	}

	for _, tt := range tests {
		_, out := runVM(t, tt.input)
		if out != tt.expected {
			t.Errorf("%s: wrong output. got=%q, want=%q", tt.input, out, tt.expected)
		}
	}
}

func TestShortCircuitSkipsSideEffects(t *testing.T) {
	_, out := runVM(t, `
var called = false;
fun touch() { called = true; return true; }
false and touch();
print called;
true or touch();
print called;
`)
	if out != "false\nfalse\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestWhileLoop(t *testing.T) {
	_, out := runVM(t, `var a = 0; while (a < 5) { print a; a = a + 1; }`)
	if out != "0\n1\n2\n3\n4\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestForLoop(t *testing.T) {
	_, out := runVM(t, `for (var i = 0; i < 3; i = i + 1) { print i; }`)
	if out != "0\n1\n2\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestForLoopClauseVariants(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"no initializer",
			`var i = 0; for (; i < 2; i = i + 1) print i;`,
			"0\n1\n",
		},
		{
			"no increment",
			`for (var i = 0; i < 2;) { print i; i = i + 1; }`,
			"0\n1\n",
		},
	}

	for _, tt := range tests {
		_, out := runVM(t, tt.input)
		if out != tt.expected {
			t.Errorf("%s: wrong output. got=%q, want=%q", tt.name, out, tt.expected)
		}
	}
}

func TestInfiniteForExitsViaReturn(t *testing.T) {
	_, out := runVM(t, `
fun firstOver(limit) {
	for (var i = 0;; i = i + 1) {
		if (i > limit) return i;
	}
}
print firstOver(4);
`)
	if out != "5\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestSimpleFunction(t *testing.T) {
	_, out := runVM(t, `
fun add(a, b) { return a + b; }
print add(1, 2);
print add(add(1, 2), 3);
`)
	if out != "3\n6\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestFunctionWithLocals(t *testing.T) {
	_, out := runVM(t, `
fun area(w, h) {
	var result = w * h;
	return result;
}
print area(3, 4);
`)
	if out != "12\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestRecursiveFunction(t *testing.T) {
	machine, _ := runVM(t, `fun fib(n) { if (n < 2) return n; return fib(n-1) + fib(n-2); } print fib(10);`)
	testPrintedNumber(t, machine, 55)
}

func TestImplicitNilReturn(t *testing.T) {
	_, out := runVM(t, `fun f() {} print f();`)
	if out != "nil\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestBareReturn(t *testing.T) {
	_, out := runVM(t, `
fun f(x) {
	if (x < 0) return;
	print x;
}
print f(-1);
f(3);
`)
	if out != "nil\n3\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestFunctionDisplayForms(t *testing.T) {
	_, out := runVM(t, `
fun greet() {}
print greet;
print clock;
`)
	if out != "<fn greet>\n<native fn>\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestNestedFunctionDeclarations(t *testing.T) {
	_, out := runVM(t, `
fun outer() {
	fun inner(x) { return x * 2; }
	return inner(21);
}
print outer();
`)
	if out != "42\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestFunctionsSeeGlobalsNotEnclosingLocals(t *testing.T) {
	// Functions resolve names against their own scope and globals
	// only; there is no closure capture.
	_, out := runVM(t, `
var g = "global";
fun show() { print g; }
show();
g = "updated";
show();
`)
	if out != "global\nupdated\n" {
		t.Errorf("wrong output: %q", out)
	}

	// A nested function does not see its enclosing function's locals:
	// the name falls through to the globals table.
	errOut := runExpectRuntimeError(t, `
fun outer() {
	var hidden = 1;
	fun inner() { return hidden; }
	return inner();
}
outer();
`)
	if !strings.Contains(errOut, "Undefined variable 'hidden'.") {
		t.Errorf("enclosing local should not be visible: %q", errOut)
	}
}

func TestMutualRecursion(t *testing.T) {
	_, out := runVM(t, `
fun isEven(n) { if (n == 0) return true; return isOdd(n - 1); }
fun isOdd(n) { if (n == 0) return false; return isEven(n - 1); }
print isEven(10);
print isOdd(7);
`)
	if out != "true\ntrue\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestClockNative(t *testing.T) {
	machine, _ := runVM(t, `print clock();`)
	value, ok := machine.LastPrinted()
	if !ok || !value.IsNumber() {
		t.Fatalf("clock() did not print a number")
	}
	if value.AsNumber() <= 0 {
		t.Errorf("clock() returned %v, want a positive epoch time", value.AsNumber())
	}
}

func TestClockMeasuresElapsedTime(t *testing.T) {
	_, out := runVM(t, `
var start = clock();
var sum = 0;
for (var i = 0; i < 1000; i = i + 1) sum = sum + i;
print clock() >= start;
print sum;
`)
	if out != "true\n499500\n" {
		t.Errorf("wrong output: %q", out)
	}
}

func TestDefineNative(t *testing.T) {
	machine := New()
	machine.DefineNative("double", 1, func(args []Value) (Value, error) {
		return NumberVal(args[0].AsNumber() * 2), nil
	})

	var out bytes.Buffer
	machine.SetOutput(&out)
	if result := machine.Interpret(`print double(21);`); result != ResultOK {
		t.Fatalf("interpret failed: %d", result)
	}
	if out.String() != "42\n" {
		t.Errorf("wrong output: %q", out.String())
	}
}

func TestGlobalsPersistAcrossInterpretCalls(t *testing.T) {
	machine := New()
	machine.RegisterBuiltins()

	var out bytes.Buffer
	machine.SetOutput(&out)

	if result := machine.Interpret(`var counter = 1;`); result != ResultOK {
		t.Fatalf("first interpret failed: %d", result)
	}
	if result := machine.Interpret(`counter = counter + 1; print counter;`); result != ResultOK {
		t.Fatalf("second interpret failed: %d", result)
	}
	if out.String() != "2\n" {
		t.Errorf("wrong output: %q", out.String())
	}
}

func TestStackIsEmptyAfterRun(t *testing.T) {
	sources := []string{
		`print 1 + 2;`,
		`var a = 1; { var b = 2; print a + b; }`,
		`fun f(x) { return x; } f(1); f(2);`,
		`for (var i = 0; i < 3; i = i + 1) { var inner = i; }`,
		`if (1 < 2) { var x = "y"; } else { var z = "w"; }`,
	}

	for _, source := range sources {
		machine, _ := runVM(t, source)
		if machine.sp != 0 {
			t.Errorf("%s: stack not empty after run, sp=%d", source, machine.sp)
		}
		if machine.frameCount != 0 {
			t.Errorf("%s: frames not empty after run, frameCount=%d", source, machine.frameCount)
		}
	}
}

func TestStringInterning(t *testing.T) {
	machine, _ := runVM(t, `var a = "hi"; var b = "hi";`)

	a := machine.globals["a"].Obj
	b := machine.globals["b"].Obj
	if a != b {
		t.Error("equal string literals should share one interned object")
	}

	machine, _ = runVM(t, `var a = "he" + "llo"; var b = "hello";`)
	if machine.globals["a"].Obj != machine.globals["b"].Obj {
		t.Error("concatenation results should intern to the same object")
	}
}

func TestFibonacciLoop(t *testing.T) {
	machine, _ := runVM(t, `
var a = 0;
var b = 1;
for (var i = 0; i < 20; i = i + 1) {
	var next = a + b;
	a = b;
	b = next;
}
print a;
`)
	testPrintedNumber(t, machine, 6765)
}

func TestDeepButBoundedRecursion(t *testing.T) {
	// 40 frames of depth fits inside the default 64-frame limit.
	machine, _ := runVM(t, `
fun countdown(n) { if (n == 0) return 0; return countdown(n - 1); }
print countdown(39);
`)
	testPrintedNumber(t, machine, 0)
}

func TestTraceModeStillComputes(t *testing.T) {
	machine := New()
	machine.SetTrace(true)

	var out, errOut bytes.Buffer
	machine.SetOutput(&out)
	machine.SetErrorOutput(&errOut)

	if result := machine.Interpret(`print 1 + 2;`); result != ResultOK {
		t.Fatalf("interpret failed: %s", errOut.String())
	}
	if out.String() != "3\n" {
		t.Errorf("wrong output: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "ADD") {
		t.Errorf("trace output missing disassembly: %q", errOut.String())
	}
}
