package parser_test

import (
	"testing"

	"github.com/dslang/dslang/pkg/compiler/ast"
	"github.com/dslang/dslang/pkg/compiler/lexer"
	"github.com/dslang/dslang/pkg/compiler/parser"
)

func parseScope(t *testing.T, code string) []ast.Stmt {
	t.Helper()
	tokens, err := lexer.New(code).TokenizeAll()
	if err != nil {
		t.Fatalf("lexing %q failed: %v", code, err)
	}
	body, err := parser.New(tokens).ParseScope()
	if err != nil {
		t.Fatalf("parsing %q failed: %v", code, err)
	}
	return body
}

func parseBlock(t *testing.T, inner string) []ast.Stmt {
	t.Helper()
	return parseScope(t, "{"+inner+"}")
}

func parseBlockErr(t *testing.T, inner string) error {
	t.Helper()
	tokens, err := lexer.New("{" + inner + "}").TokenizeAll()
	if err != nil {
		t.Fatalf("lexing %q failed: %v", inner, err)
	}
	_, err = parser.New(tokens).ParseScope()
	return err
}

func parseProgram(t *testing.T, code string) []ast.Stmt {
	t.Helper()
	tokens, err := lexer.New(code).TokenizeAll()
	if err != nil {
		t.Fatalf("lexing %q failed: %v", code, err)
	}
	program, err := parser.New(tokens).ParseProgram()
	if err != nil {
		t.Fatalf("parsing %q failed: %v", code, err)
	}
	return program
}

func TestIntDeclAssign(t *testing.T) {
	stmts := parseBlock(t, "int x = 123;")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}

	decl, ok := stmts[0].(*ast.IntDeclAssign)
	if !ok {
		t.Fatalf("statement is %T, want *ast.IntDeclAssign", stmts[0])
	}
	if decl.Name != "x" {
		t.Errorf("name = %q, want %q", decl.Name, "x")
	}
	lit, ok := decl.Value.(*ast.IntLit)
	if !ok || lit.Value != 123 {
		t.Errorf("value = %v, want IntLit 123", decl.Value)
	}
	if got := stmts[0].String(); got != "int x = 123;" {
		t.Errorf("String() = %q, want %q", got, "int x = 123;")
	}
}

func TestPrecedenceMulOverAdd(t *testing.T) {
	stmts := parseBlock(t, "print 1 + 2 * 3;")
	pr := stmts[0].(*ast.Print)

	add, ok := pr.Value.(*ast.Binary)
	if !ok || add.Op != ast.BinAdd {
		t.Fatalf("root = %v, want + node", pr.Value)
	}
	mul, ok := add.Right.(*ast.Binary)
	if !ok || mul.Op != ast.BinMul {
		t.Fatalf("right child = %v, want * node", add.Right)
	}
	if got := pr.String(); got != "print 1 + 2 * 3;" {
		t.Errorf("String() = %q", got)
	}
}

func TestLeftAssociativeMinus(t *testing.T) {
	stmts := parseBlock(t, "print 10 - 3 - 2;")
	pr := stmts[0].(*ast.Print)

	outer, ok := pr.Value.(*ast.Binary)
	if !ok || outer.Op != ast.BinSub {
		t.Fatalf("root = %v, want - node", pr.Value)
	}
	if lit, ok := outer.Right.(*ast.IntLit); !ok || lit.Value != 2 {
		t.Errorf("outer right = %v, want 2", outer.Right)
	}
	inner, ok := outer.Left.(*ast.Binary)
	if !ok || inner.Op != ast.BinSub {
		t.Fatalf("outer left = %v, want - node", outer.Left)
	}
	if lit, ok := inner.Left.(*ast.IntLit); !ok || lit.Value != 10 {
		t.Errorf("inner left = %v, want 10", inner.Left)
	}
	if lit, ok := inner.Right.(*ast.IntLit); !ok || lit.Value != 3 {
		t.Errorf("inner right = %v, want 3", inner.Right)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	stmts := parseBlock(t, "print (1 + 2) * 3;")
	pr := stmts[0].(*ast.Print)

	mul, ok := pr.Value.(*ast.Binary)
	if !ok || mul.Op != ast.BinMul {
		t.Fatalf("root = %v, want * node", pr.Value)
	}
	add, ok := mul.Left.(*ast.Binary)
	if !ok || add.Op != ast.BinAdd {
		t.Fatalf("left child = %v, want + node", mul.Left)
	}
	if got := pr.String(); got != "print (1 + 2) * 3;" {
		t.Errorf("String() = %q", got)
	}
}

func TestUnaryBindsTighterThanInfix(t *testing.T) {
	stmts := parseBlock(t, "print -(1 + 2) * 3;")
	pr := stmts[0].(*ast.Print)

	mul, ok := pr.Value.(*ast.Binary)
	if !ok || mul.Op != ast.BinMul {
		t.Fatalf("root = %v, want * node", pr.Value)
	}
	neg, ok := mul.Left.(*ast.Unary)
	if !ok || neg.Op != ast.UnaryNeg {
		t.Fatalf("left child = %v, want unary - node", mul.Left)
	}
	if _, ok := neg.Operand.(*ast.Binary); !ok {
		t.Errorf("unary operand = %v, want + node", neg.Operand)
	}
}

func TestTrueFalseAreIntLiterals(t *testing.T) {
	stmts := parseBlock(t, "int a = true; int b = false;")
	a := stmts[0].(*ast.IntDeclAssign)
	b := stmts[1].(*ast.IntDeclAssign)

	if lit, ok := a.Value.(*ast.IntLit); !ok || lit.Value != 1 {
		t.Errorf("true = %v, want IntLit 1", a.Value)
	}
	if lit, ok := b.Value.(*ast.IntLit); !ok || lit.Value != 0 {
		t.Errorf("false = %v, want IntLit 0", b.Value)
	}
}

func TestCallExpressionAndArgs(t *testing.T) {
	stmts := parseBlock(t, "print foo(1, 2 + 3);")
	pr := stmts[0].(*ast.Print)

	call, ok := pr.Value.(*ast.Call)
	if !ok {
		t.Fatalf("root = %v, want call node", pr.Value)
	}
	callee, ok := call.Callee.(*ast.Ident)
	if !ok || callee.Name != "foo" {
		t.Errorf("callee = %v, want foo", call.Callee)
	}
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(call.Args))
	}
	if lit, ok := call.Args[0].(*ast.IntLit); !ok || lit.Value != 1 {
		t.Errorf("arg 0 = %v, want 1", call.Args[0])
	}
	if add, ok := call.Args[1].(*ast.Binary); !ok || add.Op != ast.BinAdd {
		t.Errorf("arg 1 = %v, want + node", call.Args[1])
	}
}

func TestOnlyIdentifiersCallable(t *testing.T) {
	if err := parseBlockErr(t, "print (a + b)(1);"); err == nil {
		t.Error("calling a non-identifier parsed, want error")
	}
}

func TestParenthesizedIdentifierCallable(t *testing.T) {
	stmts := parseBlock(t, "print (foo)(1);")
	pr := stmts[0].(*ast.Print)

	call, ok := pr.Value.(*ast.Call)
	if !ok {
		t.Fatalf("root = %v, want call node", pr.Value)
	}
	if callee, ok := call.Callee.(*ast.Ident); !ok || callee.Name != "foo" {
		t.Errorf("callee = %v, want foo", call.Callee)
	}
	if len(call.Args) != 1 {
		t.Errorf("got %d args, want 1", len(call.Args))
	}
}

func TestFieldAccess(t *testing.T) {
	stmts := parseBlock(t, "print p.x;")
	pr := stmts[0].(*ast.Print)

	access, ok := pr.Value.(*ast.FieldAccess)
	if !ok {
		t.Fatalf("root = %v, want field access", pr.Value)
	}
	if base, ok := access.Base.(*ast.Ident); !ok || base.Name != "p" {
		t.Errorf("base = %v, want p", access.Base)
	}
	if access.Field != "x" {
		t.Errorf("field = %q, want %q", access.Field, "x")
	}
}

func TestFieldAccessRejectsWhitespace(t *testing.T) {
	cases := []string{
		"print p .x;",
		"print p. x;",
		"print p . x;",
	}
	for _, inner := range cases {
		if err := parseBlockErr(t, inner); err == nil {
			t.Errorf("%q parsed, want error", inner)
		}
	}
}

func TestFieldAccessInExpressions(t *testing.T) {
	stmts := parseBlock(t, "print a.b + c.d;")
	add := stmts[0].(*ast.Print).Value.(*ast.Binary)
	if _, ok := add.Left.(*ast.FieldAccess); !ok {
		t.Errorf("left = %v, want field access", add.Left)
	}
	if _, ok := add.Right.(*ast.FieldAccess); !ok {
		t.Errorf("right = %v, want field access", add.Right)
	}
}

func TestIfElseStructure(t *testing.T) {
	stmts := parseBlock(t, "if (x < 3) { print 1; } else { print 2; }")
	ifStmt, ok := stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("statement is %T, want *ast.If", stmts[0])
	}

	lt, ok := ifStmt.Cond.(*ast.Binary)
	if !ok || lt.Op != ast.BinLt {
		t.Fatalf("cond = %v, want < node", ifStmt.Cond)
	}
	if len(ifStmt.Then) != 1 || len(ifStmt.Else) != 1 {
		t.Errorf("then/else sizes = %d/%d, want 1/1", len(ifStmt.Then), len(ifStmt.Else))
	}
}

func TestIfWithoutElseHasEmptyElse(t *testing.T) {
	stmts := parseBlock(t, "if (1) { print 1; }")
	ifStmt := stmts[0].(*ast.If)
	if len(ifStmt.Then) != 1 {
		t.Errorf("then size = %d, want 1", len(ifStmt.Then))
	}
	if len(ifStmt.Else) != 0 {
		t.Errorf("else size = %d, want 0", len(ifStmt.Else))
	}
}

func TestWhileStructure(t *testing.T) {
	stmts := parseBlock(t, "while (x < 3) { print x; }")
	wh, ok := stmts[0].(*ast.While)
	if !ok {
		t.Fatalf("statement is %T, want *ast.While", stmts[0])
	}
	if lt, ok := wh.Cond.(*ast.Binary); !ok || lt.Op != ast.BinLt {
		t.Errorf("cond = %v, want < node", wh.Cond)
	}
	if len(wh.Body) != 1 {
		t.Errorf("body size = %d, want 1", len(wh.Body))
	}
}

func TestNestedScopeStatement(t *testing.T) {
	stmts := parseBlock(t, "{ print 1; }")
	scope, ok := stmts[0].(*ast.Scope)
	if !ok {
		t.Fatalf("statement is %T, want *ast.Scope", stmts[0])
	}
	if len(scope.Body) != 1 {
		t.Errorf("scope size = %d, want 1", len(scope.Body))
	}
}

func TestSkipExtraTerminatorsInsideScope(t *testing.T) {
	stmts := parseBlock(t, ";;;int x = 1;;;;print x;;;")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if _, ok := stmts[0].(*ast.IntDeclAssign); !ok {
		t.Errorf("statement 0 is %T, want *ast.IntDeclAssign", stmts[0])
	}
	if _, ok := stmts[1].(*ast.Print); !ok {
		t.Errorf("statement 1 is %T, want *ast.Print", stmts[1])
	}
}

func TestProgramAcceptsFuncAndStruct(t *testing.T) {
	program := parseProgram(t, `
		struct Point { int x; int y; }
		func add(a, b) { return a + b; }
		func main() { return 0; }
	`)
	if len(program) != 3 {
		t.Fatalf("got %d declarations, want 3", len(program))
	}

	def, ok := program[0].(*ast.StructDef)
	if !ok || def.Name != "Point" || len(def.Fields) != 2 {
		t.Errorf("declaration 0 = %v, want struct Point with 2 fields", program[0])
	}
	fn, ok := program[1].(*ast.Function)
	if !ok || fn.Name != "add" || len(fn.Params) != 2 {
		t.Errorf("declaration 1 = %v, want func add(a, b)", program[1])
	}
}

func TestProgramRejectsTopLevelStatement(t *testing.T) {
	tokens, err := lexer.New("int x = 1;").TokenizeAll()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.New(tokens).ParseProgram(); err == nil {
		t.Error("top-level int declaration parsed, want error")
	}
}

func TestScopeRejectsDeclarations(t *testing.T) {
	cases := []string{
		"func f() { return 0; }",
		"struct S { int x; }",
	}
	for _, inner := range cases {
		if err := parseBlockErr(t, inner); err == nil {
			t.Errorf("%q parsed inside a block, want error", inner)
		}
	}
}

func TestDuplicateParametersRejected(t *testing.T) {
	tokens, err := lexer.New("func f(a, a) { return a; }").TokenizeAll()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.New(tokens).ParseProgram(); err == nil {
		t.Error("duplicate parameters parsed, want error")
	}
}

func TestDuplicateStructFieldsRejected(t *testing.T) {
	tokens, err := lexer.New("struct S { int a; int a; }").TokenizeAll()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.New(tokens).ParseProgram(); err == nil {
		t.Error("duplicate struct fields parsed, want error")
	}
}

func TestStructVariableForms(t *testing.T) {
	stmts := parseBlock(t, "Point p;Point q = {1, 2};q = {3, 4};")
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}

	decl, ok := stmts[0].(*ast.StructDecl)
	if !ok || decl.Type != "Point" || decl.Name != "p" {
		t.Errorf("statement 0 = %v, want Point p;", stmts[0])
	}
	da, ok := stmts[1].(*ast.StructDeclAssign)
	if !ok || da.Type != "Point" || da.Name != "q" || len(da.Values) != 2 {
		t.Errorf("statement 1 = %v, want Point q = {1, 2};", stmts[1])
	}
	sa, ok := stmts[2].(*ast.StructAssign)
	if !ok || sa.Name != "q" || len(sa.Values) != 2 {
		t.Errorf("statement 2 = %v, want q = {3, 4};", stmts[2])
	}
}

func TestMalformedStatements(t *testing.T) {
	cases := []string{
		"int x = ;",
		"int x = 1",
		"print ;",
		"if (1) print 1;",
		"if 1 { print 1; }",
		"while (1) print 1;",
		"x = (1;",
	}
	for _, inner := range cases {
		if err := parseBlockErr(t, inner); err == nil {
			t.Errorf("%q parsed, want error", inner)
		}
	}
}

func TestMissingRBrace(t *testing.T) {
	tokens, err := lexer.New("{ print 1; ").TokenizeAll()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.New(tokens).ParseScope(); err == nil {
		t.Error("unterminated scope parsed, want error")
	}
}
