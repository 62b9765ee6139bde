package ast_test

import (
	"testing"

	"github.com/dslang/dslang/pkg/compiler/ast"
)

func TestExprFormattingMinimalParens(t *testing.T) {
	cases := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{
			"precedence needs no parens",
			&ast.Binary{Op: ast.BinAdd,
				Left:  &ast.IntLit{Value: 1},
				Right: &ast.Binary{Op: ast.BinMul, Left: &ast.IntLit{Value: 2}, Right: &ast.IntLit{Value: 3}}},
			"1 + 2 * 3",
		},
		{
			"low precedence child is parenthesized",
			&ast.Binary{Op: ast.BinMul,
				Left:  &ast.Binary{Op: ast.BinAdd, Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 2}},
				Right: &ast.IntLit{Value: 3}},
			"(1 + 2) * 3",
		},
		{
			"left-associative chain stays flat",
			&ast.Binary{Op: ast.BinSub,
				Left:  &ast.Binary{Op: ast.BinSub, Left: &ast.IntLit{Value: 10}, Right: &ast.IntLit{Value: 3}},
				Right: &ast.IntLit{Value: 2}},
			"10 - 3 - 2",
		},
		{
			"right-heavy equal precedence is parenthesized",
			&ast.Binary{Op: ast.BinSub,
				Left:  &ast.IntLit{Value: 10},
				Right: &ast.Binary{Op: ast.BinSub, Left: &ast.IntLit{Value: 3}, Right: &ast.IntLit{Value: 2}}},
			"10 - (3 - 2)",
		},
		{
			"unary binds tighter than mul",
			&ast.Binary{Op: ast.BinMul,
				Left: &ast.Unary{Op: ast.UnaryNeg,
					Operand: &ast.Binary{Op: ast.BinAdd, Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 2}}},
				Right: &ast.IntLit{Value: 3}},
			"-(1 + 2) * 3",
		},
		{
			"call with args",
			&ast.Call{Callee: &ast.Ident{Name: "add"},
				Args: []ast.Expr{&ast.IntLit{Value: 7}, &ast.IntLit{Value: 5}}},
			"add(7, 5)",
		},
		{
			"field access",
			&ast.FieldAccess{Base: &ast.Ident{Name: "p"}, Field: "x"},
			"p.x",
		},
		{
			"logical operators",
			&ast.Binary{Op: ast.BinOr,
				Left:  &ast.Binary{Op: ast.BinAnd, Left: &ast.Ident{Name: "a"}, Right: &ast.Ident{Name: "b"}},
				Right: &ast.Unary{Op: ast.UnaryNot, Operand: &ast.Ident{Name: "c"}}},
			"a && b || !c",
		},
	}

	for _, c := range cases {
		if got := c.expr.String(); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestStmtFormatting(t *testing.T) {
	scope := &ast.Scope{Body: []ast.Stmt{
		&ast.IntDeclAssign{Name: "x", Value: &ast.IntLit{Value: 1}},
		&ast.Print{Value: &ast.Ident{Name: "x"}},
	}}
	want := "{\n    int x = 1;\n    print x;\n}"
	if got := scope.String(); got != want {
		t.Errorf("Scope = %q, want %q", got, want)
	}

	ifStmt := &ast.If{
		Cond: &ast.Binary{Op: ast.BinLt, Left: &ast.Ident{Name: "x"}, Right: &ast.IntLit{Value: 10}},
		Then: []ast.Stmt{&ast.Print{Value: &ast.IntLit{Value: 1}}},
		Else: []ast.Stmt{&ast.Print{Value: &ast.IntLit{Value: 0}}},
	}
	want = "if (x < 10) {\n    print 1;\n} else {\n    print 0;\n}"
	if got := ifStmt.String(); got != want {
		t.Errorf("If = %q, want %q", got, want)
	}

	fn := &ast.Function{Name: "add", Params: []string{"a", "b"},
		Body: []ast.Stmt{&ast.Return{Value: &ast.Binary{Op: ast.BinAdd, Left: &ast.Ident{Name: "a"}, Right: &ast.Ident{Name: "b"}}}}}
	want = "func add(a, b) {\n    return a + b;\n}"
	if got := fn.String(); got != want {
		t.Errorf("Function = %q, want %q", got, want)
	}

	sd := &ast.StructDeclAssign{Type: "Point", Name: "p",
		Values: []ast.Expr{&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}}}
	if got, want := sd.String(), "Point p = {1, 2};"; got != want {
		t.Errorf("StructDeclAssign = %q, want %q", got, want)
	}

	ps := &ast.PrintString{Content: `say "hi"`}
	if got, want := ps.String(), `print "say \"hi\"";`; got != want {
		t.Errorf("PrintString = %q, want %q", got, want)
	}
}
