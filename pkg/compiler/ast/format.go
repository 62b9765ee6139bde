package ast

import (
	"strconv"
	"strings"
)

// Debug source rendering. Output is minimally parenthesized: parens
// appear only where the tree shape would otherwise be lost.

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	}
	return "<?>"
}

func (op BinaryOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinMod:
		return "%"
	case BinEq:
		return "=="
	case BinNeq:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	case BinAnd:
		return "&&"
	case BinOr:
		return "||"
	}
	return "<?>"
}

func (e *IntLit) String() string      { return formatExpr(e, 0, false) }
func (e *Ident) String() string       { return formatExpr(e, 0, false) }
func (e *Unary) String() string       { return formatExpr(e, 0, false) }
func (e *Binary) String() string      { return formatExpr(e, 0, false) }
func (e *Call) String() string        { return formatExpr(e, 0, false) }
func (e *FieldAccess) String() string { return formatExpr(e, 0, false) }

func formatExpr(e Expr, parentPrec int, isRHS bool) string {
	var b strings.Builder
	writeExpr(&b, e, parentPrec, isRHS)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr, parentPrec int, isRHS bool) {
	switch n := e.(type) {
	case *IntLit:
		b.WriteString(strconv.FormatInt(n.Value, 10))

	case *Ident:
		b.WriteString(n.Name)

	case *Unary:
		parens := PrecUnary < parentPrec
		if parens {
			b.WriteByte('(')
		}
		b.WriteString(n.Op.String())
		writeExpr(b, n.Operand, PrecUnary, true)
		if parens {
			b.WriteByte(')')
		}

	case *Binary:
		prec := n.Op.Precedence()
		// Equal precedence on the right means the tree was built
		// right-heavy, which only parens can express.
		parens := prec < parentPrec || (isRHS && prec == parentPrec)
		if parens {
			b.WriteByte('(')
		}
		writeExpr(b, n.Left, prec, false)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		writeExpr(b, n.Right, prec, true)
		if parens {
			b.WriteByte(')')
		}

	case *Call:
		parens := PrecCall < parentPrec
		if parens {
			b.WriteByte('(')
		}
		writeExpr(b, n.Callee, PrecCall, false)
		b.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, arg, 0, false)
		}
		b.WriteByte(')')
		if parens {
			b.WriteByte(')')
		}

	case *FieldAccess:
		writeExpr(b, n.Base, PrecAccess, false)
		b.WriteByte('.')
		b.WriteString(n.Field)

	default:
		b.WriteString("<null-expr>")
	}
}

func (s *IntDecl) String() string          { return formatStmt(s, 0) }
func (s *IntDeclAssign) String() string    { return formatStmt(s, 0) }
func (s *IntAssign) String() string        { return formatStmt(s, 0) }
func (s *Print) String() string            { return formatStmt(s, 0) }
func (s *PrintString) String() string      { return formatStmt(s, 0) }
func (s *Return) String() string           { return formatStmt(s, 0) }
func (s *Scope) String() string            { return formatStmt(s, 0) }
func (s *If) String() string               { return formatStmt(s, 0) }
func (s *While) String() string            { return formatStmt(s, 0) }
func (s *Function) String() string         { return formatStmt(s, 0) }
func (s *StructDef) String() string        { return formatStmt(s, 0) }
func (s *StructDeclAssign) String() string { return formatStmt(s, 0) }
func (s *StructDecl) String() string       { return formatStmt(s, 0) }
func (s *StructAssign) String() string     { return formatStmt(s, 0) }

func formatStmt(s Stmt, indent int) string {
	var b strings.Builder
	writeStmt(&b, s, indent)
	return b.String()
}

func writeIndent(b *strings.Builder, indent int) {
	for i := 0; i < indent; i++ {
		b.WriteByte(' ')
	}
}

func writeBody(b *strings.Builder, body []Stmt, indent int) {
	for _, st := range body {
		writeIndent(b, indent)
		writeStmt(b, st, indent)
		b.WriteByte('\n')
	}
}

func writeExprList(b *strings.Builder, values []Expr) {
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, v, 0, false)
	}
}

func escapeSource(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`, `"`, `\"`)
	return r.Replace(s)
}

func writeStmt(b *strings.Builder, s Stmt, indent int) {
	switch n := s.(type) {
	case *IntDecl:
		b.WriteString("int ")
		b.WriteString(n.Name)
		b.WriteByte(';')

	case *IntDeclAssign:
		b.WriteString("int ")
		b.WriteString(n.Name)
		b.WriteString(" = ")
		writeExpr(b, n.Value, 0, false)
		b.WriteByte(';')

	case *IntAssign:
		b.WriteString(n.Name)
		b.WriteString(" = ")
		writeExpr(b, n.Value, 0, false)
		b.WriteByte(';')

	case *Print:
		b.WriteString("print ")
		writeExpr(b, n.Value, 0, false)
		b.WriteByte(';')

	case *PrintString:
		b.WriteString("print \"")
		b.WriteString(escapeSource(n.Content))
		b.WriteString("\";")

	case *Return:
		b.WriteString("return ")
		writeExpr(b, n.Value, 0, false)
		b.WriteByte(';')

	case *Scope:
		b.WriteString("{\n")
		writeBody(b, n.Body, indent+4)
		writeIndent(b, indent)
		b.WriteByte('}')

	case *If:
		b.WriteString("if (")
		writeExpr(b, n.Cond, 0, false)
		b.WriteString(") {\n")
		writeBody(b, n.Then, indent+4)
		writeIndent(b, indent)
		b.WriteByte('}')
		if len(n.Else) > 0 {
			b.WriteString(" else {\n")
			writeBody(b, n.Else, indent+4)
			writeIndent(b, indent)
			b.WriteByte('}')
		}

	case *While:
		b.WriteString("while (")
		writeExpr(b, n.Cond, 0, false)
		b.WriteString(") {\n")
		writeBody(b, n.Body, indent+4)
		writeIndent(b, indent)
		b.WriteByte('}')

	case *Function:
		b.WriteString("func ")
		b.WriteString(n.Name)
		b.WriteByte('(')
		for i, p := range n.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p)
		}
		b.WriteString(") {\n")
		writeBody(b, n.Body, indent+4)
		writeIndent(b, indent)
		b.WriteByte('}')

	case *StructDef:
		b.WriteString("struct ")
		b.WriteString(n.Name)
		b.WriteString(" {\n")
		for _, f := range n.Fields {
			writeIndent(b, indent+4)
			b.WriteString("int ")
			b.WriteString(f)
			b.WriteString(";\n")
		}
		writeIndent(b, indent)
		b.WriteByte('}')

	case *StructDeclAssign:
		b.WriteString(n.Type)
		b.WriteByte(' ')
		b.WriteString(n.Name)
		b.WriteString(" = {")
		writeExprList(b, n.Values)
		b.WriteString("};")

	case *StructDecl:
		b.WriteString(n.Type)
		b.WriteByte(' ')
		b.WriteString(n.Name)
		b.WriteByte(';')

	case *StructAssign:
		b.WriteString(n.Name)
		b.WriteString(" = {")
		writeExprList(b, n.Values)
		b.WriteString("};")

	default:
		b.WriteString("<null-stmt>")
	}
}
