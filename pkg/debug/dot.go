// Package debug renders parsed programs as Graphviz digraphs for
// inspection with dot(1).
package debug

import (
	"fmt"
	"os"
	"strings"

	"github.com/dslang/dslang/pkg/compiler/ast"
)

type dotBuilder struct {
	nodes  []string
	edges  []string
	nextID int
}

var dotEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", "",
	"\t", `\t`,
)

func (d *dotBuilder) addNode(label string) int {
	id := d.nextID
	d.nextID++
	d.nodes = append(d.nodes, fmt.Sprintf("  n%d [label=\"%s\"];\n", id, dotEscaper.Replace(label)))
	return id
}

func (d *dotBuilder) addStyled(label, fillColor string) int {
	id := d.nextID
	d.nextID++
	d.nodes = append(d.nodes, fmt.Sprintf(
		"  n%d [label=\"%s\", shape=box, style=filled, fillcolor=\"%s\"];\n",
		id, dotEscaper.Replace(label), fillColor))
	return id
}

func (d *dotBuilder) addIdentifier(label string) int { return d.addStyled(label, "#e6f2ff") }
func (d *dotBuilder) addIntLiteral(label string) int { return d.addStyled(label, "#fff2cc") }
func (d *dotBuilder) addStringLit(label string) int  { return d.addStyled(label, "#f2f2f2") }

func (d *dotBuilder) addEdge(from, to int) {
	d.edges = append(d.edges, fmt.Sprintf("  n%d -> n%d;\n", from, to))
}

func (d *dotBuilder) emitExpr(e ast.Expr) int {
	switch x := e.(type) {
	case *ast.IntLit:
		return d.addIntLiteral(fmt.Sprintf("%d", x.Value))

	case *ast.Ident:
		return d.addIdentifier(x.Name)

	case *ast.Unary:
		n := d.addNode("UNARY " + x.Op.String())
		d.addEdge(n, d.emitExpr(x.Operand))
		return n

	case *ast.Binary:
		n := d.addNode("BIN " + x.Op.String())
		d.addEdge(n, d.emitExpr(x.Left))
		d.addEdge(n, d.emitExpr(x.Right))
		return n

	case *ast.Call:
		n := d.addNode("CALL")
		d.addEdge(n, d.emitExpr(x.Callee))
		args := d.addNode("ARGS")
		d.addEdge(n, args)
		for _, arg := range x.Args {
			d.addEdge(args, d.emitExpr(arg))
		}
		return n

	case *ast.FieldAccess:
		n := d.addNode("ACCESS")
		d.addEdge(n, d.emitExpr(x.Base))
		d.addEdge(n, d.addIdentifier(x.Field))
		return n
	}
	return d.addNode("?")
}

func (d *dotBuilder) emitStmtList(label string, sts []ast.Stmt) int {
	n := d.addNode(label)
	for _, st := range sts {
		d.addEdge(n, d.emitStmt(st))
	}
	return n
}

func (d *dotBuilder) emitStmt(st ast.Stmt) int {
	switch s := st.(type) {
	case *ast.IntDeclAssign:
		n := d.addNode("INT_DECL_ASSIGN")
		d.addEdge(n, d.addIdentifier(s.Name))
		d.addEdge(n, d.emitExpr(s.Value))
		return n

	case *ast.IntDecl:
		n := d.addNode("INT_DECL")
		d.addEdge(n, d.addIdentifier(s.Name))
		return n

	case *ast.IntAssign:
		n := d.addNode("INT_ASSIGN")
		d.addEdge(n, d.addIdentifier(s.Name))
		d.addEdge(n, d.emitExpr(s.Value))
		return n

	case *ast.Print:
		n := d.addNode("PRINT")
		d.addEdge(n, d.emitExpr(s.Value))
		return n

	case *ast.PrintString:
		n := d.addNode("PRINT_STRING")
		d.addEdge(n, d.addStringLit(s.Content))
		return n

	case *ast.Return:
		n := d.addNode("RETURN")
		d.addEdge(n, d.emitExpr(s.Value))
		return n

	case *ast.Scope:
		n := d.addNode("SCOPE")
		for _, inner := range s.Body {
			d.addEdge(n, d.emitStmt(inner))
		}
		return n

	case *ast.If:
		n := d.addNode("IF")
		d.addEdge(n, d.emitExpr(s.Cond))
		d.addEdge(n, d.emitStmtList("THEN", s.Then))
		d.addEdge(n, d.emitStmtList("ELSE", s.Else))
		return n

	case *ast.While:
		n := d.addNode("WHILE")
		d.addEdge(n, d.emitExpr(s.Cond))
		d.addEdge(n, d.emitStmtList("DO", s.Body))
		return n

	case *ast.Function:
		n := d.addNode("FUNC")
		d.addEdge(n, d.addIdentifier(s.Name))
		params := d.addNode("PARAMS")
		d.addEdge(n, params)
		for _, p := range s.Params {
			d.addEdge(params, d.addIdentifier(p))
		}
		d.addEdge(n, d.emitStmtList("BODY", s.Body))
		return n

	case *ast.StructDef:
		n := d.addNode("STRUCT")
		d.addEdge(n, d.addIdentifier(s.Name))
		fields := d.addNode("FIELDS")
		d.addEdge(n, fields)
		for _, f := range s.Fields {
			d.addEdge(fields, d.addIdentifier(f))
		}
		return n

	case *ast.StructDeclAssign:
		n := d.addNode("STRUCT_DECL_ASSIGN")
		typ := d.addNode("TYPE")
		d.addEdge(n, typ)
		d.addEdge(typ, d.addIdentifier(s.Type))
		v := d.addNode("VAR")
		d.addEdge(n, v)
		d.addEdge(v, d.addIdentifier(s.Name))
		vals := d.addNode("VALUES")
		d.addEdge(n, vals)
		for _, e := range s.Values {
			d.addEdge(vals, d.emitExpr(e))
		}
		return n

	case *ast.StructDecl:
		n := d.addNode("STRUCT_DECL")
		typ := d.addNode("TYPE")
		d.addEdge(n, typ)
		d.addEdge(typ, d.addIdentifier(s.Type))
		v := d.addNode("VAR")
		d.addEdge(n, v)
		d.addEdge(v, d.addIdentifier(s.Name))
		return n

	case *ast.StructAssign:
		n := d.addNode("STRUCT_ASSIGN")
		d.addEdge(n, d.addIdentifier(s.Name))
		vals := d.addNode("VALUES")
		d.addEdge(n, vals)
		for _, e := range s.Values {
			d.addEdge(vals, d.emitExpr(e))
		}
		return n
	}
	return d.addNode("?")
}

// ToDot renders program as a Graphviz digraph. Declarations hang off a
// single PROGRAM root; identifiers, integer literals, and string
// literals get distinct box styles.
func ToDot(program []ast.Stmt) string {
	var d dotBuilder
	root := d.addNode("PROGRAM")
	for _, st := range program {
		d.addEdge(root, d.emitStmt(st))
	}

	var out strings.Builder
	out.WriteString("digraph AST {\n")
	out.WriteString("  node [fontname=\"monospace\"];\n")
	for _, n := range d.nodes {
		out.WriteString(n)
	}
	for _, e := range d.edges {
		out.WriteString(e)
	}
	out.WriteString("}\n")
	return out.String()
}

// WriteDotFile renders program and writes it to path.
func WriteDotFile(path string, program []ast.Stmt) error {
	if err := os.WriteFile(path, []byte(ToDot(program)), 0o644); err != nil {
		return fmt.Errorf("write dot file: %w", err)
	}
	return nil
}
