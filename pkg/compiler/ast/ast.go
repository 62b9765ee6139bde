package ast

// Expr represents an expression that yields an int64 value.
type Expr interface {
	exprNode()
	String() string
}

// Stmt represents a standalone unit of execution.
type Stmt interface {
	stmtNode()
	String() string
}

// UnaryOp identifies a prefix operator.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota // -
	UnaryNot                // !
)

// BinaryOp identifies an infix operator.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNeq
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

// Binding powers shared between the parser and the formatter. Higher
// binds tighter; left-associativity comes from recursing with
// min_bp = Precedence + 1.
const (
	PrecUnary  = 80
	PrecCall   = 90
	PrecAccess = 100
)

// Precedence returns the infix binding power of the operator.
func (op BinaryOp) Precedence() int {
	switch op {
	case BinOr:
		return 20
	case BinAnd:
		return 30
	case BinEq, BinNeq:
		return 40
	case BinLt, BinLe, BinGt, BinGe:
		return 50
	case BinAdd, BinSub:
		return 60
	case BinMul, BinDiv, BinMod:
		return 70
	}
	return -1
}

// IntLit is an integer literal. true/false parse into IntLit 1/0.
type IntLit struct {
	Value int64
}

// Ident is a variable reference.
type Ident struct {
	Name string
}

// Unary applies a prefix operator to a single operand.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

// Binary applies an infix operator to two operands.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Call invokes a function with evaluated arguments.
type Call struct {
	Callee Expr
	Args   []Expr
}

// FieldAccess reads one field of a struct variable.
type FieldAccess struct {
	Base  Expr
	Field string
}

func (*IntLit) exprNode()      {}
func (*Ident) exprNode()       {}
func (*Unary) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Call) exprNode()        {}
func (*FieldAccess) exprNode() {}

// IntDecl: int x;
type IntDecl struct {
	Name string
}

// IntDeclAssign: int x = expr;
type IntDeclAssign struct {
	Name  string
	Value Expr
}

// IntAssign: x = expr;
type IntAssign struct {
	Name  string
	Value Expr
}

// Print: print expr;
type Print struct {
	Value Expr
}

// PrintString: print "literal";
type PrintString struct {
	Content string
}

// Return: return expr;
type Return struct {
	Value Expr
}

// Scope is a bare { ... } block introducing a new lexical scope.
type Scope struct {
	Body []Stmt
}

// If: if (cond) { ... } with an optional else block.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While: while (cond) { ... }
type While struct {
	Cond Expr
	Body []Stmt
}

// Function: func name(a, b) { ... }; top level only.
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
}

// StructDef: struct Name { int f; ... }; top level only.
type StructDef struct {
	Name   string
	Fields []string
}

// StructDeclAssign: Type x = {e1, e2};
type StructDeclAssign struct {
	Type   string
	Name   string
	Values []Expr
}

// StructDecl: Type x;
type StructDecl struct {
	Type string
	Name string
}

// StructAssign: x = {e1, e2}; where x is a declared struct variable.
type StructAssign struct {
	Name   string
	Values []Expr
}

func (*IntDecl) stmtNode()          {}
func (*IntDeclAssign) stmtNode()    {}
func (*IntAssign) stmtNode()        {}
func (*Print) stmtNode()            {}
func (*PrintString) stmtNode()      {}
func (*Return) stmtNode()           {}
func (*Scope) stmtNode()            {}
func (*If) stmtNode()               {}
func (*While) stmtNode()            {}
func (*Function) stmtNode()         {}
func (*StructDef) stmtNode()        {}
func (*StructDeclAssign) stmtNode() {}
func (*StructDecl) stmtNode()       {}
func (*StructAssign) stmtNode()     {}
