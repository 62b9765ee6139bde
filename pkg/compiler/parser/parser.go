package parser

import (
	"fmt"

	"github.com/dslang/dslang/pkg/compiler/ast"
	"github.com/dslang/dslang/pkg/compiler/lexer"
)

// Parser consumes a token sequence produced by the lexer. Expressions
// are parsed by precedence climbing over the binding powers shared
// with the ast package; statements are dispatched on one or two
// tokens of lookahead.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a parser over the token slice. The slice is expected to
// end with an Eof token, as the lexer guarantees.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.KindEof}
	}
	return p.tokens[p.pos]
}

func (p *Parser) consume() lexer.Token {
	tok := p.peek()
	p.pos++
	return tok
}

// prev returns the most recently consumed token.
func (p *Parser) prev() lexer.Token {
	if p.pos == 0 || p.pos > len(p.tokens) {
		return lexer.Token{Kind: lexer.KindEof}
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) expect(kind lexer.Kind) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, fmt.Errorf("expected %v but got %v %q (line=%d,column=%d)",
			kind, tok.Kind, tok.Lexeme, tok.Line, tok.Column)
	}
	p.pos++
	return tok, nil
}

func (p *Parser) skipEos() {
	for p.peek().Kind == lexer.KindEos {
		p.pos++
	}
}

// ParseProgram consumes tokens until Eof. Only func and struct
// declarations are accepted at the top level.
func (p *Parser) ParseProgram() ([]ast.Stmt, error) {
	var program []ast.Stmt
	for {
		p.skipEos()
		tok := p.peek()
		switch tok.Kind {
		case lexer.KindEof:
			return program, nil
		case lexer.KindKwFunc:
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			program = append(program, fn)
		case lexer.KindKwStruct:
			def, err := p.parseStructDef()
			if err != nil {
				return nil, err
			}
			program = append(program, def)
		default:
			return nil, fmt.Errorf("only func and struct declarations are allowed at top level, got %v %q (line=%d,column=%d)",
				tok.Kind, tok.Lexeme, tok.Line, tok.Column)
		}
	}
}

// ParseScope consumes one { ... } block and returns its statements.
// Redundant statement terminators are skipped; func and struct
// declarations are rejected inside blocks.
func (p *Parser) ParseScope() ([]ast.Stmt, error) {
	if _, err := p.expect(lexer.KindLBrace); err != nil {
		return nil, err
	}
	body := []ast.Stmt{}
	for {
		p.skipEos()
		tok := p.peek()
		switch tok.Kind {
		case lexer.KindRBrace:
			p.pos++
			return body, nil
		case lexer.KindEof:
			return nil, fmt.Errorf("unexpected end of input: missing '}' (line=%d,column=%d)", tok.Line, tok.Column)
		default:
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			body = append(body, stmt)
		}
	}
}

func (p *Parser) parseFunction() (ast.Stmt, error) {
	if _, err := p.expect(lexer.KindKwFunc); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.KindIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindLParen); err != nil {
		return nil, err
	}

	var params []string
	seen := map[string]bool{}
	for p.peek().Kind != lexer.KindRParen {
		if len(params) > 0 {
			if _, err := p.expect(lexer.KindComma); err != nil {
				return nil, err
			}
		}
		param, err := p.expect(lexer.KindIdentifier)
		if err != nil {
			return nil, err
		}
		if seen[param.Lexeme] {
			return nil, fmt.Errorf("duplicate parameter %q in function %q (line=%d,column=%d)",
				param.Lexeme, name.Lexeme, param.Line, param.Column)
		}
		seen[param.Lexeme] = true
		params = append(params, param.Lexeme)
	}
	p.pos++ // skip ')'

	body, err := p.ParseScope()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Name: name.Lexeme, Params: params, Body: body}, nil
}

func (p *Parser) parseStructDef() (ast.Stmt, error) {
	if _, err := p.expect(lexer.KindKwStruct); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.KindIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindLBrace); err != nil {
		return nil, err
	}

	// Only uninitialized int field declarations are allowed.
	var fields []string
	seen := map[string]bool{}
	for p.peek().Kind != lexer.KindRBrace {
		if _, err := p.expect(lexer.KindKwInt); err != nil {
			return nil, err
		}
		field, err := p.expect(lexer.KindIdentifier)
		if err != nil {
			return nil, err
		}
		if seen[field.Lexeme] {
			return nil, fmt.Errorf("duplicate field %q in struct %q (line=%d,column=%d)",
				field.Lexeme, name.Lexeme, field.Line, field.Column)
		}
		seen[field.Lexeme] = true
		fields = append(fields, field.Lexeme)
		if _, err := p.expect(lexer.KindEos); err != nil {
			return nil, err
		}
	}
	p.pos++ // skip '}'

	return &ast.StructDef{Name: name.Lexeme, Fields: fields}, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.KindKwInt:
		return p.parseIntDecl()
	case lexer.KindKwPrint:
		return p.parsePrint()
	case lexer.KindKwReturn:
		p.pos++
		value, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.KindEos); err != nil {
			return nil, err
		}
		return &ast.Return{Value: value}, nil
	case lexer.KindLBrace:
		body, err := p.ParseScope()
		if err != nil {
			return nil, err
		}
		return &ast.Scope{Body: body}, nil
	case lexer.KindKwIf:
		return p.parseIf()
	case lexer.KindKwWhile:
		return p.parseWhile()
	case lexer.KindKwFunc, lexer.KindKwStruct:
		return nil, fmt.Errorf("%v declarations are only allowed at top level (line=%d,column=%d)",
			tok.Kind, tok.Line, tok.Column)
	case lexer.KindIdentifier:
		return p.parseIdentStatement()
	default:
		return nil, fmt.Errorf("unexpected statement start %v %q (line=%d,column=%d)",
			tok.Kind, tok.Lexeme, tok.Line, tok.Column)
	}
}

// parseIntDecl handles "int x;" and "int x = expr;".
func (p *Parser) parseIntDecl() (ast.Stmt, error) {
	p.pos++ // skip 'int'
	name, err := p.expect(lexer.KindIdentifier)
	if err != nil {
		return nil, err
	}

	if p.peek().Kind == lexer.KindEos {
		p.pos++
		return &ast.IntDecl{Name: name.Lexeme}, nil
	}

	if _, err := p.expect(lexer.KindAssign); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindEos); err != nil {
		return nil, err
	}
	return &ast.IntDeclAssign{Name: name.Lexeme, Value: value}, nil
}

func (p *Parser) parsePrint() (ast.Stmt, error) {
	p.pos++ // skip 'print'

	if p.peek().Kind == lexer.KindString {
		content := p.consume().Lexeme
		if _, err := p.expect(lexer.KindEos); err != nil {
			return nil, err
		}
		return &ast.PrintString{Content: content}, nil
	}

	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindEos); err != nil {
		return nil, err
	}
	return &ast.Print{Value: value}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	p.pos++ // skip 'if'
	if _, err := p.expect(lexer.KindLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindRParen); err != nil {
		return nil, err
	}
	then, err := p.ParseScope()
	if err != nil {
		return nil, err
	}

	var elseBody []ast.Stmt
	if p.peek().Kind == lexer.KindKwElse {
		p.pos++
		elseBody, err = p.ParseScope()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{Cond: cond, Then: then, Else: elseBody}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.pos++ // skip 'while'
	if _, err := p.expect(lexer.KindLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindRParen); err != nil {
		return nil, err
	}
	body, err := p.ParseScope()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

// parseIdentStatement disambiguates plain assignment, struct literal
// assignment, and struct variable declarations, all of which start
// with an identifier.
func (p *Parser) parseIdentStatement() (ast.Stmt, error) {
	first := p.consume()

	// "Type x;" or "Type x = { ... };"
	if p.peek().Kind == lexer.KindIdentifier {
		name := p.consume()
		if p.peek().Kind == lexer.KindEos {
			p.pos++
			return &ast.StructDecl{Type: first.Lexeme, Name: name.Lexeme}, nil
		}
		if _, err := p.expect(lexer.KindAssign); err != nil {
			return nil, err
		}
		values, err := p.parseStructLiteral()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.KindEos); err != nil {
			return nil, err
		}
		return &ast.StructDeclAssign{Type: first.Lexeme, Name: name.Lexeme, Values: values}, nil
	}

	if _, err := p.expect(lexer.KindAssign); err != nil {
		return nil, err
	}

	// "x = { ... };" assigns a struct literal to an existing variable.
	if p.peek().Kind == lexer.KindLBrace {
		values, err := p.parseStructLiteral()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.KindEos); err != nil {
			return nil, err
		}
		return &ast.StructAssign{Name: first.Lexeme, Values: values}, nil
	}

	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindEos); err != nil {
		return nil, err
	}
	return &ast.IntAssign{Name: first.Lexeme, Value: value}, nil
}

func (p *Parser) parseStructLiteral() ([]ast.Expr, error) {
	if _, err := p.expect(lexer.KindLBrace); err != nil {
		return nil, err
	}
	values := []ast.Expr{}
	for p.peek().Kind != lexer.KindRBrace {
		if len(values) > 0 {
			if _, err := p.expect(lexer.KindComma); err != nil {
				return nil, err
			}
		}
		value, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	p.pos++ // skip '}'
	return values, nil
}

func infixBindingPower(kind lexer.Kind) (int, ast.BinaryOp, bool) {
	switch kind {
	case lexer.KindOrOr:
		return 20, ast.BinOr, true
	case lexer.KindAndAnd:
		return 30, ast.BinAnd, true
	case lexer.KindEqEq:
		return 40, ast.BinEq, true
	case lexer.KindNeq:
		return 40, ast.BinNeq, true
	case lexer.KindLt:
		return 50, ast.BinLt, true
	case lexer.KindLe:
		return 50, ast.BinLe, true
	case lexer.KindGt:
		return 50, ast.BinGt, true
	case lexer.KindGe:
		return 50, ast.BinGe, true
	case lexer.KindPlus:
		return 60, ast.BinAdd, true
	case lexer.KindMinus:
		return 60, ast.BinSub, true
	case lexer.KindStar:
		return 70, ast.BinMul, true
	case lexer.KindSlash:
		return 70, ast.BinDiv, true
	case lexer.KindPercent:
		return 70, ast.BinMod, true
	}
	return 0, 0, false
}

// parseExpr implements precedence climbing. Left-associativity comes
// from recursing with min_bp one above the operator's own power.
func (p *Parser) parseExpr(minBP int) (ast.Expr, error) {
	lhs, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		if tok.Kind == lexer.KindLParen {
			if ast.PrecCall < minBP {
				break
			}
			lhs, err = p.parseCall(lhs)
			if err != nil {
				return nil, err
			}
			continue
		}

		if tok.Kind == lexer.KindDot {
			if ast.PrecAccess < minBP {
				break
			}
			lhs, err = p.parseFieldAccess(lhs)
			if err != nil {
				return nil, err
			}
			continue
		}

		leftBP, op, ok := infixBindingPower(tok.Kind)
		if !ok || leftBP < minBP {
			break
		}
		p.pos++ // consume the operator

		rhs, err := p.parseExpr(leftBP + 1)
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Op: op, Left: lhs, Right: rhs}
	}

	return lhs, nil
}

func (p *Parser) parsePrefix() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.KindInteger:
		p.pos++
		value, err := lexer.ParseInt64(tok.Lexeme)
		if err != nil {
			return nil, fmt.Errorf("invalid integer literal %q (line=%d,column=%d): %w",
				tok.Lexeme, tok.Line, tok.Column, err)
		}
		return &ast.IntLit{Value: value}, nil

	case lexer.KindKwTrue:
		p.pos++
		return &ast.IntLit{Value: 1}, nil

	case lexer.KindKwFalse:
		p.pos++
		return &ast.IntLit{Value: 0}, nil

	case lexer.KindIdentifier:
		p.pos++
		return &ast.Ident{Name: tok.Lexeme}, nil

	case lexer.KindMinus, lexer.KindBang:
		p.pos++
		operand, err := p.parseExpr(ast.PrecUnary)
		if err != nil {
			return nil, err
		}
		op := ast.UnaryNeg
		if tok.Kind == lexer.KindBang {
			op = ast.UnaryNot
		}
		return &ast.Unary{Op: op, Operand: operand}, nil

	case lexer.KindLParen:
		// Grouping overrides precedence but inserts no node, so a
		// parenthesized identifier stays callable.
		p.pos++
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.KindRParen); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, fmt.Errorf("malformed expression: unexpected %v %q (line=%d,column=%d)",
			tok.Kind, tok.Lexeme, tok.Line, tok.Column)
	}
}

func (p *Parser) parseCall(callee ast.Expr) (ast.Expr, error) {
	open := p.peek()
	if _, ok := callee.(*ast.Ident); !ok {
		return nil, fmt.Errorf("only identifiers are callable (line=%d,column=%d)", open.Line, open.Column)
	}
	p.pos++ // skip '('

	args := []ast.Expr{}
	for p.peek().Kind != lexer.KindRParen {
		if len(args) > 0 {
			if _, err := p.expect(lexer.KindComma); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.pos++ // skip ')'

	return &ast.Call{Callee: callee, Args: args}, nil
}

// parseFieldAccess handles "base.field". The dot must be immediately
// adjacent to both neighbors: "p.x" accesses a field, "p . x" does
// not parse.
func (p *Parser) parseFieldAccess(base ast.Expr) (ast.Expr, error) {
	dot := p.peek()

	switch base.(type) {
	case *ast.Ident, *ast.FieldAccess:
	default:
		return nil, fmt.Errorf("field access requires a variable on the left of '.' (line=%d,column=%d)", dot.Line, dot.Column)
	}

	before := p.prev()
	if before.Line != dot.Line || before.Column+len(before.Lexeme) != dot.Column {
		return nil, fmt.Errorf("whitespace before '.' is not allowed in field access (line=%d,column=%d)", dot.Line, dot.Column)
	}
	p.pos++ // skip '.'

	field, err := p.expect(lexer.KindIdentifier)
	if err != nil {
		return nil, err
	}
	if field.Line != dot.Line || field.Column != dot.Column+1 {
		return nil, fmt.Errorf("whitespace after '.' is not allowed in field access (line=%d,column=%d)", dot.Line, dot.Column)
	}

	return &ast.FieldAccess{Base: base, Field: field.Lexeme}, nil
}
