package lexer

import (
	"fmt"
)

// Lexer performs lexical analysis on ds source text.
type Lexer struct {
	code string
}

// New creates a lexer over the given source text.
func New(code string) *Lexer {
	return &Lexer{code: code}
}

// TokenizeAll scans the whole source into tokens, terminated by
// exactly one Eof token.
func (l *Lexer) TokenizeAll() ([]Token, error) {
	return l.TokenizeRange(0, len(l.code))
}

// TokenizeRange scans the half-open byte range [left, right) of the
// source. Line and column stay absolute: the prefix before left is
// walked first so positions match a full-source scan.
func (l *Lexer) TokenizeRange(left, right int) ([]Token, error) {
	if left > right || right > len(l.code) {
		return nil, fmt.Errorf("tokenize range: invalid range [%d, %d) for code size %d", left, right, len(l.code))
	}

	line, col := lineColAt(l.code, left)
	s := &scanState{code: l.code, pos: left, end: right, line: line, col: col}

	var out []Token
	for {
		s.skipWhitespace()
		if s.pos >= s.end {
			out = append(out, Token{Kind: KindEof, Line: s.line, Column: s.col})
			return out, nil
		}

		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
}

// lineColAt computes the zero-based line/column of a byte position by
// scanning the prefix before it.
func lineColAt(code string, pos int) (int, int) {
	line, col := 0, 0
	for i := 0; i < pos; i++ {
		if code[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

type scanState struct {
	code string
	pos  int
	end  int
	line int
	col  int
}

// advance moves past one non-newline byte.
func (s *scanState) advance() {
	s.pos++
	s.col++
}

func (s *scanState) newLine() {
	s.pos++
	s.line++
	s.col = 0
}

func (s *scanState) skipWhitespace() {
	for s.pos < s.end {
		switch c := s.code[s.pos]; {
		case c == '\n':
			s.newLine()
		case c == '\r':
			// \r\n counts as one newline
			if s.pos+1 < s.end && s.code[s.pos+1] == '\n' {
				s.pos++
				s.newLine()
			} else {
				s.advance()
			}
		case isWhitespace(c):
			s.advance()
		default:
			return
		}
	}
}

func (s *scanState) next() (Token, error) {
	start := s.pos
	tokLine := s.line
	tokCol := s.col
	c := s.code[s.pos]

	if c == ';' {
		s.advance()
		return Token{Kind: KindEos, Lexeme: s.code[start : start+1], Line: tokLine, Column: tokCol}, nil
	}

	if c == '"' {
		return s.scanString(tokLine, tokCol)
	}

	if s.pos+1 < s.end {
		if kind, ok := twoCharOp(c, s.code[s.pos+1]); ok {
			s.advance()
			s.advance()
			return Token{Kind: kind, Lexeme: s.code[start : start+2], Line: tokLine, Column: tokCol}, nil
		}
	}

	if kind, ok := oneCharOp(c); ok {
		s.advance()
		return Token{Kind: kind, Lexeme: s.code[start : start+1], Line: tokLine, Column: tokCol}, nil
	}

	if isDigit(c) {
		for s.pos < s.end && isDigit(s.code[s.pos]) {
			s.advance()
		}
		lexeme := s.code[start:s.pos]
		// Validate eagerly so a bad literal fails the lex pass, not the parse.
		if _, err := ParseInt64(lexeme); err != nil {
			return Token{}, fmt.Errorf("invalid integer literal %q (line=%d,column=%d): %w", lexeme, tokLine, tokCol, err)
		}
		return Token{Kind: KindInteger, Lexeme: lexeme, Line: tokLine, Column: tokCol}, nil
	}

	if isIdentStart(c) {
		s.advance()
		for s.pos < s.end && (isIdentStart(s.code[s.pos]) || isDigit(s.code[s.pos])) {
			s.advance()
		}
		lexeme := s.code[start:s.pos]
		return Token{Kind: keywordOrIdentifier(lexeme), Lexeme: lexeme, Line: tokLine, Column: tokCol}, nil
	}

	return Token{}, fmt.Errorf("unexpected character %q (line=%d,column=%d)", string(c), tokLine, tokCol)
}

// scanString scans a double-quoted string literal. No escapes: the
// literal may not contain a quote, a newline, or a ';'. The token's
// lexeme is the content without the quotes, positioned at the opening
// quote.
func (s *scanState) scanString(tokLine, tokCol int) (Token, error) {
	s.advance() // skip opening '"'
	contentStart := s.pos
	for {
		if s.pos >= s.end {
			return Token{}, fmt.Errorf("unterminated string literal (line=%d,column=%d)", tokLine, tokCol)
		}
		c := s.code[s.pos]
		if c == '\n' || c == '\r' {
			return Token{}, fmt.Errorf("unterminated string literal before newline (line=%d,column=%d)", tokLine, tokCol)
		}
		if c == ';' {
			return Token{}, fmt.Errorf("unterminated string literal before ';' (line=%d,column=%d)", tokLine, tokCol)
		}
		if c == '"' {
			break
		}
		s.advance()
	}
	content := s.code[contentStart:s.pos]
	s.advance() // skip closing '"'
	return Token{Kind: KindString, Lexeme: content, Line: tokLine, Column: tokCol}, nil
}

func twoCharOp(a, b byte) (Kind, bool) {
	switch {
	case a == '=' && b == '=':
		return KindEqEq, true
	case a == '!' && b == '=':
		return KindNeq, true
	case a == '<' && b == '=':
		return KindLe, true
	case a == '>' && b == '=':
		return KindGe, true
	case a == '&' && b == '&':
		return KindAndAnd, true
	case a == '|' && b == '|':
		return KindOrOr, true
	}
	return KindEof, false
}

func oneCharOp(c byte) (Kind, bool) {
	switch c {
	case '(':
		return KindLParen, true
	case ')':
		return KindRParen, true
	case '{':
		return KindLBrace, true
	case '}':
		return KindRBrace, true
	case '[':
		return KindLBracket, true
	case ']':
		return KindRBracket, true
	case ',':
		return KindComma, true
	case '=':
		return KindAssign, true
	case '+':
		return KindPlus, true
	case '-':
		return KindMinus, true
	case '*':
		return KindStar, true
	case '/':
		return KindSlash, true
	case '%':
		return KindPercent, true
	case '!':
		return KindBang, true
	case '.':
		return KindDot, true
	case '<':
		return KindLt, true
	case '>':
		return KindGt, true
	}
	return KindEof, false
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
