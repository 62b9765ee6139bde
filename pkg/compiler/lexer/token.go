package lexer

// Kind represents the type of token identified by the lexer.
type Kind uint8

const (
	KindEof Kind = iota
	KindEos // ;
	KindInteger
	KindIdentifier
	KindString

	KindKwInt
	KindKwPrint
	KindKwFunc
	KindKwStruct
	KindKwReturn
	KindKwIf
	KindKwElse
	KindKwWhile
	KindKwTrue
	KindKwFalse

	KindLParen   // (
	KindRParen   // )
	KindLBrace   // {
	KindRBrace   // }
	KindLBracket // [
	KindRBracket // ]
	KindComma    // ,

	KindAssign  // =
	KindPlus    // +
	KindMinus   // -
	KindStar    // *
	KindSlash   // /
	KindPercent // %
	KindBang    // !
	KindDot     // .
	KindLt      // <
	KindGt      // >
	KindEqEq    // ==
	KindNeq     // !=
	KindLe      // <=
	KindGe      // >=
	KindAndAnd  // &&
	KindOrOr    // ||
)

var kindNames = map[Kind]string{
	KindEof:        "Eof",
	KindEos:        "Eos",
	KindInteger:    "Integer",
	KindIdentifier: "Identifier",
	KindString:     "String",
	KindKwInt:      "int",
	KindKwPrint:    "print",
	KindKwFunc:     "func",
	KindKwStruct:   "struct",
	KindKwReturn:   "return",
	KindKwIf:       "if",
	KindKwElse:     "else",
	KindKwWhile:    "while",
	KindKwTrue:     "true",
	KindKwFalse:    "false",
	KindLParen:     "(",
	KindRParen:     ")",
	KindLBrace:     "{",
	KindRBrace:     "}",
	KindLBracket:   "[",
	KindRBracket:   "]",
	KindComma:      ",",
	KindAssign:     "=",
	KindPlus:       "+",
	KindMinus:      "-",
	KindStar:       "*",
	KindSlash:      "/",
	KindPercent:    "%",
	KindBang:       "!",
	KindDot:        ".",
	KindLt:         "<",
	KindGt:         ">",
	KindEqEq:       "==",
	KindNeq:        "!=",
	KindLe:         "<=",
	KindGe:         ">=",
	KindAndAnd:     "&&",
	KindOrOr:       "||",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Token represents a lexical unit pointing back to the source.
// Lexeme is a slice of the source text; string tokens carry their
// content without the surrounding quotes. Line and Column are
// zero-based and absolute within the full source.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}

var keywords = map[string]Kind{
	"int":    KindKwInt,
	"print":  KindKwPrint,
	"func":   KindKwFunc,
	"struct": KindKwStruct,
	"return": KindKwReturn,
	"if":     KindKwIf,
	"else":   KindKwElse,
	"while":  KindKwWhile,
	"true":   KindKwTrue,
	"false":  KindKwFalse,
}

func keywordOrIdentifier(lexeme string) Kind {
	if kind, ok := keywords[lexeme]; ok {
		return kind
	}
	return KindIdentifier
}
