package pylang

import "fmt"

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL
	NEWLINE
	INDENT
	DEDENT

	// Literals & identifiers
	IDENT
	INT
	FLOAT
	STRING

	// Punctuation
	LPAREN   // "("
	RPAREN   // ")"
	LBRACKET // "["
	RBRACKET // "]"
	LBRACE   // "{"
	RBRACE   // "}"
	COLON    // ":"
	COMMA    // ","
	DOT      // "."
	ARROW    // "->"

	// Operators
	PLUS       // "+"
	MINUS      // "-"
	STAR       // "*"
	SLASH      // "/"
	FLOORDIV   // "//"
	PERCENT    // "%"
	POW        // "**"
	ASSIGN     // "="
	PLUSEQ     // "+="
	MINUSEQ    // "-="
	STAREQ     // "*="
	SLASHEQ    // "/="
	FLOORDIVEQ // "//="
	PERCENTEQ  // "%="
	EQ         // "=="
	NEQ        // "!="
	LT         // "<"
	LTE        // "<="
	GT         // ">"
	GTE        // ">="

	// Keywords
	KwDef
	KwReturn
	KwIf
	KwElif
	KwElse
	KwWhile
	KwFor
	KwIn
	KwAnd
	KwOr
	KwNot
	KwPass
	KwBreak
	KwContinue
	KwImport
	KwFrom
	KwAs
	KwAssert
	KwTrue
	KwFalse
	KwNone
)

// Token is a lexical token with optional decoded literal value.
type Token struct {
	Type    TokenType
	Lexeme  string // raw text slice
	Literal any    // int64, float64, or decoded string for literal tokens
	Line    int    // 1-based
	Col     int    // 1-based
	Offset  int    // byte offset of the first character
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %q", t.Line, t.Col, t.Lexeme)
}

var keywords = map[string]TokenType{
	"def":      KwDef,
	"return":   KwReturn,
	"if":       KwIf,
	"elif":     KwElif,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"in":       KwIn,
	"and":      KwAnd,
	"or":       KwOr,
	"not":      KwNot,
	"pass":     KwPass,
	"break":    KwBreak,
	"continue": KwContinue,
	"import":   KwImport,
	"from":     KwFrom,
	"as":       KwAs,
	"assert":   KwAssert,
	"True":     KwTrue,
	"False":    KwFalse,
	"None":     KwNone,
}
