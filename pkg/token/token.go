// Package token defines the lexical vocabulary of Mini-C.
package token

type Type int

const (
	EOF Type = iota
	Ident
	Number
	CharConst

	// Keywords
	Int
	Char
	Void
	If
	Else
	While
	For
	Return
	Length

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Comma

	// Operators
	Eq
	Plus
	Minus
	Star
	Slash
	EqEq
	Neq
	Lt
	Gt
	Lte
	Gte
	AndAnd
	OrOr
	Xor
	And
	Not
	Inc
	Dec
)

var KeywordMap = map[string]Type{
	"int":    Int,
	"char":   Char,
	"void":   Void,
	"if":     If,
	"else":   Else,
	"while":  While,
	"for":    For,
	"return": Return,
	"length": Length,
}

var typeNames = map[Type]string{
	EOF:       "end of file",
	Ident:     "identifier",
	Number:    "number",
	CharConst: "character constant",
	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	LBracket:  "[",
	RBracket:  "]",
	Semi:      ";",
	Comma:     ",",
	Eq:        "=",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	EqEq:      "==",
	Neq:       "!=",
	Lt:        "<",
	Gt:        ">",
	Lte:       "<=",
	Gte:       ">=",
	AndAnd:    "&&",
	OrOr:      "||",
	Xor:       "^",
	And:       "&",
	Not:       "!",
	Inc:       "++",
	Dec:       "--",
}

func init() {
	for str, typ := range KeywordMap {
		typeNames[typ] = str
	}
}

// String returns the source spelling of a token type, or a descriptive
// name for token classes that have no fixed spelling.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown token"
}

type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}
