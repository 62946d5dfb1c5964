package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcc/pkg/config"
	"mcc/pkg/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	cfg := config.NewConfig()
	cfg.SetAllWarnings(false)
	toks, err := NewLexer([]rune(src), 0, cfg).Tokenize()
	require.NoError(t, err)
	return toks
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestTokenizeDeclaration(t *testing.T) {
	toks := tokenize(t, "int x;")
	assert.Equal(t, []token.Type{token.Int, token.Ident, token.Semi, token.EOF}, types(toks))
	assert.Equal(t, "x", toks[1].Value)
}

func TestTokenizeOperators(t *testing.T) {
	toks := tokenize(t, "= == != < <= > >= + ++ - -- * / ! & && || ^")
	assert.Equal(t, []token.Type{
		token.Eq, token.EqEq, token.Neq, token.Lt, token.Lte, token.Gt, token.Gte,
		token.Plus, token.Inc, token.Minus, token.Dec, token.Star, token.Slash,
		token.Not, token.And, token.AndAnd, token.OrOr, token.Xor, token.EOF,
	}, types(toks))
}

func TestTokenizeKeywords(t *testing.T) {
	toks := tokenize(t, "if else while for return length void char")
	assert.Equal(t, []token.Type{
		token.If, token.Else, token.While, token.For, token.Return,
		token.Length, token.Void, token.Char, token.EOF,
	}, types(toks))
}

func TestNumbers(t *testing.T) {
	toks := tokenize(t, "0 42 0x1F")
	require.Len(t, toks, 4)
	assert.Equal(t, "0", toks[0].Value)
	assert.Equal(t, "42", toks[1].Value)
	assert.Equal(t, "31", toks[2].Value)
}

func TestCharConstants(t *testing.T) {
	toks := tokenize(t, `'a' '\n' '\0' '\x41'`)
	require.Len(t, toks, 5)
	for _, tok := range toks[:4] {
		assert.Equal(t, token.CharConst, tok.Type)
	}
	assert.Equal(t, "97", toks[0].Value)
	assert.Equal(t, "10", toks[1].Value)
	assert.Equal(t, "0", toks[2].Value)
	assert.Equal(t, "65", toks[3].Value)
}

func TestLongCharConstantKeepsFirst(t *testing.T) {
	toks := tokenize(t, "'ab'")
	require.Len(t, toks, 2)
	assert.Equal(t, "97", toks[0].Value)
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := tokenize(t, "int // trailing\n/* block\ncomment */ x")
	assert.Equal(t, []token.Type{token.Int, token.Ident, token.EOF}, types(toks))
}

func TestPositions(t *testing.T) {
	toks := tokenize(t, "int\n  x;")
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Column)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 3, toks[1].Column)
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unexpected character", "int @"},
		{"single pipe", "a | b"},
		{"unterminated char", "'a"},
		{"empty char", "''"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.NewConfig()
			cfg.SetAllWarnings(false)
			_, err := NewLexer([]rune(tc.src), 0, cfg).Tokenize()
			assert.Error(t, err)
		})
	}
}
