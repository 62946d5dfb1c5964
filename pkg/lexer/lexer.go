// Package lexer turns Mini-C source text into a token stream.
package lexer

import (
	"strconv"
	"unicode"

	"mcc/pkg/config"
	"mcc/pkg/token"
	"mcc/pkg/util"
)

type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
	cfg       *config.Config
}

func NewLexer(source []rune, fileIndex int, cfg *config.Config) *Lexer {
	return &Lexer{
		source: source, fileIndex: fileIndex, line: 1, column: 1, cfg: cfg,
	}
}

// Tokenize scans the whole input. The returned slice always ends with an
// EOF token; scanning stops at the first lexical error.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) next() (token.Token, error) {
	l.skipWhitespaceAndComments()
	startPos, startCol, startLine := l.pos, l.column, l.line

	if l.isAtEnd() {
		return l.makeToken(token.EOF, "", startPos, startCol, startLine), nil
	}

	ch := l.peek()
	if unicode.IsLetter(ch) || ch == '_' {
		l.advance()
		return l.identifierOrKeyword(startPos, startCol, startLine), nil
	}
	if unicode.IsDigit(ch) {
		return l.numberLiteral(startPos, startCol, startLine)
	}

	l.advance()
	switch ch {
	case '(':
		return l.makeToken(token.LParen, "", startPos, startCol, startLine), nil
	case ')':
		return l.makeToken(token.RParen, "", startPos, startCol, startLine), nil
	case '{':
		return l.makeToken(token.LBrace, "", startPos, startCol, startLine), nil
	case '}':
		return l.makeToken(token.RBrace, "", startPos, startCol, startLine), nil
	case '[':
		return l.makeToken(token.LBracket, "", startPos, startCol, startLine), nil
	case ']':
		return l.makeToken(token.RBracket, "", startPos, startCol, startLine), nil
	case ';':
		return l.makeToken(token.Semi, "", startPos, startCol, startLine), nil
	case ',':
		return l.makeToken(token.Comma, "", startPos, startCol, startLine), nil
	case '^':
		return l.makeToken(token.Xor, "", startPos, startCol, startLine), nil
	case '+':
		return l.matchThen('+', token.Inc, token.Plus, startPos, startCol, startLine), nil
	case '-':
		return l.matchThen('-', token.Dec, token.Minus, startPos, startCol, startLine), nil
	case '*':
		return l.makeToken(token.Star, "", startPos, startCol, startLine), nil
	case '/':
		return l.makeToken(token.Slash, "", startPos, startCol, startLine), nil
	case '!':
		return l.matchThen('=', token.Neq, token.Not, startPos, startCol, startLine), nil
	case '=':
		return l.matchThen('=', token.EqEq, token.Eq, startPos, startCol, startLine), nil
	case '<':
		return l.matchThen('=', token.Lte, token.Lt, startPos, startCol, startLine), nil
	case '>':
		return l.matchThen('=', token.Gte, token.Gt, startPos, startCol, startLine), nil
	case '&':
		return l.matchThen('&', token.AndAnd, token.And, startPos, startCol, startLine), nil
	case '|':
		if l.match('|') {
			return l.makeToken(token.OrOr, "", startPos, startCol, startLine), nil
		}
		tok := l.makeToken(token.EOF, "", startPos, startCol, startLine)
		return tok, util.Errorf(tok, "Unexpected character: '|'")
	case '\'':
		return l.charLiteral(startPos, startCol, startLine)
	}

	tok := l.makeToken(token.EOF, "", startPos, startCol, startLine)
	return tok, util.Errorf(tok, "Unexpected character: '%c'", ch)
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value, FileIndex: l.fileIndex,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func (l *Lexer) matchThen(expected rune, thenType, elseType token.Type, sPos, sCol, sLine int) token.Token {
	if l.match(expected) {
		return l.makeToken(thenType, "", sPos, sCol, sLine)
	}
	return l.makeToken(elseType, "", sPos, sCol, sLine)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.peek() {
		case ' ', '\t', '\n', '\r':
			l.advance()
		case '/':
			switch l.peekNext() {
			case '*':
				l.blockComment()
			case '/':
				for !l.isAtEnd() && l.peek() != '\n' {
					l.advance()
				}
			default:
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) blockComment() {
	l.advance()
	l.advance()
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
	// Unterminated comment runs to EOF; the parser reports the missing input.
}

func (l *Lexer) identifierOrKeyword(startPos, startCol, startLine int) token.Token {
	for unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	value := string(l.source[startPos:l.pos])
	tok := l.makeToken(token.Ident, value, startPos, startCol, startLine)

	if tokType, isKeyword := token.KeywordMap[value]; isKeyword {
		tok.Type = tokType
		tok.Value = ""
	}
	return tok
}

func (l *Lexer) numberLiteral(startPos, startCol, startLine int) (token.Token, error) {
	if l.peek() == '0' && (l.peekNext() == 'x' || l.peekNext() == 'X') {
		l.advance()
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
	} else {
		for unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}

	valueStr := string(l.source[startPos:l.pos])
	tok := l.makeToken(token.Number, "", startPos, startCol, startLine)
	val, err := strconv.ParseInt(valueStr, 0, 64)
	if err != nil {
		if e, ok := err.(*strconv.NumError); ok && e.Err == strconv.ErrRange {
			util.Warn(l.cfg, config.WarnOverflow, tok, "Integer constant overflow: %s", valueStr)
			tok.Value = valueStr
			return tok, nil
		}
		return tok, util.Errorf(tok, "Invalid number literal: %s", valueStr)
	}
	tok.Value = strconv.FormatInt(val, 10)
	return tok, nil
}

func (l *Lexer) charLiteral(startPos, startCol, startLine int) (token.Token, error) {
	var val int64
	count := 0
	for l.peek() != '\'' && !l.isAtEnd() {
		var c int64
		if l.peek() == '\\' {
			l.advance()
			c = l.decodeEscape(startPos, startCol, startLine)
		} else {
			c = int64(l.advance())
		}
		if count == 0 {
			val = c
		}
		count++
	}

	tok := l.makeToken(token.CharConst, "", startPos, startCol, startLine)
	if !l.match('\'') {
		return tok, util.Errorf(tok, "Unterminated character constant")
	}
	if count == 0 {
		return tok, util.Errorf(tok, "Empty character constant")
	}
	if count > 1 {
		util.Warn(l.cfg, config.WarnLongCharConst, tok, "Character constant holds %d characters; using the first", count)
	}
	tok.Len = l.pos - startPos
	tok.Value = strconv.FormatInt(val&0xFF, 10)
	return tok, nil
}

func (l *Lexer) decodeEscape(startPos, startCol, startLine int) int64 {
	if l.isAtEnd() {
		return 0
	}
	c := l.advance()

	// \xNN with exactly two hex digits
	if c == 'x' {
		var val int64
		for i := 0; i < 2 && isHexDigit(l.peek()); i++ {
			val = val*16 + hexDigit(l.advance())
		}
		return val
	}

	escapes := map[rune]int64{
		'n': '\n', 't': '\t', 'r': '\r', '0': 0,
		'\\': '\\', '\'': '\'', '"': '"',
	}
	if val, ok := escapes[c]; ok {
		return val
	}
	util.Warn(l.cfg, config.WarnUnrecognizedEscape, l.makeToken(token.CharConst, "", startPos, startCol, startLine), "Unrecognized escape sequence '\\%c'", c)
	return int64(c)
}

func isHexDigit(c rune) bool {
	return unicode.IsDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexDigit(c rune) int64 {
	switch {
	case c >= '0' && c <= '9':
		return int64(c - '0')
	case c >= 'a' && c <= 'f':
		return int64(c-'a') + 10
	default:
		return int64(c-'A') + 10
	}
}
