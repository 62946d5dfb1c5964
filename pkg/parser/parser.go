// Package parser builds the Mini-C AST from a token stream.
//
// Besides parsing, it performs the label pre-pass the later passes rely
// on: every if/while/for node receives fresh jump markers from a counter
// that restarts at each function, so markers are unique within their
// enclosing function before the TAC generator ever sees them.
package parser

import (
	"strconv"

	"mcc/pkg/ast"
	"mcc/pkg/token"
	"mcc/pkg/util"
)

// Parser holds the state for the parsing process
type Parser struct {
	tokens      []token.Token
	pos         int
	current     token.Token
	previous    token.Token
	markerCount int
}

// NewParser creates and initializes a new Parser from a token stream
func NewParser(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	if len(tokens) > 0 {
		p.current = p.tokens[0]
	}
	return p
}

// Parse consumes the whole stream and returns the top-level declaration
// list as a Block node.
func (p *Parser) Parse() (*ast.Node, error) {
	first := p.current
	var decls []*ast.Node
	for !p.check(token.EOF) {
		decl, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return ast.NewBlock(first, decls, nil), nil
}

// Parser helpers

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.previous = p.current
		p.pos++
		if p.pos < len(p.tokens) {
			p.current = p.tokens[p.pos]
		}
	}
}

func (p *Parser) check(tokType token.Type) bool {
	return p.current.Type == tokType
}

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(tokType token.Type, message string) error {
	if p.check(tokType) {
		p.advance()
		return nil
	}
	return util.Errorf(p.current, "%s", message)
}

func (p *Parser) newMarker() int {
	m := p.markerCount
	p.markerCount++
	return m
}

func (p *Parser) isTypeKeyword() bool {
	return p.check(token.Int) || p.check(token.Char) || p.check(token.Void)
}

// parseBaseType reads a type keyword plus any number of pointer stars.
func (p *Parser) parseBaseType() (*ast.CType, error) {
	var typ *ast.CType
	switch p.current.Type {
	case token.Int:
		typ = ast.TypeInt
	case token.Char:
		typ = ast.TypeChar
	case token.Void:
		typ = ast.TypeVoid
	default:
		return nil, util.Errorf(p.current, "Expected a type name, got '%s'", p.current.Type)
	}
	p.advance()
	for p.match(token.Star) {
		typ = ast.NewPointerType(typ)
	}
	return typ, nil
}

// parseArraySuffix turns T into T[n] when a bracketed size follows the
// declared name.
func (p *Parser) parseArraySuffix(typ *ast.CType) (*ast.CType, error) {
	if !p.match(token.LBracket) {
		return typ, nil
	}
	sizeTok := p.current
	if err := p.expect(token.Number, "Expected a constant array size"); err != nil {
		return nil, err
	}
	size, err := strconv.Atoi(sizeTok.Value)
	if err != nil || size < 0 {
		return nil, util.Errorf(sizeTok, "Invalid array size '%s'", sizeTok.Value)
	}
	if err := p.expect(token.RBracket, "Expected ']' after array size"); err != nil {
		return nil, err
	}
	return ast.NewArrayType(size, typ), nil
}

// Declarations

func (p *Parser) parseTopLevel() (*ast.Node, error) {
	startTok := p.current
	typ, err := p.parseBaseType()
	if err != nil {
		return nil, err
	}
	nameTok := p.current
	if err := p.expect(token.Ident, "Expected a name after type"); err != nil {
		return nil, err
	}
	if p.check(token.LParen) {
		return p.parseFuncDecl(startTok, nameTok.Value, typ)
	}
	return p.finishVarDecl(startTok, nameTok.Value, typ)
}

func (p *Parser) finishVarDecl(startTok token.Token, name string, typ *ast.CType) (*ast.Node, error) {
	typ, err := p.parseArraySuffix(typ)
	if err != nil {
		return nil, err
	}
	if typ.Kind == ast.TYPE_VOID {
		return nil, util.Errorf(startTok, "Variable '%s' declared void", name)
	}
	if err := p.expect(token.Semi, "Expected ';' after declaration"); err != nil {
		return nil, err
	}
	return ast.NewVarDecl(startTok, name, typ), nil
}

func (p *Parser) parseFuncDecl(startTok token.Token, name string, returnType *ast.CType) (*ast.Node, error) {
	// Markers restart per function; uniqueness is only required within
	// one function's instruction sequence.
	p.markerCount = 0

	if err := p.expect(token.LParen, "Expected '(' after function name"); err != nil {
		return nil, err
	}

	var params []*ast.Node
	if !p.check(token.RParen) {
		if p.check(token.Void) && p.tokens[p.pos+1].Type == token.RParen {
			p.advance()
		} else {
			for {
				param, err := p.parseParam()
				if err != nil {
					return nil, err
				}
				params = append(params, param)
				if !p.match(token.Comma) {
					break
				}
			}
		}
	}
	if err := p.expect(token.RParen, "Expected ')' after parameter list"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewFuncDecl(startTok, name, params, body, returnType), nil
}

func (p *Parser) parseParam() (*ast.Node, error) {
	startTok := p.current
	typ, err := p.parseBaseType()
	if err != nil {
		return nil, err
	}
	nameTok := p.current
	if err := p.expect(token.Ident, "Expected a parameter name"); err != nil {
		return nil, err
	}
	typ, err = p.parseArraySuffix(typ)
	if err != nil {
		return nil, err
	}
	if typ.Kind == ast.TYPE_VOID {
		return nil, util.Errorf(startTok, "Parameter '%s' declared void", nameTok.Value)
	}
	return ast.NewVarDecl(startTok, nameTok.Value, typ), nil
}

// Statements

// parseBlock reads '{' decl* stmt* '}'. Declarations come first, each
// visible to every later sibling.
func (p *Parser) parseBlock() (*ast.Node, error) {
	startTok := p.current
	if err := p.expect(token.LBrace, "Expected '{'"); err != nil {
		return nil, err
	}

	var decls []*ast.Node
	for p.isTypeKeyword() {
		startTok := p.current
		typ, err := p.parseBaseType()
		if err != nil {
			return nil, err
		}
		nameTok := p.current
		if err := p.expect(token.Ident, "Expected a name after type"); err != nil {
			return nil, err
		}
		decl, err := p.finishVarDecl(startTok, nameTok.Value, typ)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}

	var stmts []*ast.Node
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if err := p.expect(token.RBrace, "Expected '}' at end of block"); err != nil {
		return nil, err
	}
	return ast.NewBlock(startTok, decls, stmts), nil
}

func (p *Parser) parseStatement() (*ast.Node, error) {
	switch p.current.Type {
	case token.LBrace:
		return p.parseBlock()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.For:
		return p.parseFor()
	case token.Return:
		return p.parseReturn()
	case token.Int, token.Char, token.Void:
		return nil, util.Errorf(p.current, "Declarations must precede statements in a block")
	default:
		stmt, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.Semi, "Expected ';' after statement"); err != nil {
			return nil, err
		}
		return stmt, nil
	}
}

// parseSimpleStatement reads an expression or an assignment, without the
// trailing ';' (for-loop headers reuse it).
func (p *Parser) parseSimpleStatement() (*ast.Node, error) {
	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if !p.check(token.Eq) {
		return expr, nil
	}
	eqTok := p.current
	p.advance()
	if !ast.IsLValue(expr) {
		return nil, util.Errorf(eqTok, "Left side of assignment is not assignable")
	}
	rhs, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	return ast.NewAssign(eqTok, expr, rhs), nil
}

func (p *Parser) parseIf() (*ast.Node, error) {
	startTok := p.current
	p.advance()
	if err := p.expect(token.LParen, "Expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RParen, "Expected ')' after condition"); err != nil {
		return nil, err
	}
	thenBody, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if !p.match(token.Else) {
		return ast.NewIf(startTok, cond, thenBody, nil, -1, p.newMarker()), nil
	}
	mElse := p.newMarker()
	mEnd := p.newMarker()
	elseBody, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewIf(startTok, cond, thenBody, elseBody, mElse, mEnd), nil
}

func (p *Parser) parseWhile() (*ast.Node, error) {
	startTok := p.current
	p.advance()
	if err := p.expect(token.LParen, "Expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RParen, "Expected ')' after condition"); err != nil {
		return nil, err
	}
	mHead := p.newMarker()
	mEnd := p.newMarker()
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(startTok, cond, body, mHead, mEnd), nil
}

func (p *Parser) parseFor() (*ast.Node, error) {
	startTok := p.current
	p.advance()
	if err := p.expect(token.LParen, "Expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var init, post *ast.Node
	var err error
	if !p.check(token.Semi) {
		if init, err = p.parseSimpleStatement(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.Semi, "Expected ';' after for-loop initializer"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Semi, "Expected ';' after for-loop condition"); err != nil {
		return nil, err
	}
	if !p.check(token.RParen) {
		if post, err = p.parseSimpleStatement(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.RParen, "Expected ')' after for-loop header"); err != nil {
		return nil, err
	}

	m1 := p.newMarker()
	m2 := p.newMarker()
	m3 := p.newMarker()
	m4 := p.newMarker()
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewFor(startTok, init, cond, post, body, m1, m2, m3, m4), nil
}

func (p *Parser) parseReturn() (*ast.Node, error) {
	startTok := p.current
	p.advance()
	if p.match(token.Semi) {
		return ast.NewReturn(startTok, nil), nil
	}
	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Semi, "Expected ';' after return value"); err != nil {
		return nil, err
	}
	return ast.NewReturn(startTok, expr), nil
}

// Expression Parsing

func getBinaryOpPrecedence(op token.Type) int {
	switch op {
	case token.Star, token.Slash:
		return 7
	case token.Plus, token.Minus:
		return 6
	case token.Lt, token.Gt, token.Lte, token.Gte:
		return 5
	case token.EqEq, token.Neq:
		return 4
	case token.Xor:
		return 3
	case token.AndAnd:
		return 2
	case token.OrOr:
		return 1
	default:
		return -1
	}
}

func (p *Parser) parseExpression(minPrec int) (*ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec := getBinaryOpPrecedence(p.current.Type)
		if prec < 0 || prec < minPrec {
			return left, nil
		}
		opTok := p.current
		p.advance()
		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(opTok, opTok.Type, left, right)
	}
}

func (p *Parser) parseUnary() (*ast.Node, error) {
	startTok := p.current
	switch p.current.Type {
	case token.Not, token.Minus:
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(startTok, startTok.Type, expr), nil
	case token.Star:
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewIndirection(startTok, expr), nil
	case token.And:
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if !ast.IsLValue(expr) {
			return nil, util.Errorf(startTok, "Cannot take the address of this expression")
		}
		return ast.NewAddressOf(startTok, expr), nil
	case token.Inc, token.Dec:
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if !ast.IsLValue(expr) {
			return nil, util.Errorf(startTok, "Operand of '%s' is not assignable", startTok.Type)
		}
		return ast.NewPrefixOp(startTok, startTok.Type, expr), nil
	case token.Length:
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewLength(startTok, expr), nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (*ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current.Type {
		case token.LBracket:
			openTok := p.current
			p.advance()
			index, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			if err := p.expect(token.RBracket, "Expected ']' after subscript"); err != nil {
				return nil, err
			}
			expr = ast.NewSubscript(openTok, expr, index)
		case token.Inc, token.Dec:
			opTok := p.current
			p.advance()
			if !ast.IsLValue(expr) {
				return nil, util.Errorf(opTok, "Operand of '%s' is not assignable", opTok.Type)
			}
			expr = ast.NewPostfixOp(opTok, opTok.Type, expr)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (*ast.Node, error) {
	startTok := p.current
	switch p.current.Type {
	case token.Number:
		p.advance()
		value, err := strconv.ParseInt(startTok.Value, 10, 64)
		if err != nil {
			return nil, util.Errorf(startTok, "Invalid number literal: %s", startTok.Value)
		}
		return ast.NewNumber(startTok, value), nil
	case token.CharConst:
		p.advance()
		value, err := strconv.ParseInt(startTok.Value, 10, 64)
		if err != nil {
			return nil, util.Errorf(startTok, "Invalid character constant")
		}
		return ast.NewCharLit(startTok, value), nil
	case token.Ident:
		p.advance()
		if !p.check(token.LParen) {
			return ast.NewIdent(startTok, startTok.Value), nil
		}
		p.advance()
		var args []*ast.Node
		if !p.check(token.RParen) {
			for {
				arg, err := p.parseExpression(0)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.match(token.Comma) {
					break
				}
			}
		}
		if err := p.expect(token.RParen, "Expected ')' after arguments"); err != nil {
			return nil, err
		}
		return ast.NewFuncCall(startTok, startTok.Value, args), nil
	case token.LParen:
		p.advance()
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RParen, "Expected ')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, util.Errorf(startTok, "Unexpected token '%s' in expression", startTok.Type)
	}
}
