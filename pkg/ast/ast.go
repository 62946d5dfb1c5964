// Package ast defines the types used to represent the Abstract Syntax Tree (AST)
package ast

import (
	"mcc/pkg/token"
)

// NodeType defines the kind of a node in the AST
type NodeType int

// Node types enum
const (
	// Expressions
	Number NodeType = iota
	CharLit
	Ident
	BinaryOp
	UnaryOp
	PrefixOp
	PostfixOp
	Subscript
	Length
	AddressOf
	Indirection
	FuncCall

	// Statements
	Assign
	If
	While
	For
	Return
	Block
	VarDecl
	FuncDecl
)

// Node represents a node in the Abstract Syntax Tree
type Node struct {
	Type   NodeType
	Tok    token.Token
	Parent *Node
	Data   interface{}
	Typ    *CType // Set by the type checker; TypeUntyped until then
}

// --- Node Data Structs ---

type NumberNode struct{ Value int64 }
type CharNode struct{ Value int64 }
type IdentNode struct{ Name string }
type BinaryOpNode struct {
	Op          token.Type
	Left, Right *Node
}
type UnaryOpNode struct {
	Op   token.Type
	Expr *Node
}

// PrefixOpNode and PostfixOpNode modify an lvalue in place.
type PrefixOpNode struct {
	Op     token.Type
	LValue *Node
}
type PostfixOpNode struct {
	Op     token.Type
	LValue *Node
}
type SubscriptNode struct{ Array, Index *Node }
type LengthNode struct{ Expr *Node }
type AddressOfNode struct{ LValue *Node }
type IndirectionNode struct{ Expr *Node }
type FuncCallNode struct {
	Name string
	Args []*Node
}

type AssignNode struct{ Lhs, Rhs *Node }

// Control-flow nodes carry the jump markers the parser allocated for
// them. Markers are opaque ints, unique within the enclosing function;
// the TAC generator only consumes them.
type IfNode struct {
	Cond, ThenBody, ElseBody *Node
	MElse                    int // jump target when the condition is zero and an else branch exists
	MEnd                     int // end of the construct
}
type WhileNode struct {
	Cond, Body *Node
	MHead      int
	MEnd       int
}
type ForNode struct {
	Init, Cond, Post, Body *Node
	M1, M2, M3, M4         int
}

type ReturnNode struct{ Expr *Node }
type BlockNode struct {
	Decls []*Node
	Stmts []*Node
}
type VarDeclNode struct {
	Name string
	Type *CType
}
type FuncDeclNode struct {
	Name       string
	Params     []*Node // VarDecl nodes
	Body       *Node
	ReturnType *CType
}

// --- Node Constructors ---

func newNode(tok token.Token, nodeType NodeType, data interface{}, children ...*Node) *Node {
	node := &Node{Type: nodeType, Tok: tok, Data: data, Typ: TypeUntyped}
	for _, child := range children {
		if child != nil {
			child.Parent = node
		}
	}
	return node
}

func NewNumber(tok token.Token, value int64) *Node {
	return newNode(tok, Number, NumberNode{Value: value})
}
func NewCharLit(tok token.Token, value int64) *Node {
	return newNode(tok, CharLit, CharNode{Value: value})
}
func NewIdent(tok token.Token, name string) *Node {
	return newNode(tok, Ident, IdentNode{Name: name})
}
func NewBinaryOp(tok token.Token, op token.Type, left, right *Node) *Node {
	return newNode(tok, BinaryOp, BinaryOpNode{Op: op, Left: left, Right: right}, left, right)
}
func NewUnaryOp(tok token.Token, op token.Type, expr *Node) *Node {
	return newNode(tok, UnaryOp, UnaryOpNode{Op: op, Expr: expr}, expr)
}
func NewPrefixOp(tok token.Token, op token.Type, lvalue *Node) *Node {
	return newNode(tok, PrefixOp, PrefixOpNode{Op: op, LValue: lvalue}, lvalue)
}
func NewPostfixOp(tok token.Token, op token.Type, lvalue *Node) *Node {
	return newNode(tok, PostfixOp, PostfixOpNode{Op: op, LValue: lvalue}, lvalue)
}
func NewSubscript(tok token.Token, array, index *Node) *Node {
	return newNode(tok, Subscript, SubscriptNode{Array: array, Index: index}, array, index)
}
func NewLength(tok token.Token, expr *Node) *Node {
	return newNode(tok, Length, LengthNode{Expr: expr}, expr)
}
func NewAddressOf(tok token.Token, lvalue *Node) *Node {
	return newNode(tok, AddressOf, AddressOfNode{LValue: lvalue}, lvalue)
}
func NewIndirection(tok token.Token, expr *Node) *Node {
	return newNode(tok, Indirection, IndirectionNode{Expr: expr}, expr)
}
func NewFuncCall(tok token.Token, name string, args []*Node) *Node {
	node := newNode(tok, FuncCall, FuncCallNode{Name: name, Args: args})
	for _, arg := range args {
		arg.Parent = node
	}
	return node
}
func NewAssign(tok token.Token, lhs, rhs *Node) *Node {
	return newNode(tok, Assign, AssignNode{Lhs: lhs, Rhs: rhs}, lhs, rhs)
}
func NewIf(tok token.Token, cond, thenBody, elseBody *Node, mElse, mEnd int) *Node {
	return newNode(tok, If, IfNode{Cond: cond, ThenBody: thenBody, ElseBody: elseBody, MElse: mElse, MEnd: mEnd}, cond, thenBody, elseBody)
}
func NewWhile(tok token.Token, cond, body *Node, mHead, mEnd int) *Node {
	return newNode(tok, While, WhileNode{Cond: cond, Body: body, MHead: mHead, MEnd: mEnd}, cond, body)
}
func NewFor(tok token.Token, init, cond, post, body *Node, m1, m2, m3, m4 int) *Node {
	return newNode(tok, For, ForNode{Init: init, Cond: cond, Post: post, Body: body, M1: m1, M2: m2, M3: m3, M4: m4}, init, cond, post, body)
}
func NewReturn(tok token.Token, expr *Node) *Node {
	return newNode(tok, Return, ReturnNode{Expr: expr}, expr)
}
func NewBlock(tok token.Token, decls, stmts []*Node) *Node {
	node := newNode(tok, Block, BlockNode{Decls: decls, Stmts: stmts})
	for _, d := range decls {
		d.Parent = node
	}
	for _, s := range stmts {
		if s != nil {
			s.Parent = node
		}
	}
	return node
}
func NewVarDecl(tok token.Token, name string, varType *CType) *Node {
	return newNode(tok, VarDecl, VarDeclNode{Name: name, Type: varType})
}
func NewFuncDecl(tok token.Token, name string, params []*Node, body *Node, returnType *CType) *Node {
	node := newNode(tok, FuncDecl, FuncDeclNode{Name: name, Params: params, Body: body, ReturnType: returnType}, body)
	for _, p := range params {
		p.Parent = node
	}
	return node
}

// IsLValue reports whether node can stand on the left of an assignment
// or under & / ++ / --.
func IsLValue(node *Node) bool {
	if node == nil {
		return false
	}
	switch node.Type {
	case Ident, Subscript, Indirection:
		return true
	default:
		return false
	}
}
