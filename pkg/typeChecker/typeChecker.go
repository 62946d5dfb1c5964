// Package typeChecker annotates the AST with resolved types.
//
// Checking is fail-fast: the first violation anywhere in the tree is
// returned as a positioned error and aborts the whole pass. Atomic
// compatibility is loose, so int and char are interchangeable wherever
// a type comparison happens.
package typeChecker

import (
	"mcc/pkg/ast"
	"mcc/pkg/config"
	"mcc/pkg/token"
	"mcc/pkg/util"
)

type Symbol struct {
	Name string
	Type *ast.CType
	Next *Symbol
}

type Scope struct {
	Symbols *Symbol
	Parent  *Scope
}

type TypeChecker struct {
	currentScope *Scope
	globalScope  *Scope
	cfg          *config.Config
}

// NewTypeChecker builds a checker whose global scope already holds the
// print builtin.
func NewTypeChecker(cfg *config.Config) *TypeChecker {
	globalScope := newScope(nil)
	tc := &TypeChecker{currentScope: globalScope, globalScope: globalScope, cfg: cfg}
	tc.insert("print", ast.NewFuncType([]*ast.CType{ast.TypeInt}, ast.TypeVoid))
	return tc
}

func newScope(parent *Scope) *Scope { return &Scope{Parent: parent} }

func (tc *TypeChecker) enterScope() { tc.currentScope = newScope(tc.currentScope) }

func (tc *TypeChecker) exitScope() {
	if tc.currentScope.Parent != nil {
		tc.currentScope = tc.currentScope.Parent
	}
}

// insert binds name in the innermost scope.
func (tc *TypeChecker) insert(name string, typ *ast.CType) {
	tc.currentScope.Symbols = &Symbol{Name: name, Type: typ, Next: tc.currentScope.Symbols}
}

// findSymbol searches scopes innermost to outermost.
func (tc *TypeChecker) findSymbol(name string) *Symbol {
	for scope := tc.currentScope; scope != nil; scope = scope.Parent {
		for sym := scope.Symbols; sym != nil; sym = sym.Next {
			if sym.Name == name {
				return sym
			}
		}
	}
	return nil
}

// Check annotates the whole top-level declaration list.
func (tc *TypeChecker) Check(root *ast.Node) error {
	block := root.Data.(ast.BlockNode)
	for _, decl := range block.Decls {
		switch d := decl.Data.(type) {
		case ast.VarDeclNode:
			tc.insert(d.Name, d.Type)
			decl.Typ = d.Type
		case ast.FuncDeclNode:
			if err := tc.checkFuncDecl(decl, d); err != nil {
				return err
			}
		}
	}
	root.Typ = ast.TypeVoid
	return nil
}

// checkFuncDecl checks the body inside a fresh frame holding the
// parameters. The function's own name enters the outer scope only after
// the body succeeds, so a body cannot refer to its own function.
func (tc *TypeChecker) checkFuncDecl(node *ast.Node, d ast.FuncDeclNode) error {
	tc.enterScope()
	paramTypes := make([]*ast.CType, len(d.Params))
	for i, param := range d.Params {
		pd := param.Data.(ast.VarDeclNode)
		tc.insert(pd.Name, pd.Type)
		param.Typ = pd.Type
		paramTypes[i] = pd.Type
	}
	if err := tc.checkStmt(d.Body); err != nil {
		return err
	}
	tc.exitScope()

	node.Typ = ast.NewFuncType(paramTypes, d.ReturnType)
	tc.insert(d.Name, node.Typ)
	return nil
}

// Statements

func (tc *TypeChecker) checkStmt(node *ast.Node) error {
	if node == nil {
		return nil
	}
	switch d := node.Data.(type) {
	case ast.BlockNode:
		tc.enterScope()
		for _, decl := range d.Decls {
			vd := decl.Data.(ast.VarDeclNode)
			tc.insert(vd.Name, vd.Type)
			decl.Typ = vd.Type
		}
		for _, stmt := range d.Stmts {
			if err := tc.checkStmt(stmt); err != nil {
				return err
			}
		}
		tc.exitScope()
	case ast.AssignNode:
		return tc.checkAssign(node, d)
	case ast.IfNode:
		// Any type may stand as a condition.
		if _, err := tc.checkExpr(d.Cond); err != nil {
			return err
		}
		if err := tc.checkStmt(d.ThenBody); err != nil {
			return err
		}
		if err := tc.checkStmt(d.ElseBody); err != nil {
			return err
		}
	case ast.WhileNode:
		if _, err := tc.checkExpr(d.Cond); err != nil {
			return err
		}
		if err := tc.checkStmt(d.Body); err != nil {
			return err
		}
	case ast.ForNode:
		if err := tc.checkStmt(d.Init); err != nil {
			return err
		}
		condType, err := tc.checkExpr(d.Cond)
		if err != nil {
			return err
		}
		if !condType.IsAtomic() {
			return util.Errorf(d.Cond.Tok, "For-loop predicate must be integral, got '%s'", ast.TypeToString(condType))
		}
		if err := tc.checkStmt(d.Post); err != nil {
			return err
		}
		if err := tc.checkStmt(d.Body); err != nil {
			return err
		}
	case ast.ReturnNode:
		if d.Expr != nil {
			if _, err := tc.checkExpr(d.Expr); err != nil {
				return err
			}
		}
	default:
		// Expression used as a statement.
		_, err := tc.checkExpr(node)
		return err
	}
	node.Typ = ast.TypeVoid
	return nil
}

// checkAssign validates the target, then requires the right side to
// equal its type. Array-element writes check the index; reads do not.
func (tc *TypeChecker) checkAssign(node *ast.Node, d ast.AssignNode) error {
	var targetType *ast.CType

	switch lhs := d.Lhs.Data.(type) {
	case ast.IdentNode:
		sym := tc.findSymbol(lhs.Name)
		if sym == nil {
			return util.Errorf(d.Lhs.Tok, "Unknown identifier '%s'", lhs.Name)
		}
		targetType = sym.Type
		d.Lhs.Typ = targetType
	case ast.SubscriptNode:
		arrType, err := tc.checkExpr(lhs.Array)
		if err != nil {
			return err
		}
		if arrType.Kind != ast.TYPE_ARRAY {
			return util.Errorf(d.Lhs.Tok, "Subscript target must be an array, got '%s'", ast.TypeToString(arrType))
		}
		idxType, err := tc.checkExpr(lhs.Index)
		if err != nil {
			return err
		}
		if !ast.Equal(idxType, ast.TypeInt) {
			return util.Errorf(lhs.Index.Tok, "Array index must be 'int', got '%s'", ast.TypeToString(idxType))
		}
		targetType = arrType.Base
		d.Lhs.Typ = targetType
	case ast.IndirectionNode:
		ptrType, err := tc.checkExpr(lhs.Expr)
		if err != nil {
			return err
		}
		if ptrType.Kind != ast.TYPE_POINTER {
			return util.Errorf(d.Lhs.Tok, "Cannot dereference non-pointer type '%s'", ast.TypeToString(ptrType))
		}
		targetType = ptrType.Base
		d.Lhs.Typ = targetType
	default:
		return util.Errorf(d.Lhs.Tok, "Left side of assignment is not assignable")
	}

	rhsType, err := tc.checkExpr(d.Rhs)
	if err != nil {
		return err
	}
	if !ast.Equal(rhsType, targetType) {
		return util.Errorf(node.Tok, "Cannot assign '%s' to target of type '%s'",
			ast.TypeToString(rhsType), ast.TypeToString(targetType))
	}
	node.Typ = ast.TypeVoid
	return nil
}

// Expressions

func (tc *TypeChecker) checkExpr(node *ast.Node) (*ast.CType, error) {
	typ, err := tc.exprType(node)
	if err != nil {
		return nil, err
	}
	node.Typ = typ
	return typ, nil
}

func (tc *TypeChecker) exprType(node *ast.Node) (*ast.CType, error) {
	switch d := node.Data.(type) {
	case ast.NumberNode:
		return ast.TypeInt, nil
	case ast.CharNode:
		return ast.TypeChar, nil
	case ast.IdentNode:
		sym := tc.findSymbol(d.Name)
		if sym == nil {
			return nil, util.Errorf(node.Tok, "Unknown identifier '%s'", d.Name)
		}
		return sym.Type, nil
	case ast.BinaryOpNode:
		leftType, err := tc.checkExpr(d.Left)
		if err != nil {
			return nil, err
		}
		rightType, err := tc.checkExpr(d.Right)
		if err != nil {
			return nil, err
		}
		if !leftType.IsAtomic() {
			return nil, tc.integralOperandError(node.Tok, d.Op, leftType)
		}
		if !rightType.IsAtomic() {
			return nil, tc.integralOperandError(node.Tok, d.Op, rightType)
		}
		return ast.TypeInt, nil
	case ast.UnaryOpNode:
		operandType, err := tc.checkExpr(d.Expr)
		if err != nil {
			return nil, err
		}
		if !operandType.IsAtomic() {
			return nil, tc.integralOperandError(node.Tok, d.Op, operandType)
		}
		return ast.TypeInt, nil
	case ast.PrefixOpNode:
		operandType, err := tc.checkExpr(d.LValue)
		if err != nil {
			return nil, err
		}
		if !operandType.IsAtomic() {
			return nil, tc.integralOperandError(node.Tok, d.Op, operandType)
		}
		return ast.TypeInt, nil
	case ast.PostfixOpNode:
		operandType, err := tc.checkExpr(d.LValue)
		if err != nil {
			return nil, err
		}
		if !operandType.IsAtomic() {
			return nil, tc.integralOperandError(node.Tok, d.Op, operandType)
		}
		return ast.TypeInt, nil
	case ast.SubscriptNode:
		// Read position. The index expression is not checked here; only
		// array-element writes validate their index.
		arrType, err := tc.checkExpr(d.Array)
		if err != nil {
			return nil, err
		}
		if arrType.Kind != ast.TYPE_ARRAY {
			return nil, util.Errorf(node.Tok, "Subscript target must be an array, got '%s'", ast.TypeToString(arrType))
		}
		return arrType.Base, nil
	case ast.LengthNode:
		operandType, err := tc.checkExpr(d.Expr)
		if err != nil {
			return nil, err
		}
		if operandType.Kind != ast.TYPE_ARRAY {
			return nil, util.Errorf(node.Tok, "Operand of 'length' must be an array, got '%s'", ast.TypeToString(operandType))
		}
		return ast.TypeInt, nil
	case ast.AddressOfNode:
		operandType, err := tc.checkExpr(d.LValue)
		if err != nil {
			return nil, err
		}
		return ast.NewPointerType(operandType), nil
	case ast.IndirectionNode:
		operandType, err := tc.checkExpr(d.Expr)
		if err != nil {
			return nil, err
		}
		if operandType.Kind != ast.TYPE_POINTER {
			return nil, util.Errorf(node.Tok, "Cannot dereference non-pointer type '%s'", ast.TypeToString(operandType))
		}
		return operandType.Base, nil
	case ast.FuncCallNode:
		sym := tc.findSymbol(d.Name)
		if sym == nil {
			return nil, util.Errorf(node.Tok, "Unknown identifier '%s'", d.Name)
		}
		if sym.Type.Kind != ast.TYPE_FUNC {
			return nil, util.Errorf(node.Tok, "'%s' is not a function, it has type '%s'", d.Name, ast.TypeToString(sym.Type))
		}
		if len(d.Args) != len(sym.Type.Params) {
			return nil, util.Errorf(node.Tok, "'%s' expects %d arguments, got %d", d.Name, len(sym.Type.Params), len(d.Args))
		}
		for i, arg := range d.Args {
			argType, err := tc.checkExpr(arg)
			if err != nil {
				return nil, err
			}
			if !ast.Equal(argType, sym.Type.Params[i]) {
				return nil, util.Errorf(arg.Tok, "Argument %d of '%s' has type '%s', expected '%s'",
					i+1, d.Name, ast.TypeToString(argType), ast.TypeToString(sym.Type.Params[i]))
			}
		}
		return sym.Type.Result, nil
	default:
		return nil, util.Errorf(node.Tok, "Expression expected")
	}
}

func (tc *TypeChecker) integralOperandError(tok token.Token, op token.Type, got *ast.CType) error {
	return util.Errorf(tok, "Operator '%s' requires integral operands, got '%s'", op, ast.TypeToString(got))
}
