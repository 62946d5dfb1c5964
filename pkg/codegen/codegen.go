// Package codegen lowers the typed AST into three-address code.
//
// The generator assumes its input already passed the type checker. It
// performs no validation of its own; any lookup failure in here is an
// internal-consistency bug reported as a plain error, never a positioned
// user diagnostic.
package codegen

import (
	"tlog.app/go/errors"

	"mcc/pkg/ast"
	"mcc/pkg/config"
	"mcc/pkg/tac"
	"mcc/pkg/token"
)

type symbol struct {
	name string
	loc  tac.Location
	next *symbol
}

type scope struct {
	symbols *symbol
	parent  *scope
}

// Generator threads the location environment and the four address
// counters through the lowering of one program.
type Generator struct {
	currentScope *scope

	// Address counters. Globals are program-wide; the other three reset
	// on every function entry. Locals and temporaries share the frame
	// address space: a local is carved out of the temporary counter.
	globalCount int
	paramCount  int
	localCount  int
	tempCount   int

	instrs []tac.Instruction
	cfg    *config.Config
}

func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{currentScope: &scope{}, cfg: cfg}
}

func (g *Generator) enterScope() { g.currentScope = &scope{parent: g.currentScope} }

func (g *Generator) exitScope() {
	if g.currentScope.parent != nil {
		g.currentScope = g.currentScope.parent
	}
}

func (g *Generator) bind(name string, loc tac.Location) {
	g.currentScope.symbols = &symbol{name: name, loc: loc, next: g.currentScope.symbols}
}

func (g *Generator) lookup(name string) (tac.Location, error) {
	for s := g.currentScope; s != nil; s = s.parent {
		for sym := s.symbols; sym != nil; sym = sym.next {
			if sym.name == name {
				return sym.loc, nil
			}
		}
	}
	return nil, errors.New("address of '%s' not found", name)
}

// newTemp allocates the next temporary slot in the current frame.
func (g *Generator) newTemp(typ *ast.CType) *tac.Local {
	loc := &tac.Local{Addr: g.tempCount, Typ: typ}
	g.tempCount++
	return loc
}

// newLocal allocates a named local. It takes the current temporary
// address and advances both counters so locals and temporaries never
// collide.
func (g *Generator) newLocal(typ *ast.CType) *tac.Local {
	loc := g.newTemp(typ)
	g.localCount++
	return loc
}

func (g *Generator) newParam(typ *ast.CType) *tac.Param {
	loc := &tac.Param{Addr: g.paramCount, Typ: typ}
	g.paramCount++
	return loc
}

func (g *Generator) emit(ins tac.Instruction) {
	g.instrs = append(g.instrs, ins)
}

// Generate lowers the top-level declaration list into a program
// container. A function named main becomes the entry function and, in a
// final pass, has its void-returns rewritten to program exits.
func (g *Generator) Generate(root *ast.Node) (*tac.Program, error) {
	prog := &tac.Program{}
	block := root.Data.(ast.BlockNode)

	for _, decl := range block.Decls {
		switch d := decl.Data.(type) {
		case ast.VarDeclNode:
			addr := g.globalCount
			g.globalCount++
			g.bind(d.Name, &tac.Global{Addr: addr, Typ: d.Type})
			prog.Globals = append(prog.Globals, tac.GlobalVar{
				Name: d.Name, Addr: addr, Size: g.cfg.WordSize,
			})
		case ast.FuncDeclNode:
			fn, err := g.genFunc(decl, d)
			if err != nil {
				return nil, err
			}
			if d.Name == "main" {
				prog.Entry = fn
			} else {
				prog.Funcs = append(prog.Funcs, fn)
			}
		}
	}

	if prog.Entry != nil {
		for i := range prog.Entry.Instrs {
			if prog.Entry.Instrs[i].Op == tac.OpRetVoid {
				prog.Entry.Instrs[i].Op = tac.OpExit
			}
		}
	}
	return prog, nil
}

// genFunc lowers one function body. The function itself occupies one
// global slot; the per-frame counters restart at zero while the global
// counter keeps running.
func (g *Generator) genFunc(node *ast.Node, d ast.FuncDeclNode) (*tac.Func, error) {
	slot := g.globalCount
	g.globalCount++

	g.paramCount, g.localCount, g.tempCount = 0, 0, 0
	g.instrs = nil

	g.enterScope()
	for _, param := range d.Params {
		pd := param.Data.(ast.VarDeclNode)
		g.bind(pd.Name, g.newParam(pd.Type))
	}
	if err := g.genStmt(d.Body); err != nil {
		return nil, err
	}
	g.exitScope()

	g.bind(d.Name, &tac.Global{Addr: slot, Typ: node.Typ})

	return &tac.Func{
		Name:      d.Name,
		NumParams: g.paramCount,
		NumLocals: g.localCount,
		NumTemps:  g.tempCount,
		Instrs:    g.instrs,
	}, nil
}

// Statements

func (g *Generator) genStmt(node *ast.Node) error {
	if node == nil {
		return nil
	}
	switch d := node.Data.(type) {
	case ast.BlockNode:
		g.enterScope()
		for _, decl := range d.Decls {
			vd := decl.Data.(ast.VarDeclNode)
			g.bind(vd.Name, g.newLocal(vd.Type))
		}
		for _, stmt := range d.Stmts {
			if err := g.genStmt(stmt); err != nil {
				return err
			}
		}
		g.exitScope()
		return nil
	case ast.AssignNode:
		return g.genAssign(d)
	case ast.IfNode:
		return g.genIf(d)
	case ast.WhileNode:
		return g.genWhile(d)
	case ast.ForNode:
		return g.genFor(d)
	case ast.ReturnNode:
		if d.Expr == nil {
			g.emit(tac.Instruction{Op: tac.OpRetVoid})
			return nil
		}
		result, err := g.genExpr(d.Expr)
		if err != nil {
			return err
		}
		g.emit(tac.Instruction{Op: tac.OpRet, Args: []tac.Input{result}})
		return nil
	default:
		// Expression statement; the result location is discarded.
		_, err := g.genExpr(node)
		return err
	}
}

// genAssign lowers stores. Plain variables lower the right side first;
// stores through a pointer or into an array element compute the target
// address before the right side.
func (g *Generator) genAssign(d ast.AssignNode) error {
	if d.Lhs.Type == ast.Ident {
		result, err := g.genExpr(d.Rhs)
		if err != nil {
			return err
		}
		loc, err := g.lookup(d.Lhs.Data.(ast.IdentNode).Name)
		if err != nil {
			return err
		}
		g.emitStore(tac.OpAsn, loc, result)
		return nil
	}

	place, err := g.genPlace(d.Lhs)
	if err != nil {
		return err
	}
	result, err := g.genExpr(d.Rhs)
	if err != nil {
		return err
	}
	g.emitStore(tac.OpAsn, place, result)
	return nil
}

func (g *Generator) genIf(d ast.IfNode) error {
	cond, err := g.genExpr(d.Cond)
	if err != nil {
		return err
	}
	if d.ElseBody == nil {
		g.emit(tac.Instruction{Op: tac.OpJz, Marker: d.MEnd, Args: []tac.Input{cond}})
		if err := g.genStmt(d.ThenBody); err != nil {
			return err
		}
		g.emit(tac.Instruction{Op: tac.OpLbl, Marker: d.MEnd})
		return nil
	}
	g.emit(tac.Instruction{Op: tac.OpJz, Marker: d.MElse, Args: []tac.Input{cond}})
	if err := g.genStmt(d.ThenBody); err != nil {
		return err
	}
	g.emit(tac.Instruction{Op: tac.OpJmp, Marker: d.MEnd})
	g.emit(tac.Instruction{Op: tac.OpLbl, Marker: d.MElse})
	if err := g.genStmt(d.ElseBody); err != nil {
		return err
	}
	g.emit(tac.Instruction{Op: tac.OpLbl, Marker: d.MEnd})
	return nil
}

func (g *Generator) genWhile(d ast.WhileNode) error {
	g.emit(tac.Instruction{Op: tac.OpLbl, Marker: d.MHead})
	cond, err := g.genExpr(d.Cond)
	if err != nil {
		return err
	}
	g.emit(tac.Instruction{Op: tac.OpJz, Marker: d.MEnd, Args: []tac.Input{cond}})
	if err := g.genStmt(d.Body); err != nil {
		return err
	}
	g.emit(tac.Instruction{Op: tac.OpJmp, Marker: d.MHead})
	g.emit(tac.Instruction{Op: tac.OpLbl, Marker: d.MEnd})
	return nil
}

// genFor emits the fixed four-marker shape the backend expects: the
// predicate sits right after the initializer, the increment block
// between markers two and three, the body last, jumping back into the
// increment.
func (g *Generator) genFor(d ast.ForNode) error {
	if err := g.genStmt(d.Init); err != nil {
		return err
	}
	g.emit(tac.Instruction{Op: tac.OpLbl, Marker: d.M1})
	cond, err := g.genExpr(d.Cond)
	if err != nil {
		return err
	}
	g.emit(tac.Instruction{Op: tac.OpJz, Marker: d.M4, Args: []tac.Input{cond}})
	g.emit(tac.Instruction{Op: tac.OpJmp, Marker: d.M3})
	g.emit(tac.Instruction{Op: tac.OpLbl, Marker: d.M2})
	if err := g.genStmt(d.Post); err != nil {
		return err
	}
	g.emit(tac.Instruction{Op: tac.OpJmp, Marker: d.M1})
	g.emit(tac.Instruction{Op: tac.OpLbl, Marker: d.M3})
	if err := g.genStmt(d.Body); err != nil {
		return err
	}
	g.emit(tac.Instruction{Op: tac.OpJmp, Marker: d.M2})
	g.emit(tac.Instruction{Op: tac.OpLbl, Marker: d.M4})
	return nil
}

// Expressions

// genExpr lowers an expression and returns the location holding its
// value.
func (g *Generator) genExpr(node *ast.Node) (tac.Location, error) {
	switch d := node.Data.(type) {
	case ast.NumberNode:
		// The temporary takes the literal's own atomic type. Annotations
		// are not consulted here; an unchecked subscript index reaches
		// this path without one.
		t := g.newTemp(ast.TypeInt)
		g.emitStore(tac.OpMov, t, tac.Literal{Value: d.Value, Typ: ast.TypeInt})
		return t, nil
	case ast.CharNode:
		t := g.newTemp(ast.TypeChar)
		g.emitStore(tac.OpMov, t, tac.Literal{Value: d.Value, Typ: ast.TypeChar})
		return t, nil
	case ast.IdentNode:
		return g.lookup(d.Name)
	case ast.BinaryOpNode:
		left, err := g.genExpr(d.Left)
		if err != nil {
			return nil, err
		}
		right, err := g.genExpr(d.Right)
		if err != nil {
			return nil, err
		}
		op, err := binaryOp(d.Op)
		if err != nil {
			return nil, err
		}
		t := g.newTemp(node.Typ)
		g.emit(tac.Instruction{Op: op, Dst: t, Args: []tac.Input{left, right}})
		return t, nil
	case ast.UnaryOpNode:
		operand, err := g.genExpr(d.Expr)
		if err != nil {
			return nil, err
		}
		op := tac.OpInv
		if d.Op == token.Not {
			op = tac.OpNot
		}
		t := g.newTemp(node.Typ)
		g.emit(tac.Instruction{Op: op, Dst: t, Args: []tac.Input{operand}})
		return t, nil
	case ast.PrefixOpNode:
		op := tac.OpPreInc
		if d.Op == token.Dec {
			op = tac.OpPreDec
		}
		return g.genIncDec(node, op, d.LValue)
	case ast.PostfixOpNode:
		op := tac.OpPostInc
		if d.Op == token.Dec {
			op = tac.OpPostDec
		}
		return g.genIncDec(node, op, d.LValue)
	case ast.SubscriptNode:
		addr, err := g.genElemAddr(node, d)
		if err != nil {
			return nil, err
		}
		t := g.newTemp(node.Typ)
		g.emit(tac.Instruction{Op: tac.OpDeref, Dst: t, Args: []tac.Input{addr}})
		return t, nil
	case ast.LengthNode:
		// Array lengths are static, so the operator collapses to its
		// operand's declared size.
		arrType := d.Expr.Typ
		if arrType == nil || arrType.Kind != ast.TYPE_ARRAY {
			return nil, errors.New("length operand is not an array")
		}
		t := g.newTemp(node.Typ)
		g.emitStore(tac.OpMov, t, tac.Literal{Value: int64(arrType.Size), Typ: ast.TypeInt})
		return t, nil
	case ast.AddressOfNode:
		place, err := g.genPlace(d.LValue)
		if err != nil {
			return nil, err
		}
		t := g.newTemp(node.Typ)
		g.emit(tac.Instruction{Op: tac.OpAddr, Dst: t, Args: []tac.Input{
			&tac.PointsTo{Loc: place, Typ: d.LValue.Typ},
		}})
		return t, nil
	case ast.IndirectionNode:
		inner, err := g.genExpr(d.Expr)
		if err != nil {
			return nil, err
		}
		t := g.newTemp(node.Typ)
		g.emit(tac.Instruction{Op: tac.OpDeref, Dst: t, Args: []tac.Input{inner}})
		return t, nil
	case ast.FuncCallNode:
		for _, arg := range d.Args {
			loc, err := g.genExpr(arg)
			if err != nil {
				return nil, err
			}
			g.emit(tac.Instruction{Op: tac.OpArg, Args: []tac.Input{loc}})
		}
		t := g.newTemp(node.Typ)
		if d.Name == "print" {
			g.emit(tac.Instruction{Op: tac.OpPrint, Dst: t})
		} else {
			g.emit(tac.Instruction{Op: tac.OpCall, Dst: t, Callee: d.Name, NArgs: len(d.Args)})
		}
		return t, nil
	default:
		return nil, errors.New("cannot lower node kind %d as an expression", int(node.Type))
	}
}

func (g *Generator) genIncDec(node *ast.Node, op tac.Op, lvalue *ast.Node) (tac.Location, error) {
	operand, err := g.genExpr(lvalue)
	if err != nil {
		return nil, err
	}
	t := g.newTemp(node.Typ)
	g.emit(tac.Instruction{Op: op, Dst: t, Args: []tac.Input{operand}})
	return t, nil
}

// genPlace lowers a left-expression to the location to store into,
// without reading from it.
func (g *Generator) genPlace(node *ast.Node) (tac.Location, error) {
	switch d := node.Data.(type) {
	case ast.IdentNode:
		return g.lookup(d.Name)
	case ast.IndirectionNode:
		inner, err := g.genExpr(d.Expr)
		if err != nil {
			return nil, err
		}
		return &tac.PointsTo{Loc: inner, Typ: node.Typ}, nil
	case ast.SubscriptNode:
		addr, err := g.genElemAddr(node, d)
		if err != nil {
			return nil, err
		}
		return &tac.PointsTo{Loc: addr, Typ: node.Typ}, nil
	default:
		return nil, errors.New("node kind %d is not a place", int(node.Type))
	}
}

// genElemAddr computes the address of arr[index]: take the array's
// address, add the index, and hand back the temporary holding the sum.
func (g *Generator) genElemAddr(node *ast.Node, d ast.SubscriptNode) (*tac.Local, error) {
	arrLoc, err := g.genPlace(d.Array)
	if err != nil {
		return nil, err
	}
	elemPtr := ast.NewPointerType(node.Typ)
	base := g.newTemp(elemPtr)
	g.emit(tac.Instruction{Op: tac.OpAddr, Dst: base, Args: []tac.Input{
		&tac.PointsTo{Loc: arrLoc, Typ: d.Array.Typ},
	}})
	index, err := g.genExpr(d.Index)
	if err != nil {
		return nil, err
	}
	sum := g.newTemp(elemPtr)
	g.emit(tac.Instruction{Op: tac.OpAdd, Dst: sum, Args: []tac.Input{base, index}})
	return sum, nil
}

// emitStore writes src into dst, inserting a cast when a literal's type
// differs from the destination's. Non-literal inputs are never cast.
func (g *Generator) emitStore(op tac.Op, dst tac.Location, src tac.Input) {
	if lit, ok := src.(tac.Literal); ok {
		if dstType := dst.Type(); dstType != nil && lit.Typ.Kind != dstType.Kind && dstType.IsAtomic() {
			t := g.newTemp(dstType)
			g.emit(tac.Instruction{Op: tac.OpCast, Dst: t, Args: []tac.Input{lit}})
			src = t
		}
	}
	g.emit(tac.Instruction{Op: op, Dst: dst, Args: []tac.Input{src}})
}

func binaryOp(op token.Type) (tac.Op, error) {
	switch op {
	case token.Plus:
		return tac.OpAdd, nil
	case token.Minus:
		return tac.OpSub, nil
	case token.Star:
		return tac.OpMul, nil
	case token.Slash:
		return tac.OpDiv, nil
	case token.EqEq:
		return tac.OpEql, nil
	case token.Neq:
		return tac.OpNql, nil
	case token.Lt:
		return tac.OpLss, nil
	case token.Lte:
		return tac.OpLeq, nil
	case token.Gt:
		return tac.OpGtr, nil
	case token.Gte:
		return tac.OpGeq, nil
	case token.AndAnd:
		return tac.OpAnd, nil
	case token.OrOr:
		return tac.OpOr, nil
	case token.Xor:
		return tac.OpXor, nil
	default:
		return 0, errors.New("no instruction for operator '%s'", op)
	}
}
