// Package tac defines the three-address-code instruction set the code
// generator lowers into and the backend consumes.
package tac

import (
	"fmt"
	"strings"

	"mcc/pkg/ast"
)

// Op is a three-address-code opcode.
type Op int

// Opcodes enum
const (
	// Arithmetic and logic. Dst receives the result.
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpInv // arithmetic negation
	OpNot
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec

	// Comparisons; the result is an Int, 0 or 1.
	OpEql
	OpNql
	OpLss
	OpLeq
	OpGtr
	OpGeq

	// Logical connectives. No short-circuit; both operands are evaluated.
	OpAnd
	OpOr
	OpXor

	// Control flow. Marker identifies the label; markers are unique
	// within their function only.
	OpLbl
	OpJmp
	OpJz
	OpJnz

	// Calls
	OpArg
	OpCall
	OpPrint

	// Data movement
	OpMov
	OpAsn
	OpCast
	OpAddr
	OpDeref

	// Returns
	OpRetVoid
	OpRet
	OpExit
)

var opNames = map[Op]string{
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div",
	OpInv: "Inv", OpNot: "Not",
	OpPreInc: "PreInc", OpPreDec: "PreDec",
	OpPostInc: "PostInc", OpPostDec: "PostDec",
	OpEql: "Eql", OpNql: "Nql",
	OpLss: "Lss", OpLeq: "Leq", OpGtr: "Gtr", OpGeq: "Geq",
	OpAnd: "And", OpOr: "Or", OpXor: "Xor",
	OpLbl: "Lbl", OpJmp: "Jmp", OpJz: "Jz", OpJnz: "Jnz",
	OpArg: "Arg", OpCall: "Call", OpPrint: "Print",
	OpMov: "Mov", OpAsn: "Asn", OpCast: "Cast",
	OpAddr: "Addr", OpDeref: "Deref",
	OpRetVoid: "RetVoid", OpRet: "Ret", OpExit: "Exit",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Input is anything an instruction can read: a literal or a location.
type Input interface {
	isInput()
	Type() *ast.CType
	String() string
}

// Location is a storage place an instruction can read or write.
// Addresses are unique within their own address space only; Global(3)
// and Local(3) coexist validly.
type Location interface {
	Input
	isLocation()
}

// Literal is an immediate operand.
type Literal struct {
	Value int64
	Typ   *ast.CType
}

// Global is a slot in the global address space. Functions occupy one
// global slot each, like variables.
type Global struct {
	Addr int
	Typ  *ast.CType
}

// Param is a slot in the current function's parameter space.
type Param struct {
	Addr int
	Typ  *ast.CType
}

// Local is a slot in the current function's frame. Named locals and
// temporaries both live here.
type Local struct {
	Addr int
	Typ  *ast.CType
}

// PointsTo reads or writes through the address held in Loc, one
// indirection deeper than Loc itself.
type PointsTo struct {
	Loc Location
	Typ *ast.CType
}

func (Literal) isInput()   {}
func (*Global) isInput()   {}
func (*Param) isInput()    {}
func (*Local) isInput()    {}
func (*PointsTo) isInput() {}

func (*Global) isLocation()   {}
func (*Param) isLocation()    {}
func (*Local) isLocation()    {}
func (*PointsTo) isLocation() {}

func (l Literal) Type() *ast.CType   { return l.Typ }
func (g *Global) Type() *ast.CType   { return g.Typ }
func (p *Param) Type() *ast.CType    { return p.Typ }
func (l *Local) Type() *ast.CType    { return l.Typ }
func (p *PointsTo) Type() *ast.CType { return p.Typ }

func (l Literal) String() string   { return fmt.Sprintf("%d", l.Value) }
func (g *Global) String() string   { return fmt.Sprintf("G%d", g.Addr) }
func (p *Param) String() string    { return fmt.Sprintf("P%d", p.Addr) }
func (l *Local) String() string    { return fmt.Sprintf("L%d", l.Addr) }
func (p *PointsTo) String() string { return fmt.Sprintf("[%s]", p.Loc) }

// Instruction is one three-address-code instruction. Which fields are
// meaningful depends on Op: Dst/Args for data ops, Marker for
// labels/jumps, Callee/NArgs for calls.
type Instruction struct {
	Op     Op
	Dst    Location
	Args   []Input
	Marker int
	Callee string
	NArgs  int
}

func (ins Instruction) String() string {
	switch ins.Op {
	case OpLbl, OpJmp:
		return fmt.Sprintf("%s M%d", ins.Op, ins.Marker)
	case OpJz, OpJnz:
		return fmt.Sprintf("%s M%d, %s", ins.Op, ins.Marker, ins.Args[0])
	case OpCall:
		return fmt.Sprintf("%s %s, %s, %d", ins.Op, ins.Dst, ins.Callee, ins.NArgs)
	case OpRetVoid, OpExit:
		return ins.Op.String()
	}
	parts := make([]string, 0, 1+len(ins.Args))
	if ins.Dst != nil {
		parts = append(parts, ins.Dst.String())
	}
	for _, arg := range ins.Args {
		parts = append(parts, arg.String())
	}
	return fmt.Sprintf("%s %s", ins.Op, strings.Join(parts, ", "))
}

// Func is the lowered form of one function.
type Func struct {
	Name      string
	NumParams int
	NumLocals int
	NumTemps  int
	Instrs    []Instruction
}

func (f *Func) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s (params=%d locals=%d temps=%d)\n", f.Name, f.NumParams, f.NumLocals, f.NumTemps)
	for _, ins := range f.Instrs {
		fmt.Fprintf(&sb, "    %s\n", ins)
	}
	return sb.String()
}

// GlobalVar describes one global variable slot.
type GlobalVar struct {
	Name string
	Addr int
	Size int // bytes
	Init *int64
}

func (g GlobalVar) String() string {
	if g.Init != nil {
		return fmt.Sprintf("global %s G%d size=%d init=%d", g.Name, g.Addr, g.Size, *g.Init)
	}
	return fmt.Sprintf("global %s G%d size=%d", g.Name, g.Addr, g.Size)
}

// Program is the container handed to the backend: global descriptors,
// the general function list, and the designated entry function if one
// was named.
type Program struct {
	Globals []GlobalVar
	Funcs   []*Func
	Entry   *Func
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, g := range p.Globals {
		sb.WriteString(g.String())
		sb.WriteByte('\n')
	}
	for _, f := range p.Funcs {
		sb.WriteString(f.String())
	}
	if p.Entry != nil {
		sb.WriteString(p.Entry.String())
	}
	return sb.String()
}
