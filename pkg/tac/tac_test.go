package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mcc/pkg/ast"
)

func TestLocationRendering(t *testing.T) {
	assert.Equal(t, "G0", (&Global{Addr: 0, Typ: ast.TypeInt}).String())
	assert.Equal(t, "P1", (&Param{Addr: 1, Typ: ast.TypeInt}).String())
	assert.Equal(t, "L2", (&Local{Addr: 2, Typ: ast.TypeInt}).String())
	assert.Equal(t, "[L2]", (&PointsTo{Loc: &Local{Addr: 2, Typ: ast.TypeInt}, Typ: ast.TypeInt}).String())
	assert.Equal(t, "42", Literal{Value: 42, Typ: ast.TypeInt}.String())
}

func TestInstructionRendering(t *testing.T) {
	l := func(addr int) *Local { return &Local{Addr: addr, Typ: ast.TypeInt} }

	cases := []struct {
		want string
		ins  Instruction
	}{
		{"Add L3, L1, L2", Instruction{Op: OpAdd, Dst: l(3), Args: []Input{l(1), l(2)}}},
		{"Mov L1, 2", Instruction{Op: OpMov, Dst: l(1), Args: []Input{Literal{Value: 2, Typ: ast.TypeInt}}}},
		{"Asn [L2], L5", Instruction{Op: OpAsn, Dst: &PointsTo{Loc: l(2), Typ: ast.TypeInt}, Args: []Input{l(5)}}},
		{"Lbl M0", Instruction{Op: OpLbl, Marker: 0}},
		{"Jmp M1", Instruction{Op: OpJmp, Marker: 1}},
		{"Jz M2, L4", Instruction{Op: OpJz, Marker: 2, Args: []Input{l(4)}}},
		{"Arg L0", Instruction{Op: OpArg, Args: []Input{l(0)}}},
		{"Call L5, add, 2", Instruction{Op: OpCall, Dst: l(5), Callee: "add", NArgs: 2}},
		{"Print L5", Instruction{Op: OpPrint, Dst: l(5)}},
		{"Ret L0", Instruction{Op: OpRet, Args: []Input{l(0)}}},
		{"RetVoid", Instruction{Op: OpRetVoid}},
		{"Exit", Instruction{Op: OpExit}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.ins.String())
	}
}

func TestGlobalVarRendering(t *testing.T) {
	assert.Equal(t, "global x G0 size=8", GlobalVar{Name: "x", Addr: 0, Size: 8}.String())

	init := int64(7)
	assert.Equal(t, "global x G1 size=8 init=7", GlobalVar{Name: "x", Addr: 1, Size: 8, Init: &init}.String())
}
