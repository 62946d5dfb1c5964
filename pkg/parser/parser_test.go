package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcc/pkg/ast"
	"mcc/pkg/config"
	"mcc/pkg/lexer"
	"mcc/pkg/token"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	toks, err := lexer.NewLexer([]rune(src), 0, config.NewConfig()).Tokenize()
	require.NoError(t, err)
	root, err := NewParser(toks).Parse()
	require.NoError(t, err)
	return root
}

func parseErr(t *testing.T, src string) error {
	t.Helper()
	toks, err := lexer.NewLexer([]rune(src), 0, config.NewConfig()).Tokenize()
	require.NoError(t, err)
	_, err = NewParser(toks).Parse()
	require.Error(t, err)
	return err
}

// mainBody returns the statements of the sole function in src.
func mainBody(t *testing.T, src string) ast.BlockNode {
	t.Helper()
	root := parse(t, src)
	decls := root.Data.(ast.BlockNode).Decls
	require.Len(t, decls, 1)
	fn := decls[0].Data.(ast.FuncDeclNode)
	return fn.Body.Data.(ast.BlockNode)
}

func TestGlobalAndFunctionDecls(t *testing.T) {
	root := parse(t, "int g; int f(int a, char b) { return a; }")
	decls := root.Data.(ast.BlockNode).Decls
	require.Len(t, decls, 2)

	g := decls[0].Data.(ast.VarDeclNode)
	assert.Equal(t, "g", g.Name)
	assert.Equal(t, ast.TYPE_INT, g.Type.Kind)

	f := decls[1].Data.(ast.FuncDeclNode)
	assert.Equal(t, "f", f.Name)
	require.Len(t, f.Params, 2)
	assert.Equal(t, ast.TYPE_CHAR, f.Params[1].Data.(ast.VarDeclNode).Type.Kind)
	assert.Equal(t, ast.TYPE_INT, f.ReturnType.Kind)
}

func TestArrayAndPointerDecls(t *testing.T) {
	root := parse(t, "int a[10]; char* p; void f(void) { }")
	decls := root.Data.(ast.BlockNode).Decls
	require.Len(t, decls, 3)

	arr := decls[0].Data.(ast.VarDeclNode).Type
	require.Equal(t, ast.TYPE_ARRAY, arr.Kind)
	assert.Equal(t, 10, arr.Size)
	assert.Equal(t, ast.TYPE_INT, arr.Base.Kind)

	ptr := decls[1].Data.(ast.VarDeclNode).Type
	require.Equal(t, ast.TYPE_POINTER, ptr.Kind)
	assert.Equal(t, ast.TYPE_CHAR, ptr.Base.Kind)

	assert.Empty(t, decls[2].Data.(ast.FuncDeclNode).Params)
}

func TestPrecedence(t *testing.T) {
	body := mainBody(t, "int f() { return 1 + 2 * 3; }")
	ret := body.Stmts[0].Data.(ast.ReturnNode)
	add := ret.Expr.Data.(ast.BinaryOpNode)
	require.Equal(t, token.Plus, add.Op)
	mul := add.Right.Data.(ast.BinaryOpNode)
	assert.Equal(t, token.Star, mul.Op)
}

func TestComparisonBindsTighterThanLogical(t *testing.T) {
	body := mainBody(t, "int f() { return 1 < 2 && 3 < 4; }")
	and := body.Stmts[0].Data.(ast.ReturnNode).Expr.Data.(ast.BinaryOpNode)
	require.Equal(t, token.AndAnd, and.Op)
	assert.Equal(t, token.Lt, and.Left.Data.(ast.BinaryOpNode).Op)
	assert.Equal(t, token.Lt, and.Right.Data.(ast.BinaryOpNode).Op)
}

func TestIfMarkers(t *testing.T) {
	body := mainBody(t, "void f() { if (1) { } if (2) { } else { } }")

	plain := body.Stmts[0].Data.(ast.IfNode)
	assert.Equal(t, 0, plain.MEnd)
	assert.Nil(t, plain.ElseBody)

	full := body.Stmts[1].Data.(ast.IfNode)
	assert.Equal(t, 1, full.MElse)
	assert.Equal(t, 2, full.MEnd)
	assert.NotNil(t, full.ElseBody)
}

func TestWhileMarkers(t *testing.T) {
	body := mainBody(t, "void f() { while (1) { } }")
	loop := body.Stmts[0].Data.(ast.WhileNode)
	assert.Equal(t, 0, loop.MHead)
	assert.Equal(t, 1, loop.MEnd)
}

func TestForMarkers(t *testing.T) {
	body := mainBody(t, "void f() { int i; for (i = 0; i < 10; i = i + 1) { } }")
	loop := body.Stmts[0].Data.(ast.ForNode)
	assert.Equal(t, 0, loop.M1)
	assert.Equal(t, 1, loop.M2)
	assert.Equal(t, 2, loop.M3)
	assert.Equal(t, 3, loop.M4)
	assert.NotNil(t, loop.Init)
	assert.NotNil(t, loop.Post)
}

func TestMarkersRestartPerFunction(t *testing.T) {
	root := parse(t, "void f() { while (1) { } } void g() { while (1) { } }")
	decls := root.Data.(ast.BlockNode).Decls
	require.Len(t, decls, 2)
	for _, decl := range decls {
		body := decl.Data.(ast.FuncDeclNode).Body.Data.(ast.BlockNode)
		loop := body.Stmts[0].Data.(ast.WhileNode)
		assert.Equal(t, 0, loop.MHead)
		assert.Equal(t, 1, loop.MEnd)
	}
}

func TestMarkersUniqueWithinFunction(t *testing.T) {
	body := mainBody(t, "void f() { while (1) { if (2) { } } while (3) { } }")
	first := body.Stmts[0].Data.(ast.WhileNode)
	inner := first.Body.Data.(ast.BlockNode).Stmts[0].Data.(ast.IfNode)
	second := body.Stmts[1].Data.(ast.WhileNode)

	seen := map[int]bool{}
	for _, m := range []int{first.MHead, first.MEnd, inner.MEnd, second.MHead, second.MEnd} {
		assert.False(t, seen[m], "marker %d assigned twice", m)
		seen[m] = true
	}
}

func TestAssignmentRequiresLValue(t *testing.T) {
	err := parseErr(t, "void f() { 1 = 2; }")
	assert.Contains(t, err.Error(), "not assignable")
}

func TestSubscriptAndUnaryTargets(t *testing.T) {
	body := mainBody(t, "void f() { int a[4]; a[1] = 2; *p = 3; ++a[0]; }")
	require.Len(t, body.Stmts, 3)

	sub := body.Stmts[0].Data.(ast.AssignNode)
	assert.Equal(t, ast.Subscript, sub.Lhs.Type)

	deref := body.Stmts[1].Data.(ast.AssignNode)
	assert.Equal(t, ast.Indirection, deref.Lhs.Type)

	inc := body.Stmts[2].Data.(ast.PrefixOpNode)
	assert.Equal(t, ast.Subscript, inc.LValue.Type)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"missing semicolon", "void f() { return 1 }", "Expected ';'"},
		{"decl after stmt", "void f() { return; int x; }", "precede"},
		{"void variable", "void x;", "declared void"},
		{"missing paren", "void f() { if 1 { } }", "Expected '('"},
		{"bad expression", "void f() { return +; }", "expression"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := parseErr(t, tc.src)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
