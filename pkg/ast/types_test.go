package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mcc/pkg/token"
)

func tokenAt() token.Token { return token.Token{Line: 1, Column: 1} }

func TestEqualAtomicTypesAreInterchangeable(t *testing.T) {
	assert.True(t, Equal(TypeInt, TypeInt))
	assert.True(t, Equal(TypeChar, TypeChar))
	assert.True(t, Equal(TypeInt, TypeChar))
	assert.True(t, Equal(TypeChar, TypeInt))

	assert.False(t, Equal(TypeInt, TypeVoid))
	assert.False(t, Equal(TypeVoid, TypeChar))
	assert.True(t, Equal(TypeVoid, TypeVoid))
}

func TestEqualArrays(t *testing.T) {
	assert.True(t, Equal(NewArrayType(10, TypeInt), NewArrayType(10, TypeInt)))

	// Loose atomic equality reaches into the element type.
	assert.True(t, Equal(NewArrayType(10, TypeInt), NewArrayType(10, TypeChar)))

	assert.False(t, Equal(NewArrayType(10, TypeInt), NewArrayType(11, TypeInt)))
	assert.False(t, Equal(NewArrayType(10, TypeInt), NewArrayType(10, NewPointerType(TypeInt))))
	assert.False(t, Equal(NewArrayType(10, TypeInt), TypeInt))
}

func TestEqualPointers(t *testing.T) {
	assert.True(t, Equal(NewPointerType(TypeInt), NewPointerType(TypeInt)))
	assert.True(t, Equal(NewPointerType(TypeInt), NewPointerType(TypeChar)))
	assert.False(t, Equal(NewPointerType(TypeInt), NewPointerType(NewPointerType(TypeInt))))
	assert.False(t, Equal(NewPointerType(TypeInt), TypeInt))
}

func TestEqualFuncTypes(t *testing.T) {
	f1 := NewFuncType([]*CType{TypeInt, TypeChar}, TypeInt)
	f2 := NewFuncType([]*CType{TypeChar, TypeInt}, TypeChar)
	assert.True(t, Equal(f1, f2))

	wrongArity := NewFuncType([]*CType{TypeInt}, TypeInt)
	assert.False(t, Equal(f1, wrongArity))

	wrongParam := NewFuncType([]*CType{TypeInt, NewPointerType(TypeInt)}, TypeInt)
	assert.False(t, Equal(f1, wrongParam))

	wrongResult := NewFuncType([]*CType{TypeInt, TypeChar}, TypeVoid)
	assert.False(t, Equal(f1, wrongResult))
}

func TestTypeToString(t *testing.T) {
	assert.Equal(t, "int", TypeToString(TypeInt))
	assert.Equal(t, "char[4]", TypeToString(NewArrayType(4, TypeChar)))
	assert.Equal(t, "int*", TypeToString(NewPointerType(TypeInt)))
	assert.Equal(t, "(int, char*) -> void", TypeToString(NewFuncType([]*CType{TypeInt, NewPointerType(TypeChar)}, TypeVoid)))
}

func TestIsLValue(t *testing.T) {
	tok := tokenAt()
	ident := NewIdent(tok, "x")
	assert.True(t, IsLValue(ident))
	assert.True(t, IsLValue(NewSubscript(tok, ident, NewNumber(tok, 0))))
	assert.True(t, IsLValue(NewIndirection(tok, ident)))

	assert.False(t, IsLValue(NewNumber(tok, 1)))
	assert.False(t, IsLValue(NewBinaryOp(tok, 0, NewNumber(tok, 1), NewNumber(tok, 2))))
	assert.False(t, IsLValue(nil))
}
