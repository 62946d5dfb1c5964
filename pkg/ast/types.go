package ast

import (
	"fmt"
	"strings"
)

// CTypeKind defines the kind of a CType.
type CTypeKind int

// CType kinds enum
const (
	TYPE_INT CTypeKind = iota
	TYPE_CHAR
	TYPE_VOID
	TYPE_ARRAY
	TYPE_POINTER
	TYPE_FUNC
	TYPE_UNTYPED
)

// CType represents a type in the Mini-C type system.
type CType struct {
	Kind   CTypeKind
	Base   *CType   // element type for arrays, pointee for pointers
	Size   int      // element count for arrays
	Params []*CType // parameter types for functions
	Result *CType   // result type for functions
}

// Pre-defined types. TypeUntyped is the placeholder every node starts
// with before the type checker fills its annotation slot.
var (
	TypeInt     = &CType{Kind: TYPE_INT}
	TypeChar    = &CType{Kind: TYPE_CHAR}
	TypeVoid    = &CType{Kind: TYPE_VOID}
	TypeUntyped = &CType{Kind: TYPE_UNTYPED}
)

func NewArrayType(size int, elem *CType) *CType {
	return &CType{Kind: TYPE_ARRAY, Size: size, Base: elem}
}

func NewPointerType(base *CType) *CType {
	return &CType{Kind: TYPE_POINTER, Base: base}
}

func NewFuncType(params []*CType, result *CType) *CType {
	return &CType{Kind: TYPE_FUNC, Params: params, Result: result}
}

// IsAtomic reports whether t is one of the two atomic types.
func (t *CType) IsAtomic() bool {
	return t != nil && (t.Kind == TYPE_INT || t.Kind == TYPE_CHAR)
}

// Equal implements the loose atomic equality rule: int and char are
// mutually interchangeable; every other comparison is structural.
func Equal(a, b *CType) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.IsAtomic() && b.IsAtomic() {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TYPE_ARRAY:
		return a.Size == b.Size && Equal(a.Base, b.Base)
	case TYPE_POINTER:
		return Equal(a.Base, b.Base)
	case TYPE_FUNC:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(a.Result, b.Result)
	default:
		return true
	}
}

// TypeToString renders a type for diagnostics.
func TypeToString(t *CType) string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TYPE_INT:
		return "int"
	case TYPE_CHAR:
		return "char"
	case TYPE_VOID:
		return "void"
	case TYPE_ARRAY:
		return fmt.Sprintf("%s[%d]", TypeToString(t.Base), t.Size)
	case TYPE_POINTER:
		return TypeToString(t.Base) + "*"
	case TYPE_FUNC:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = TypeToString(p)
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), TypeToString(t.Result))
	default:
		return "untyped"
	}
}
