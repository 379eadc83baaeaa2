package schema

import (
	"strings"

	"go.hackerguild.com/wexpr"
)

// PrimitiveType is a bitset over the five expression shapes a schema type
// accepts.
type PrimitiveType uint8

// Primitive type bits.
const (
	PrimitiveNull PrimitiveType = 1 << iota
	PrimitiveValue
	PrimitiveArray
	PrimitiveMap
	PrimitiveBinaryData
)

// PrimitiveUnknown means no primitive was declared; the effective set is
// then derived from the type's parents.
const PrimitiveUnknown PrimitiveType = 0

// primitiveTypeFromString maps a schema document's primitiveType value to
// its bit. Unrecognized strings map to [PrimitiveUnknown].
func primitiveTypeFromString(s string) PrimitiveType {
	switch s {
	case "nullType":
		return PrimitiveNull
	case "value":
		return PrimitiveValue
	case "array":
		return PrimitiveArray
	case "map":
		return PrimitiveMap
	case "binaryData":
		return PrimitiveBinaryData
	}

	return PrimitiveUnknown
}

// Matches reports whether an expression of the given shape satisfies the
// primitive set.
func (p PrimitiveType) Matches(t wexpr.ExpressionType) bool {
	switch t {
	case wexpr.TypeNull:
		return p&PrimitiveNull != 0
	case wexpr.TypeValue:
		return p&PrimitiveValue != 0
	case wexpr.TypeArray:
		return p&PrimitiveArray != 0
	case wexpr.TypeMap:
		return p&PrimitiveMap != 0
	case wexpr.TypeBinaryData:
		return p&PrimitiveBinaryData != 0
	}

	return false
}

// String renders the set as pipe-separated primitive names.
func (p PrimitiveType) String() string {
	if p == PrimitiveUnknown {
		return "Unknown"
	}

	var parts []string

	if p&PrimitiveNull != 0 {
		parts = append(parts, "null")
	}

	if p&PrimitiveValue != 0 {
		parts = append(parts, "value")
	}

	if p&PrimitiveArray != 0 {
		parts = append(parts, "array")
	}

	if p&PrimitiveMap != 0 {
		parts = append(parts, "map")
	}

	if p&PrimitiveBinaryData != 0 {
		parts = append(parts, "binaryData")
	}

	return strings.Join(parts, "|")
}
