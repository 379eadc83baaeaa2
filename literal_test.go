package wexpr_test

import "go.hackerguild.com/wexpr"

// toLiteral converts a tree into plain Go values so tests can compare
// structures key-set-wise with go-cmp, independent of map iteration order.
func toLiteral(e *wexpr.Expression) any {
	switch e.Type() {
	case wexpr.TypeNull:
		return nil

	case wexpr.TypeValue:
		return e.Value()

	case wexpr.TypeBinaryData:
		out := make([]byte, len(e.BinaryData()))
		copy(out, e.BinaryData())

		return out

	case wexpr.TypeArray:
		out := make([]any, 0, e.ArrayCount())
		for i := 0; i < e.ArrayCount(); i++ {
			out = append(out, toLiteral(e.ArrayAt(i)))
		}

		return out

	case wexpr.TypeMap:
		out := make(map[string]any, e.MapCount())
		for i := 0; i < e.MapCount(); i++ {
			out[e.MapKeyAt(i)] = toLiteral(e.MapValueAt(i))
		}

		return out
	}

	return "<invalid>"
}
