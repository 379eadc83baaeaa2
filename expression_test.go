package wexpr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackerguild.com/wexpr"
)

func TestExpressionConstructors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, wexpr.TypeNull, wexpr.NewNull().Type())
	assert.Equal(t, wexpr.TypeValue, wexpr.NewValue("x").Type())
	assert.Equal(t, wexpr.TypeArray, wexpr.NewArray().Type())
	assert.Equal(t, wexpr.TypeMap, wexpr.NewMap().Type())
	assert.Equal(t, wexpr.TypeBinaryData, wexpr.NewBinaryData([]byte{1, 2}).Type())
}

func TestExpressionShapeCheckedAccessors(t *testing.T) {
	t.Parallel()

	null := wexpr.NewNull()

	assert.Empty(t, null.Value())
	assert.Nil(t, null.BinaryData())
	assert.Zero(t, null.ArrayCount())
	assert.Nil(t, null.ArrayAt(0))
	assert.Zero(t, null.MapCount())
	assert.Empty(t, null.MapKeyAt(0))
	assert.Nil(t, null.MapValueAt(0))
	assert.Nil(t, null.MapGet("key"))

	// mutations on the wrong shape are no-ops
	null.SetValue("x")
	null.ArrayAppend(wexpr.NewValue("x"))
	null.MapSet("k", wexpr.NewValue("x"))

	assert.Equal(t, wexpr.TypeNull, null.Type())
}

func TestExpressionArray(t *testing.T) {
	t.Parallel()

	arr := wexpr.NewArray()
	arr.ArrayAppend(wexpr.NewValue("a"))
	arr.ArrayAppend(wexpr.NewValue("b"))

	require.Equal(t, 2, arr.ArrayCount())
	assert.Equal(t, "a", arr.ArrayAt(0).Value())
	assert.Equal(t, "b", arr.ArrayAt(1).Value())
	assert.Nil(t, arr.ArrayAt(2))
	assert.Nil(t, arr.ArrayAt(-1))
}

func TestExpressionMap(t *testing.T) {
	t.Parallel()

	m := wexpr.NewMap()
	m.MapSet("a", wexpr.NewValue("1"))
	m.MapSet("b", wexpr.NewValue("2"))

	require.Equal(t, 2, m.MapCount())
	assert.Equal(t, "1", m.MapGet("a").Value())
	assert.Equal(t, "2", m.MapGet("b").Value())
	assert.Nil(t, m.MapGet("missing"))

	// last write wins and does not duplicate the key
	m.MapSet("a", wexpr.NewValue("3"))

	assert.Equal(t, 2, m.MapCount())
	assert.Equal(t, "3", m.MapGet("a").Value())

	// empty keys are rejected
	m.MapSet("", wexpr.NewValue("x"))

	assert.Equal(t, 2, m.MapCount())

	keys := make(map[string]bool)
	for i := 0; i < m.MapCount(); i++ {
		keys[m.MapKeyAt(i)] = true

		require.NotNil(t, m.MapValueAt(i))
	}

	assert.Equal(t, map[string]bool{"a": true, "b": true}, keys)
}

func TestExpressionCopyIsIndependent(t *testing.T) {
	t.Parallel()

	original := wexpr.NewArray()
	original.ArrayAppend(wexpr.NewValue("x"))

	inner := wexpr.NewMap()
	inner.MapSet("k", wexpr.NewValue("v"))
	original.ArrayAppend(inner)
	original.ArrayAppend(wexpr.NewBinaryData([]byte{1, 2, 3}))

	copied := original.Copy()

	original.ArrayAt(0).SetValue("changed")
	original.ArrayAt(1).MapGet("k").SetValue("changed")
	original.ArrayAt(2).SetBinaryData([]byte{9})

	assert.Equal(t, "x", copied.ArrayAt(0).Value())
	assert.Equal(t, "v", copied.ArrayAt(1).MapGet("k").Value())
	assert.Equal(t, []byte{1, 2, 3}, copied.ArrayAt(2).BinaryData())
}

func TestExpressionChangeType(t *testing.T) {
	t.Parallel()

	e := wexpr.NewValue("hello")
	e.ChangeType(wexpr.TypeMap)

	require.Equal(t, wexpr.TypeMap, e.Type())
	assert.Empty(t, e.Value())

	e.MapSet("k", wexpr.NewValue("v"))
	e.ChangeType(wexpr.TypeNull)

	assert.Equal(t, wexpr.TypeNull, e.Type())
	assert.Zero(t, e.MapCount())
}

func TestExpressionBinaryDataCopies(t *testing.T) {
	t.Parallel()

	src := []byte{1, 2, 3}
	e := wexpr.NewBinaryData(src)

	src[0] = 9

	assert.Equal(t, []byte{1, 2, 3}, e.BinaryData())
}
