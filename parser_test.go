package wexpr_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackerguild.com/wexpr"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  any
	}{
		"bareword value": {
			input: "hello",
			want:  "hello",
		},
		"quoted value": {
			input: `"20% cooler"`,
			want:  "20% cooler",
		},
		"quoted empty value": {
			input: `""`,
			want:  "",
		},
		"quoted escapes": {
			input: `"a\nb\t\"\\c\r"`,
			want:  "a\nb\t\"\\c\r",
		},
		"null bareword": {
			input: "null",
			want:  nil,
		},
		"nil bareword": {
			input: "nil",
			want:  nil,
		},
		"quoted null stays a value": {
			input: `"null"`,
			want:  "null",
		},
		"number-looking value": {
			input: "2.45",
			want:  "2.45",
		},
		"empty array": {
			input: "#()",
			want:  []any{},
		},
		"array of three": {
			input: "#(1 2 3)",
			want:  []any{"1", "2", "3"},
		},
		"nested array": {
			input: "#(#(1 2) #() 3)",
			want:  []any{[]any{"1", "2"}, []any{}, "3"},
		},
		"empty map": {
			input: "@()",
			want:  map[string]any{},
		},
		"map of two": {
			input: "@(a b c d)",
			want:  map[string]any{"a": "b", "c": "d"},
		},
		"map duplicate key last wins": {
			input: "@(a 1 a 2)",
			want:  map[string]any{"a": "2"},
		},
		"map with container values": {
			input: `@(first #(a b) second "20% cooler")`,
			want:  map[string]any{"first": []any{"a", "b"}, "second": "20% cooler"},
		},
		"binary data": {
			input: "<aGVsbG8=>",
			want:  []byte("hello"),
		},
		"binary data empty": {
			input: "<>",
			want:  []byte{},
		},
		"line comment before value": {
			input: "; a comment\nvalue",
			want:  "value",
		},
		"block comment before value": {
			input: ";(-- a\nblock\ncomment --)value",
			want:  "value",
		},
		"comments inside containers": {
			input: "#(1 ;two\n2 ;(-- three --)3)",
			want:  []any{"1", "2", "3"},
		},
		"comment between key and value": {
			input: "@(key ;note\nvalue)",
			want:  map[string]any{"key": "value"},
		},
		"whitespace everywhere": {
			input: "\n\t #( 1\r\n2 )\n",
			want:  []any{"1", "2"},
		},
		"alias binding leaves value in place": {
			input: `#([a]1 2)`,
			want:  []any{"1", "2"},
		},
		"alias splice": {
			input: `#([a]1 *[a] *[a])`,
			want:  []any{"1", "1", "1"},
		},
		"alias splice of container": {
			input: `#([a]@(k v) *[a])`,
			want:  []any{map[string]any{"k": "v"}, map[string]any{"k": "v"}},
		},
		"alias rebinding uses latest": {
			input: `#([a]1 *[a] [a]2 *[a])`,
			want:  []any{"1", "1", "2", "2"},
		},
		"alias on map value": {
			input: `@(first [val]"name" second *[val])`,
			want:  map[string]any{"first": "name", "second": "name"},
		},
	}

	for name, tc := range tcs {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			expr, err := wexpr.Parse([]byte(tc.input))
			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, toLiteral(expr)); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input      string
		wantCode   wexpr.ErrorCode
		wantLine   int
		wantColumn int
	}{
		"empty input": {
			input:    "",
			wantCode: wexpr.ErrorEmptyString,
			wantLine: 1, wantColumn: 1,
		},
		"only whitespace": {
			input:    "  \n\t ",
			wantCode: wexpr.ErrorEmptyString,
		},
		"only comments": {
			input:    "; nothing here\n;(-- or here --)",
			wantCode: wexpr.ErrorEmptyString,
		},
		"unterminated quote": {
			input:    `"abc`,
			wantCode: wexpr.ErrorStringMissingEndingQuote,
			wantLine: 1, wantColumn: 5,
		},
		"invalid escape": {
			input:    `"a\qb"`,
			wantCode: wexpr.ErrorInvalidStringEscape,
			wantLine: 1, wantColumn: 4,
		},
		"extra data after root": {
			input:    "#(1) extra",
			wantCode: wexpr.ErrorExtraDataAfterParsingRoot,
			wantLine: 1, wantColumn: 6,
		},
		"array missing end paren": {
			input:    "#(1 2 3",
			wantCode: wexpr.ErrorArrayMissingEndParen,
			wantLine: 1, wantColumn: 8,
		},
		"array missing end paren multiline": {
			input:    "#(\n\tfoo\n",
			wantCode: wexpr.ErrorArrayMissingEndParen,
			wantLine: 3, wantColumn: 1,
		},
		"map missing end paren": {
			input:    "@(a b",
			wantCode: wexpr.ErrorMapMissingEndParen,
			wantLine: 1, wantColumn: 6,
		},
		"map key must be a value": {
			input:    "@(#() b)",
			wantCode: wexpr.ErrorMapKeyMustBeAValue,
			wantLine: 1, wantColumn: 3,
		},
		"map key with no value": {
			input:    "@(a)",
			wantCode: wexpr.ErrorMapNoValue,
			wantLine: 1, wantColumn: 3,
		},
		"reference missing end bracket": {
			input:    "[name value",
			wantCode: wexpr.ErrorReferenceMissingEndBracket,
			wantLine: 1, wantColumn: 1,
		},
		"reference insert missing end bracket": {
			input:    "*[name",
			wantCode: wexpr.ErrorReferenceInsertMissingEndBracket,
			wantLine: 1, wantColumn: 1,
		},
		"reference invalid name": {
			input:    "[1abc]value",
			wantCode: wexpr.ErrorReferenceInvalidName,
			wantLine: 1, wantColumn: 1,
		},
		"reference empty name": {
			input:    "[]value",
			wantCode: wexpr.ErrorReferenceInvalidName,
			wantLine: 1, wantColumn: 1,
		},
		"unknown reference": {
			input:    "*[ghost]",
			wantCode: wexpr.ErrorReferenceUnknownReference,
			wantLine: 1, wantColumn: 9,
		},
		"reference bound after splice": {
			input:    "#(*[a] [a]1)",
			wantCode: wexpr.ErrorReferenceUnknownReference,
		},
		"binary data no ending": {
			input:    "<aGVsbG8=",
			wantCode: wexpr.ErrorBinaryDataNoEnding,
			wantLine: 1, wantColumn: 1,
		},
		"binary data with whitespace": {
			input:    "<aGVs bG8=>",
			wantCode: wexpr.ErrorBinaryDataInvalidBase64,
			wantLine: 1, wantColumn: 1,
		},
		"binary data bad base64": {
			input:    "<a!>",
			wantCode: wexpr.ErrorBinaryDataInvalidBase64,
			wantLine: 1, wantColumn: 1,
		},
		"bareword starting with terminator": {
			input:    "^",
			wantCode: wexpr.ErrorEmptyString,
			wantLine: 1, wantColumn: 1,
		},
	}

	for name, tc := range tcs {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := wexpr.Parse([]byte(tc.input))
			require.Error(t, err)

			var perr *wexpr.Error

			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.wantCode, perr.Code, "got %s", perr.Code)

			if tc.wantLine != 0 {
				assert.Equal(t, tc.wantLine, perr.Line, "line")
				assert.Equal(t, tc.wantColumn, perr.Column, "column")
			}
		})
	}
}

func TestParseSpliceIsIndependent(t *testing.T) {
	t.Parallel()

	expr, err := wexpr.Parse([]byte(`@(first [val]"name" second *[val])`))
	require.NoError(t, err)

	first := expr.MapGet("first")
	second := expr.MapGet("second")

	require.Equal(t, "name", first.Value())
	require.Equal(t, "name", second.Value())

	first.SetValue("different")

	assert.Equal(t, "name", second.Value(), "splice must be an independent copy")
}

func TestParseSpliceOfContainerIsDeep(t *testing.T) {
	t.Parallel()

	expr, err := wexpr.Parse([]byte(`#([a]#(x @(k v)) *[a])`))
	require.NoError(t, err)

	original := expr.ArrayAt(0)
	splice := expr.ArrayAt(1)

	original.ArrayAt(1).MapGet("k").SetValue("changed")

	assert.Equal(t, "v", splice.ArrayAt(1).MapGet("k").Value())
}

func TestParseExternalReferenceTable(t *testing.T) {
	t.Parallel()

	t.Run("fallback lookup", func(t *testing.T) {
		t.Parallel()

		table := wexpr.NewReferenceTable()
		table.Set("ext", wexpr.NewValue("external"))

		expr, err := wexpr.Parse([]byte("*[ext]"), wexpr.WithReferenceTable(table))
		require.NoError(t, err)
		assert.Equal(t, "external", expr.Value())
	})

	t.Run("document aliases win", func(t *testing.T) {
		t.Parallel()

		table := wexpr.NewReferenceTable()
		table.Set("x", wexpr.NewValue("external"))

		expr, err := wexpr.Parse([]byte("#([x]internal *[x])"), wexpr.WithReferenceTable(table))
		require.NoError(t, err)
		assert.Equal(t, "internal", expr.ArrayAt(1).Value())
	})

	t.Run("unknown key creator is the final resort", func(t *testing.T) {
		t.Parallel()

		table := wexpr.NewReferenceTable()
		table.SetUnknownKeyCreator(func(name string) *wexpr.Expression {
			return wexpr.NewValue(name + "!")
		})

		expr, err := wexpr.Parse([]byte("*[greeting]"), wexpr.WithReferenceTable(table))
		require.NoError(t, err)
		assert.Equal(t, "greeting!", expr.Value())
	})

	t.Run("splice from table is independent", func(t *testing.T) {
		t.Parallel()

		table := wexpr.NewReferenceTable()
		table.Set("ext", wexpr.NewValue("original"))

		expr, err := wexpr.Parse([]byte("*[ext]"), wexpr.WithReferenceTable(table))
		require.NoError(t, err)

		expr.SetValue("mutated")

		assert.Equal(t, "original", table.Get("ext").Value())
	})
}

func TestParseMinifiedRoundTripIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"#(1 2 3)",
		`@(a b c d)`,
		`@(first #(a b) second "20% cooler")`,
		"#(null <aGVsbG8=> @(k #(1 2)))",
		`"null"`,
		`#(null "null" "nil")`,
	}

	for _, input := range inputs {
		first, err := wexpr.Parse([]byte(input))
		require.NoError(t, err)

		minified := first.StringRepresentation(0, false)

		second, err := wexpr.Parse([]byte(minified))
		require.NoError(t, err)

		if diff := cmp.Diff(toLiteral(first), toLiteral(second)); diff != "" {
			t.Errorf("round trip of %q not idempotent (-first +second):\n%s", input, diff)
		}
	}
}
