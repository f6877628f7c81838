package swaggermcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimsaleem/Swaggermcp/internal/pylang"
)

func TestCoerceParamChainOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want pylang.Value
	}{
		{"integer", "42", pylang.Int(42)},
		{"negative integer", "-7", pylang.Int(-7)},
		{"float", "3.5", pylang.Float(3.5)},
		{"scientific float", "1e3", pylang.Float(1000)},
		{"bool true", "true", pylang.Bool(true)},
		{"bool mixed case", "TrUe", pylang.Bool(true)},
		{"bool false", "false", pylang.Bool(false)},
		{"plain string", "hello", pylang.Str("hello")},
		{"quoted json string", `"hello"`, pylang.Str("hello")},
		{"json null", "null", pylang.None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceParam(tt.raw))
		})
	}
}

func TestCoerceParamIntegerWinsOverFloat(t *testing.T) {
	// "1" parses as both int and float; the chain must prefer int.
	got := CoerceParam("1")
	assert.Equal(t, pylang.TagInt, got.Tag)
	assert.Equal(t, int64(1), got.Data)
}

func TestCoerceParamJSONArray(t *testing.T) {
	got := CoerceParam("[1, 2.5, \"x\", true]")
	require.Equal(t, pylang.TagList, got.Tag)

	elems := got.Data.(*pylang.ListObject).Elems
	require.Len(t, elems, 4)
	assert.Equal(t, pylang.Int(1), elems[0])
	assert.Equal(t, pylang.Float(2.5), elems[1])
	assert.Equal(t, pylang.Str("x"), elems[2])
	assert.Equal(t, pylang.Bool(true), elems[3])
}

func TestCoerceParamJSONObjectKeysSorted(t *testing.T) {
	got := CoerceParam(`{"b": 2, "a": 1}`)
	require.Equal(t, pylang.TagDict, got.Tag)

	d := got.Data.(*pylang.DictObject)
	assert.Equal(t, []string{"a", "b"}, d.Keys)
}

func TestCoerceParamMalformedJSONFallsToString(t *testing.T) {
	tests := []string{
		"[1, 2",         // unterminated array
		"{bad}",         // bare key
		`[1] trailing`,  // valid prefix plus garbage
		"not json at all",
	}
	for _, raw := range tests {
		got := CoerceParam(raw)
		assert.Equal(t, pylang.Str(raw), got, "input %q", raw)
	}
}

func TestCoerceParamNeverFails(t *testing.T) {
	// Arbitrary binary-ish junk still lands on the string fallback.
	got := CoerceParam("\x00\xff{[")
	assert.Equal(t, pylang.TagStr, got.Tag)
}
