package jsvalue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeFoldsConstantConcat(t *testing.T) {
	v := Normalize(JsValue{Kind: KindConcat, Operands: []JsValue{Str("./"), Str("foo"), Str(".js")}})
	s, ok := v.IsConstantString()
	require.True(t, ok)
	require.Equal(t, "./foo.js", s)
}

func TestNormalizeLeavesNonConstantConcat(t *testing.T) {
	v := Normalize(JsValue{Kind: KindConcat, Operands: []JsValue{Str("./"), Variable("name")}})
	_, ok := v.IsConstantString()
	require.False(t, ok)
	require.Equal(t, KindConcat, v.Kind)
}

func TestNormalizeLogicalAndShortCircuitsOnFalsyLeft(t *testing.T) {
	v := Normalize(JsValue{Kind: KindLogicalAnd, Operands: []JsValue{Bool(false), Variable("x")}})
	truthy, ok := v.Truthy()
	require.True(t, ok)
	require.False(t, truthy)
}

func TestNormalizeLogicalOrPicksTruthyOperand(t *testing.T) {
	v := Normalize(JsValue{Kind: KindLogicalOr, Operands: []JsValue{Str(""), Str("fallback")}})
	s, ok := v.IsConstantString()
	require.True(t, ok)
	require.Equal(t, "fallback", s)
}

func TestNormalizeLogicalNotInvertsKnownTruthiness(t *testing.T) {
	operand := Bool(false)
	v := Normalize(JsValue{Kind: KindLogicalNot, Operand: &operand})
	truthy, ok := v.Truthy()
	require.True(t, ok)
	require.True(t, truthy)
}

func TestNormalizeCollapsesSingleAlternative(t *testing.T) {
	v := Normalize(JsValue{Kind: KindAlternatives, Items: []JsValue{Str("only")}})
	s, ok := v.IsConstantString()
	require.True(t, ok)
	require.Equal(t, "only", s)
}

func TestTruthyUnknownForVariable(t *testing.T) {
	_, ok := Variable("x").Truthy()
	require.False(t, ok)
}

func TestIsConstantStringRejectsNumbers(t *testing.T) {
	_, ok := Num(42).IsConstantString()
	require.False(t, ok)
}
