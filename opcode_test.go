package orecl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitRHS(t *testing.T) {
	cases := []struct {
		op   OpCode
		args []string
		want string
	}{
		{OpAdd, []string{"a", "b"}, "a + b"},
		{OpSub, []string{"a", "b"}, "a - b"},
		{OpMul, []string{"a", "b"}, "a * b"},
		{OpDiv, []string{"a", "b"}, "a / b"},
		{OpNeg, []string{"a"}, "-a"},
		{OpIndicatorEq, []string{"a", "b"}, "ore_indicatorEq(a,b)"},
		{OpMin, []string{"a", "b"}, "fmin(a,b)"},
		{OpAbs, []string{"a"}, "fabs(a)"},
		{OpPow, []string{"a", "b"}, "pow(a,b)"},
	}
	for _, tc := range cases {
		got, err := emitRHS(tc.op, tc.args)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestEmitRHSUnknownOpcode(t *testing.T) {
	_, err := emitRHS(OpCode(200), []string{"a"})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrKindUnknownOpcode))
}

func TestEvalOpMatchesEmitRHSSemantics(t *testing.T) {
	// Every binary/unary opcode the emitter knows about must also be evaluable,
	// keeping the textual and numeric tables from drifting apart.
	for op := range opArity {
		if op == OpNone {
			continue
		}
		args := make([]float64, opArity[op])
		for i := range args {
			args[i] = float64(i + 2)
		}
		_, err := evalOp(op, args, float64Epsilon)
		assert.NoErrorf(t, err, "evalOp(%s) should be implemented", op)
	}
}

func TestIndicatorSemantics(t *testing.T) {
	eps := float64Epsilon
	assert.Equal(t, 1.0, indicatorEq(1.0, 1.0, eps))
	assert.Equal(t, 0.0, indicatorEq(1.0, 1.000001, eps))
	assert.Equal(t, 1.0, indicatorEq(1.0, 1.0+1e-20, eps))

	// IndicatorGeq == IndicatorGt + IndicatorEq when x != y within tolerance.
	x, y := 2.0, 1.0
	got := indicatorGeq(x, y, eps)
	want := indicatorGt(x, y, eps) + indicatorEq(x, y, eps)
	assert.Equal(t, want, got)
}

func TestNegInvolution(t *testing.T) {
	v, err := evalOp(OpNeg, []float64{5.0}, float64Epsilon)
	require.NoError(t, err)
	v2, err := evalOp(OpNeg, []float64{v}, float64Epsilon)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v2)
}

func TestClampToFloat32Range(t *testing.T) {
	assert.InDelta(t, 1.5, clampToFloat32Range(1.5), 1e-9)
	assert.Equal(t, float64(3.4028234663852886e+38), clampToFloat32Range(1e308))
	assert.Equal(t, -float64(3.4028234663852886e+38), clampToFloat32Range(-1e308))
}
