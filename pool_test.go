package orecl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestVariatePoolGrowthAlignment(t *testing.T) {
	p := newVariatePool(42, true)
	p.ensure(1)
	assert.Equal(t, mtN, p.size(), "growth from 0 must land on exactly one MT block")

	p.ensure(mtN + 1)
	assert.Equal(t, 2*mtN, p.size())
}

func TestVariatePoolPreservesPrefixOnGrowth(t *testing.T) {
	p := newVariatePool(7, true)
	p.ensure(mtN)
	before := append([]float64(nil), p.buf...)

	p.ensure(3 * mtN)
	for i, v := range before {
		assert.Equal(t, v, p.buf[i], "sample at index %d must survive growth unchanged", i)
	}
}

func TestVariatePoolDeterministic(t *testing.T) {
	p1 := newVariatePool(123, true)
	p2 := newVariatePool(123, true)
	p1.ensure(2 * mtN)
	p2.ensure(2 * mtN)
	for i := range p1.buf {
		require.Equal(t, p1.buf[i], p2.buf[i])
	}
}

func TestVariatePoolMeanAndVariance(t *testing.T) {
	p := newVariatePool(42, true)
	const n = 5000
	p.ensure(n)

	mean := stat.Mean(p.buf[:n], nil)
	variance := stat.Variance(p.buf[:n], nil)

	assert.InDelta(t, 0.0, mean, 0.1)
	assert.InDelta(t, 1.0, variance, 0.1)
}

func TestInvCumNMonotonic(t *testing.T) {
	prev := invCumN(1, true)
	for _, u := range []uint32{1000, 1 << 20, 1 << 28, ^uint32(0) - 1} {
		cur := invCumN(u, true)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestInvCumNSaturatesAtBounds(t *testing.T) {
	assert.True(t, invCumN(0, false) < -1e30)
	assert.True(t, invCumN(^uint32(0), false) > 1e30)
}

func TestInvCumNSaturationMatchesActivePrecision(t *testing.T) {
	assert.Equal(t, -0x1.fffffep127, invCumN(0, false))
	assert.Equal(t, 0x1.fffffep127, invCumN(^uint32(0), false))
	assert.Equal(t, -math.MaxFloat64, invCumN(0, true))
	assert.Equal(t, math.MaxFloat64, invCumN(^uint32(0), true))
	assert.Greater(t, invCumN(^uint32(0), true), invCumN(^uint32(0), false),
		"double-precision saturation must exceed float32's max magnitude")
}
