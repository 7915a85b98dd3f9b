package dtypes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataType(t *testing.T) {
	assert.True(t, Float32.IsFloat())
	assert.False(t, Float32.IsInt())
	assert.True(t, Int64.IsInt())
	assert.False(t, Int64.IsUnsigned())
	assert.True(t, Uint8.IsUnsigned())
	assert.True(t, Bool.IsBool())
	assert.False(t, DataType{}.Valid())

	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Int64.Size())
	assert.Equal(t, 2, Float16.Size())
	assert.Equal(t, 1, Bool.Size())
}

func TestString(t *testing.T) {
	assert.Equal(t, "f32", Float32.String())
	assert.Equal(t, "i8", Int8.String())
	assert.Equal(t, "u64", Uint64.String())
	assert.Equal(t, "bool", Bool.String())

	for _, dtype := range []DataType{Bool, Int8, Int32, Uint16, Float16, Float64} {
		parsed, err := FromString(dtype.String())
		require.NoError(t, err)
		assert.Equal(t, dtype, parsed)
	}
	_, err := FromString("f13")
	require.Error(t, err)
}

func TestQuantize(t *testing.T) {
	// Float16 has ~3 decimal digits of mantissa, 0.1 is not exactly
	// representable.
	q := Float16.Quantize(0.1)
	assert.InDelta(t, 0.1, q, 1e-3)
	assert.NotEqual(t, 0.1, q)

	// Integers truncate toward zero.
	assert.Equal(t, 3.0, Int32.Quantize(3.7))
	assert.Equal(t, -4.0, Int32.Quantize(-4.2))
	assert.Equal(t, 1.0, Bool.Quantize(2.5))
	assert.Equal(t, 0.0, Bool.Quantize(0))
	assert.Equal(t, 0.5, Float64.Quantize(0.5))

	// Overflowing floats clamp to the finite range rather than
	// narrowing to Inf, which would not survive a listing round-trip.
	assert.False(t, math.IsInf(Float32.Quantize(1e300), 0))
	assert.Equal(t, float64(math.MaxFloat32), Float32.Quantize(1e300))
	assert.Equal(t, -float64(math.MaxFloat32), Float32.Quantize(-1e300))
	assert.False(t, math.IsInf(Float16.Quantize(1e6), 0))
	assert.Equal(t, 65504.0, Float16.Quantize(1e6))
}
