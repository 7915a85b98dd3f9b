package shapes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tensorlang/tir/types/dtypes"
)

func TestMake(t *testing.T) {
	s := Make(dtypes.Float32, 2, 3)
	assert.Equal(t, 2, s.Rank())
	assert.Equal(t, 6, s.Size())
	assert.Equal(t, 24, s.Memory())
	assert.False(t, s.IsScalar())

	scalar := Scalar(dtypes.Int64)
	assert.Equal(t, 0, scalar.Rank())
	assert.Equal(t, 1, scalar.Size())
	assert.True(t, scalar.IsScalar())

	// Zero-sized axes are valid.
	empty := Make(dtypes.Float32, 0, 3)
	assert.Equal(t, 0, empty.Size())
	assert.True(t, empty.Ok())

	require.Panics(t, func() { Make(dtypes.Float32, 2, -1) })
}

func TestDim(t *testing.T) {
	s := Make(dtypes.Float32, 2, 3, 5)
	assert.Equal(t, 2, s.Dim(0))
	assert.Equal(t, 5, s.Dim(2))
	assert.Equal(t, 5, s.Dim(-1))
	assert.Equal(t, 2, s.Dim(-3))
	require.Panics(t, func() { s.Dim(3) })
}

func TestEqual(t *testing.T) {
	a := Make(dtypes.Float32, 2, 3)
	assert.True(t, a.Equal(Make(dtypes.Float32, 2, 3)))
	assert.False(t, a.Equal(Make(dtypes.Float64, 2, 3)))
	assert.False(t, a.Equal(Make(dtypes.Float32, 3, 2)))
	assert.True(t, a.EqualDimensions(Make(dtypes.Float64, 2, 3)))

	clone := a.Clone()
	clone.Dimensions[0] = 7
	assert.Equal(t, 2, a.Dimensions[0])
}

func TestString(t *testing.T) {
	assert.Equal(t, "f32[2,3]", Make(dtypes.Float32, 2, 3).String())
	assert.Equal(t, "i64", Scalar(dtypes.Int64).String())

	for _, s := range []Shape{Make(dtypes.Float32, 2, 3), Scalar(dtypes.Bool), Make(dtypes.Uint8, 0)} {
		parsed, err := FromString(s.String())
		require.NoError(t, err)
		assert.True(t, s.Equal(parsed))
	}
	_, err := FromString("f32[2,")
	require.Error(t, err)
}
