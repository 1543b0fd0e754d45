package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound_HalfUp(t *testing.T) {
	tests := []struct {
		num, den int64
		expected int64
	}{
		{0, 1, 0},
		{4000, 3, 1333},
		{3750, 3, 1250},
		{5, 2, 3},
		{3, 2, 2},
		{1, 2, 1},
		{1, 3, 0},
		{2, 3, 1},
		{999, 1000, 1},
		{1499, 1000, 1},
		{1500, 1000, 2},
	}

	for _, tt := range tests {
		r, err := NewRational(tt.num, tt.den)
		require.NoError(t, err)
		got, err := Round(r)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "Round(%d/%d)", tt.num, tt.den)
	}
}

func TestRound_Negative(t *testing.T) {
	r, err := NewRational(-1, 2)
	require.NoError(t, err)

	_, err = Round(r)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRound_ZeroValueRational(t *testing.T) {
	_, err := Round(Rational{})
	assert.ErrorIs(t, err, ErrZeroDenominator)
}

func TestNewRational_Errors(t *testing.T) {
	_, err := NewRational(1, 0)
	assert.ErrorIs(t, err, ErrZeroDenominator)

	_, err = NewRational(1, -3)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestShare(t *testing.T) {
	t.Run("exact split", func(t *testing.T) {
		got, err := Share(1000, 3000, 4000)
		require.NoError(t, err)
		assert.Equal(t, int64(750), got)
	})

	t.Run("rounds half up", func(t *testing.T) {
		// 1 * 1 / 2 = 0.5
		got, err := Share(1, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("large amounts do not overflow", func(t *testing.T) {
		// total*part would overflow int64 without exact arithmetic.
		got, err := Share(math.MaxInt64/2, math.MaxInt64/2, math.MaxInt64/2)
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64/2), got)
	})

	t.Run("negative part", func(t *testing.T) {
		_, err := Share(100, -1, 10)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("zero whole", func(t *testing.T) {
		_, err := Share(100, 0, 0)
		assert.ErrorIs(t, err, ErrZeroDenominator)
	})
}

func TestDivide(t *testing.T) {
	got, err := Divide(4000, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1333), got)

	got, err = Divide(5, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	_, err = Divide(5, 0)
	assert.ErrorIs(t, err, ErrZeroDenominator)

	_, err = Divide(-5, 2)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSum(t *testing.T) {
	total, err := Sum([]string{"a", "b", "c"}, Ptr(100), nil, Ptr(25))
	require.NoError(t, err)
	assert.Equal(t, int64(125), total)

	_, err = Sum([]string{"a", "shipping"}, Ptr(100), Ptr(-1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Contains(t, err.Error(), "shipping")
}

func TestSum_Overflow(t *testing.T) {
	_, err := Sum([]string{"product", "shipping"}, Ptr(math.MaxInt64), Ptr(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.NotErrorIs(t, err, ErrInvalidAmount)
	assert.Contains(t, err.Error(), "shipping")
}

func TestAdd(t *testing.T) {
	got, err := Add(math.MaxInt64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)

	_, err = Add(math.MaxInt64, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Add(-1, 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestValueOrZero(t *testing.T) {
	assert.Equal(t, int64(0), ValueOrZero(nil))
	assert.Equal(t, int64(42), ValueOrZero(Ptr(42)))
}
