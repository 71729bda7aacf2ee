package sizing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("overflow")

func TestToInt64(t *testing.T) {
	v, err := ToInt64(42, errTest)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = ToInt64(uint64(math.MaxInt64)+1, errTest)
	assert.ErrorIs(t, err, errTest)
}

func TestToInt(t *testing.T) {
	v, err := ToInt(7, errTest)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = ToInt(math.MaxUint64, errTest)
	assert.ErrorIs(t, err, errTest)
}

func TestFromInt64(t *testing.T) {
	v, err := FromInt64(9, errTest)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), v)

	_, err = FromInt64(-1, errTest)
	assert.ErrorIs(t, err, errTest)
}

func TestAddUint64(t *testing.T) {
	sum, ok := AddUint64(1, 2)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), sum)

	_, ok = AddUint64(math.MaxUint64, 1)
	assert.False(t, ok)
}
