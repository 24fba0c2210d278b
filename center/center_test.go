package center

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanUpdate(t *testing.T) {
	members := [][]float64{{0, 0}, {2, 4}, {4, 2}}

	c, err := Mean{}.Update(members)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, c)
}

func TestMeanUpdate_Empty(t *testing.T) {
	_, err := Mean{}.Update(nil)
	assert.ErrorIs(t, err, ErrEmptyCluster)
}

func TestMedianUpdate(t *testing.T) {
	// The median center is a synthetic point absent from the member set.
	members := [][]float64{{1, 1}, {2, 2}, {3, 4}, {4, 3}, {5, 5}}

	c, err := Median{}.Update(members)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3}, c)
	assert.NotContains(t, members, c)
}

func TestMedianUpdate_EvenCount(t *testing.T) {
	members := [][]float64{{1, 10}, {2, 20}, {3, 30}, {4, 40}}

	c, err := Median{}.Update(members)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 25}, c)
}

func TestMedianUpdate_Empty(t *testing.T) {
	_, err := Median{}.Update([][]float64{})
	assert.ErrorIs(t, err, ErrEmptyCluster)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "mean", Mean{}.Name())
	assert.Equal(t, "median", Median{}.Name())
}
