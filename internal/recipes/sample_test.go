package recipes

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSampleBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	items := []int{1, 2, 3}

	require.Nil(t, sample(r.IntN, items, 0))
	require.Nil(t, sample(r.IntN, []int{}, 3))
	require.ElementsMatch(t, items, sample(r.IntN, items, 10))
	require.Equal(t, []int{1, 2, 3}, items, "input is not modified")
}

func TestSampleIsDeterministicForSeed(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}
	a := sample(rand.New(rand.NewPCG(9, 9)).IntN, items, 3)
	b := sample(rand.New(rand.NewPCG(9, 9)).IntN, items, 3)
	require.Equal(t, a, b)
}

func TestSampleIsRoughlyUniform(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 13))
	items := []int{0, 1, 2, 3, 4}
	counts := make([]int, len(items))
	const rounds = 10000
	for range rounds {
		for _, v := range sample(r.IntN, items, 2) {
			counts[v]++
		}
	}
	// each item is expected 4000 times
	for i, c := range counts {
		require.InDelta(t, 4000, c, 300, "item %d", i)
	}
}
