package rank

import (
	"math"
	"sort"
)

// averageRanks converts values to 1-based ranks, averaging ranks across ties.
// It also returns the size of every tie group with more than one member.
func averageRanks(data []float64) ([]float64, []int) {
	n := len(data)
	if n == 0 {
		return []float64{}, nil
	}

	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)
	var ties []int

	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}

		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		if groupSize > 1 {
			ties = append(ties, groupSize)
		}

		i = j
	}

	return ranks, ties
}

// pairwiseComplete keeps only the positions where both x and y are present
func pairwiseComplete(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// dropMissing returns the non-NaN values of data
func dropMissing(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
