package classify

import (
	"sort"

	"github.com/ppiankov/polarity/internal/model"
)

// Argsort returns the indices that sort values ascending; ties keep index order
func Argsort(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})
	return idx
}

// Extremes returns the n smallest values ascending and the n largest descending, with their names
func Extremes(values []float64, names []string, n int) (smallest, largest []model.FeatureWeight) {
	order := Argsort(values)
	if n > len(order) {
		n = len(order)
	}
	if n <= 0 {
		return nil, nil
	}

	smallest = make([]model.FeatureWeight, 0, n)
	for _, i := range order[:n] {
		smallest = append(smallest, model.FeatureWeight{Feature: names[i], Weight: values[i]})
	}

	largest = make([]model.FeatureWeight, 0, n)
	for k := len(order) - 1; k >= len(order)-n; k-- {
		i := order[k]
		largest = append(largest, model.FeatureWeight{Feature: names[i], Weight: values[i]})
	}
	return smallest, largest
}

// Stride returns every step-th name starting from the first
func Stride(names []string, step int) []string {
	if step <= 0 {
		return nil
	}
	out := make([]string, 0, len(names)/step+1)
	for i := 0; i < len(names); i += step {
		out = append(out, names[i])
	}
	return out
}
