// Package stats summarizes integer distributions such as import fan-in.
package stats

import "slices"

// Summary describes a distribution of non-negative counts.
type Summary struct {
	Count  int     `json:"count"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median int     `json:"median"`
	P90    int     `json:"p90"`
}

// Summarize computes a Summary of values without modifying them. An empty
// input yields the zero Summary.
func Summarize(values []int) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	total := 0
	for _, v := range sorted {
		total += v
	}
	return Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   float64(total) / float64(len(sorted)),
		Median: Percentile(sorted, 50),
		P90:    Percentile(sorted, 90),
	}
}

// Percentile returns the nearest-rank p-th percentile of an ascending slice,
// or 0 when it is empty. p is clamped to [0, 100].
func Percentile(sorted []int, p int) int {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 100)
	idx := (p*len(sorted) + 99) / 100
	return sorted[max(idx-1, 0)]
}
