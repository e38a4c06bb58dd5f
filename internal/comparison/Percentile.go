/*

This file contains the percentile and delta utilities used by the comparison
module. Percentiles here are rank positions within a finite set scaled to
0-100, not statistical distribution percentiles.

*/

package comparison

import (
	"math"
	"sort"
)

// Percentile returns the rank position of value within values, scaled to
// [0,100] and rounded to 2 decimals. Ties resolve to the first matching index
// of the ascending-sorted set, which makes the tie-break defined rather than
// arbitrary. The maximum of a set is always 100 and the minimum always 0; a
// single-element set scores 100.
func Percentile(value float64, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) == 1 {
		return 100
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	index := 0
	for i, v := range sorted {
		if v == value {
			index = i
			break
		}
	}

	return round2(float64(index) / float64(len(sorted)-1) * 100.0)
}

// DeltaFromAverage returns the signed percentage deviation of value from avg,
// or 0 when the average is 0.
func DeltaFromAverage(value, avg float64) float64 {
	if avg == 0 {
		return 0
	}
	return round2((value - avg) / avg * 100.0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
