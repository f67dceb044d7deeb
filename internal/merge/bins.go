package merge

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Quartile labels, lowest first.
const (
	QuartileQ1 = "Q1 (Lowest)"
	QuartileQ2 = "Q2"
	QuartileQ3 = "Q3"
	QuartileQ4 = "Q4 (Highest)"
)

// QuartileLabels indexes labels by bucket.
var QuartileLabels = [4]string{QuartileQ1, QuartileQ2, QuartileQ3, QuartileQ4}

// Fixed income groups.
const (
	GroupLow      = "Low (<$35k)"
	GroupMiddle   = "Middle ($35k-$55k)"
	GroupUpperMid = "Upper-Mid ($55k-$75k)"
	GroupHigh     = "High (>$75k)"
)

// Groups lists the income group labels, lowest first.
var Groups = [4]string{GroupLow, GroupMiddle, GroupUpperMid, GroupHigh}

// GroupThresholds are the lower bounds of Middle, Upper-Mid and High.
var GroupThresholds = [3]float64{35000, 55000, 75000}

// IncomeGroup buckets an income by absolute thresholds. Lower bounds are
// inclusive; anything under the first threshold is Low.
func IncomeGroup(income float64) string {
	switch {
	case income >= GroupThresholds[2]:
		return GroupHigh
	case income >= GroupThresholds[1]:
		return GroupUpperMid
	case income >= GroupThresholds[0]:
		return GroupMiddle
	default:
		return GroupLow
	}
}

// DegenerateDistributionError means the values cannot be split into four
// non-empty equal-frequency buckets.
type DegenerateDistributionError struct {
	Rows     int
	Distinct int
	Edges    []float64
	Reason   string
}

func (e *DegenerateDistributionError) Error() string {
	edges := make([]string, len(e.Edges))
	for i, v := range e.Edges {
		edges[i] = fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("degenerate income distribution: %s (%d rows, %d distinct values, edges [%s])",
		e.Reason, e.Rows, e.Distinct, strings.Join(edges, ", "))
}

// Quantile returns the p-quantile of sorted values, interpolating linearly
// between the closest ranks at position (n-1)*p.
func Quantile(p float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// QuartileEdges returns the five bucket edges (min, p25, p50, p75, max) of
// values. Edges that are not strictly increasing, which happens when ties
// collapse a cut point, yield a DegenerateDistributionError. Buckets may be
// empty when there are fewer rows than buckets.
func QuartileEdges(values []float64) ([]float64, error) {
	sorted := sortedCopy(values)
	if len(sorted) == 0 {
		return nil, &DegenerateDistributionError{Reason: "no values"}
	}

	edges := edgesOf(sorted)
	if !increasing(edges) {
		return nil, &DegenerateDistributionError{
			Rows:     len(sorted),
			Distinct: countDistinct(sorted),
			Edges:    edges,
			Reason:   "bucket edges are not unique",
		}
	}
	return edges, nil
}

// Quartiles is a bucket assignment for a set of values.
type Quartiles struct {
	// Index holds the bucket (0..3) of each input value, in input order.
	Index []int
	// Edges are the value quantiles, whether or not they were used.
	Edges []float64
	// Ranked is set when buckets come from the dense rank of the distinct
	// values instead of the value edges.
	Ranked bool
}

// QuartileBuckets assigns every value to one of four buckets.
//
// Value edges are used when they are strictly increasing and, given at least
// four distinct values, leave no bucket empty. Otherwise, with four or more
// distinct values, the distinct values are split by dense rank so equal
// values share a bucket and all four buckets are filled. Fewer than four
// distinct values with colliding edges is a DegenerateDistributionError.
func QuartileBuckets(values []float64) (Quartiles, error) {
	sorted := sortedCopy(values)
	if len(sorted) == 0 {
		return Quartiles{}, &DegenerateDistributionError{Reason: "no values"}
	}

	edges := edgesOf(sorted)
	distinct := countDistinct(sorted)

	if increasing(edges) {
		idx := make([]int, len(values))
		var counts [4]int
		for i, v := range values {
			idx[i] = QuartileIndex(v, edges)
			counts[idx[i]]++
		}
		if distinct < 4 || (counts[0] > 0 && counts[1] > 0 && counts[2] > 0 && counts[3] > 0) {
			return Quartiles{Index: idx, Edges: edges}, nil
		}
	}

	if distinct < 4 {
		return Quartiles{}, &DegenerateDistributionError{
			Rows:     len(sorted),
			Distinct: distinct,
			Edges:    edges,
			Reason:   "bucket edges are not unique",
		}
	}

	rank := make(map[float64]int, distinct)
	for _, v := range sorted {
		if _, ok := rank[v]; !ok {
			rank[v] = len(rank)
		}
	}
	idx := make([]int, len(values))
	for i, v := range values {
		idx[i] = rank[v] * 4 / distinct
	}
	return Quartiles{Index: idx, Edges: edges, Ranked: true}, nil
}

func sortedCopy(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted
}

func edgesOf(sorted []float64) []float64 {
	edges := make([]float64, 5)
	for i := range edges {
		edges[i] = Quantile(float64(i)/4, sorted)
	}
	return edges
}

func increasing(edges []float64) bool {
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return false
		}
	}
	return true
}

// QuartileIndex places v into a right-closed bucket; the first bucket also
// holds the minimum, so a value equal to a cut point lands in the lower bucket.
func QuartileIndex(v float64, edges []float64) int {
	for i := 1; i < 4; i++ {
		if v <= edges[i] {
			return i - 1
		}
	}
	return 3
}

func countDistinct(sorted []float64) int {
	n := 0
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			n++
		}
	}
	return n
}
