// Package stats computes aggregate statistics over a source's recorded
// sequence lengths and base composition.
package stats

import (
	"sort"

	"github.com/dselans/fastx/fastq"
)

// Composition is the per-base count across some set of sequences.
type Composition struct {
	A, C, G, T, N int64
	Other         int64
}

// Aggregate holds the whole-source statistics spec.md §4.6 requires, kept
// in the index store's agg table and recomputed only when stale. MinQual,
// MaxQual, and Encodings are only meaningful for a FASTQ source; a FASTA
// source leaves them zero/nil.
type Aggregate struct {
	Size        int64
	Composition Composition
	Count       int
	MinLength   int64
	MaxLength   int64
	MinQual     byte
	MaxQual     byte
	Encodings   []fastq.Encoding
}

// GCContent is 100 * (C+G) / (A+C+G+T); other bases are excluded.
func GCContent(c Composition) float64 {
	denom := c.A + c.C + c.G + c.T
	if denom == 0 {
		return 0
	}
	return 100 * float64(c.C+c.G) / float64(denom)
}

// GCSkew is (G-C) / (G+C).
func GCSkew(c Composition) float64 {
	if c.G+c.C == 0 {
		return 0
	}
	return float64(c.G-c.C) / float64(c.G+c.C)
}

// Mean returns the mean of lengths.
func Mean(lengths []int64) float64 {
	if len(lengths) == 0 {
		return 0
	}
	var sum int64
	for _, l := range lengths {
		sum += l
	}
	return float64(sum) / float64(len(lengths))
}

// Median returns the median of lengths. It does not mutate the input.
func Median(lengths []int64) float64 {
	if len(lengths) == 0 {
		return 0
	}
	sorted := append([]int64(nil), lengths...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// LengthedID pairs a sequence id with its base_length, the minimum
// information Longest/Shortest/NL/Count need.
type LengthedID struct {
	ID     int64
	Length int64
}

// Longest returns the entry with the maximum length; ties break by the
// smaller id.
func Longest(entries []LengthedID) (LengthedID, bool) {
	return extremum(entries, func(a, b LengthedID) bool { return a.Length > b.Length })
}

// Shortest returns the entry with the minimum length; ties break by the
// smaller id.
func Shortest(entries []LengthedID) (LengthedID, bool) {
	return extremum(entries, func(a, b LengthedID) bool { return a.Length < b.Length })
}

func extremum(entries []LengthedID, better func(a, b LengthedID) bool) (LengthedID, bool) {
	if len(entries) == 0 {
		return LengthedID{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if better(e, best) || (e.Length == best.Length && e.ID < best.ID) {
			best = e
		}
	}
	return best, true
}

// NL computes the NL(p) statistic: sort lengths descending, accumulate
// until the cumulative sum reaches p/100 of the total, and return the
// length at that point along with the count of sequences consumed so far.
// p must be in (0, 100).
func NL(lengths []int64, p float64) (length int64, count int) {
	if len(lengths) == 0 || p <= 0 || p >= 100 {
		return 0, 0
	}
	sorted := append([]int64(nil), lengths...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	var total int64
	for _, l := range sorted {
		total += l
	}
	target := p / 100 * float64(total)

	var cum int64
	for i, l := range sorted {
		cum += l
		if float64(cum) >= target {
			return l, i + 1
		}
	}
	return sorted[len(sorted)-1], len(sorted)
}

// Count returns the number of lengths >= threshold.
func Count(lengths []int64, threshold int64) int {
	n := 0
	for _, l := range lengths {
		if l >= threshold {
			n++
		}
	}
	return n
}
