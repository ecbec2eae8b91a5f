package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGCContentAndSkew(t *testing.T) {
	c := Composition{A: 10, C: 20, G: 30, T: 40}
	assert.InDelta(t, 50.0, GCContent(c), 0.001)
	assert.InDelta(t, 0.2, GCSkew(c), 0.001)
}

func TestGCContentZeroDenominator(t *testing.T) {
	assert.Equal(t, 0.0, GCContent(Composition{}))
	assert.Equal(t, 0.0, GCSkew(Composition{}))
}

func TestMeanMedian(t *testing.T) {
	lengths := []int64{10, 20, 30, 40}
	assert.InDelta(t, 25.0, Mean(lengths), 0.001)
	assert.InDelta(t, 25.0, Median(lengths), 0.001)

	odd := []int64{5, 1, 9}
	assert.InDelta(t, 5.0, Median(odd), 0.001)
	assert.Equal(t, []int64{5, 1, 9}, odd) // Median must not mutate input
}

func TestLongestShortest(t *testing.T) {
	entries := []LengthedID{{ID: 1, Length: 100}, {ID: 2, Length: 300}, {ID: 3, Length: 50}}
	longest, ok := Longest(entries)
	assert.True(t, ok)
	assert.Equal(t, int64(2), longest.ID)

	shortest, ok := Shortest(entries)
	assert.True(t, ok)
	assert.Equal(t, int64(3), shortest.ID)

	_, ok = Longest(nil)
	assert.False(t, ok)
}

func TestNL50(t *testing.T) {
	lengths := []int64{100, 90, 80, 10, 5}
	length, count := NL(lengths, 50)
	// total = 285, target = 142.5; cumulative 100, 190 reaches target at 2nd seq
	assert.Equal(t, int64(90), length)
	assert.Equal(t, 2, count)
}

func TestCountThreshold(t *testing.T) {
	lengths := []int64{1, 5, 10, 50, 100}
	assert.Equal(t, 2, Count(lengths, 50))
}
