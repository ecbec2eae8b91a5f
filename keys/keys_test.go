package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{ID: 1, Name: "chr1", Length: 100},
		{ID: 2, Name: "chr2", Length: 50},
		{ID: 3, Name: "plasmid1", Length: 10},
	}
}

func TestViewAtAndNegativeIndex(t *testing.T) {
	v := NewView(sampleEntries())
	require.Equal(t, 3, v.Len())

	e, err := v.At(0)
	require.NoError(t, err)
	assert.Equal(t, "chr1", e.Name)

	e, err = v.At(-1)
	require.NoError(t, err)
	assert.Equal(t, "plasmid1", e.Name)

	_, err = v.At(99)
	assert.Error(t, err)
}

func TestViewSortByLength(t *testing.T) {
	v := NewView(sampleEntries())
	sorted := v.Sort(ByLength, false)

	e0, _ := sorted.At(0)
	e2, _ := sorted.At(2)
	assert.Equal(t, "plasmid1", e0.Name)
	assert.Equal(t, "chr1", e2.Name)

	desc := v.Sort(ByLength, true)
	e0d, _ := desc.At(0)
	assert.Equal(t, "chr1", e0d.Name)
}

func TestViewFilterAndReset(t *testing.T) {
	v := NewView(sampleEntries())
	filtered := v.Filter(LenGt(40))
	assert.Equal(t, 2, filtered.Len())

	prefixed := v.Filter(PrefixEq("chr"))
	assert.Equal(t, 2, prefixed.Len())

	combined := v.Filter(And(LenGt(40), PrefixEq("chr")))
	assert.Equal(t, 2, combined.Len())

	sliced, err := v.Slice(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, sliced.Len())

	reset := sliced.Reset()
	assert.Equal(t, 3, reset.Len())
}

func TestViewContains(t *testing.T) {
	v := NewView(sampleEntries())
	assert.True(t, v.Contains("chr1"))
	assert.False(t, v.Contains("nope"))
}
