package gzindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexClosestBefore(t *testing.T) {
	var idx Index
	idx.Append(Checkpoint{CompressedOffset: 0, UncompressedOffset: 0})
	idx.Append(Checkpoint{CompressedOffset: 100, UncompressedOffset: 1 << 20})
	idx.Append(Checkpoint{CompressedOffset: 200, UncompressedOffset: 2 << 20})

	require.Equal(t, 3, idx.Len())

	cp, ok := idx.ClosestBefore(0)
	require.True(t, ok)
	assert.Equal(t, int64(0), cp.UncompressedOffset)

	cp, ok = idx.ClosestBefore((1 << 20) + 5)
	require.True(t, ok)
	assert.Equal(t, int64(1<<20), cp.UncompressedOffset)

	cp, ok = idx.ClosestBefore(1 << 30)
	require.True(t, ok)
	assert.Equal(t, int64(2<<20), cp.UncompressedOffset)
}

func TestIndexClosestBeforeEmpty(t *testing.T) {
	var idx Index
	_, ok := idx.ClosestBefore(100)
	assert.False(t, ok)
	assert.Equal(t, int64(0), idx.lastUncompressedOffset())
}
