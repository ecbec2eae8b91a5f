package gzindex

import "sort"

// Index is the ordered checkpoint table for one gzip source, sorted
// ascending by UncompressedOffset. Persistence lives in the index package's
// gzi table rather than a side file; Index itself is just the in-memory
// shape and the binary search used at read time.
type Index struct {
	Checkpoints []Checkpoint
}

// Append records a new checkpoint. Callers must add checkpoints in
// increasing UncompressedOffset order, which is how Build produces them.
func (idx *Index) Append(cp Checkpoint) {
	idx.Checkpoints = append(idx.Checkpoints, cp)
}

// Len reports the number of checkpoints.
func (idx *Index) Len() int {
	return len(idx.Checkpoints)
}

func (idx *Index) lastUncompressedOffset() int64 {
	if len(idx.Checkpoints) == 0 {
		return 0
	}
	return idx.Checkpoints[len(idx.Checkpoints)-1].UncompressedOffset
}

// ClosestBefore returns the checkpoint with the greatest UncompressedOffset
// that is <= offset. ok is false when the index is empty or when offset is
// below the first checkpoint's UncompressedOffset (Build always records the
// offset-0 checkpoint first, so for a built index only a negative offset).
func (idx *Index) ClosestBefore(offset int64) (cp Checkpoint, ok bool) {
	j := sort.Search(len(idx.Checkpoints), func(j int) bool {
		return idx.Checkpoints[j].UncompressedOffset > offset
	})
	if j == 0 {
		return Checkpoint{}, false
	}
	return idx.Checkpoints[j-1], true
}
