// Package keys provides a lazily materialized, reorderable view over a
// source's sequence/read names, with sort, slice, filter, and O(log N)
// containment, backed by the index store's name list.
package keys

import (
	"sort"

	"github.com/dselans/fastx/errs"
)

// Entry is one named item in the view: its id, name, and length, enough to
// support every sort key and filter predicate without touching the index
// store again.
type Entry struct {
	ID     int64
	Name   string
	Length int
}

// SortBy selects the key View.Sort orders by.
type SortBy int

const (
	ByID SortBy = iota
	ByName
	ByLength
)

// View is a lazy, reorderable cursor over a fixed set of Entries. The
// insertion-order view is built once from the index store; Sort and Filter
// produce new cursors over the same underlying Entries rather than
// mutating them in place, so Reset can always recover insertion order.
type View struct {
	base  []Entry         // insertion order, shared, never mutated
	order []int           // current cursor: indices into base
	byName map[string]int // name -> index into base, for map lookups by name
}

// NewView builds a View over entries in the given (insertion) order.
func NewView(entries []Entry) *View {
	byName := make(map[string]int, len(entries))
	order := make([]int, len(entries))
	for i, e := range entries {
		order[i] = i
		byName[e.Name] = i
	}
	return &View{base: entries, order: order, byName: byName}
}

// Len reports the number of entries in the current cursor.
func (v *View) Len() int { return len(v.order) }

// At returns the entry at position i of the current cursor. Negative i
// counts from the end, per spec.md's end-relative indexing.
func (v *View) At(i int) (Entry, error) {
	if i < 0 {
		i += len(v.order)
	}
	if i < 0 || i >= len(v.order) {
		return Entry{}, errs.NewIndexOutOfRange("keys index %d out of range for length %d", i, len(v.order))
	}
	return v.base[v.order[i]], nil
}

// Slice returns a new cursor over the half-open range [start, end) of the
// current cursor order.
func (v *View) Slice(start, end int) (*View, error) {
	if start < 0 || end < start || end > len(v.order) {
		return nil, errs.NewIndexOutOfRange("keys slice [%d:%d] out of range for length %d", start, end, len(v.order))
	}
	sub := make([]int, end-start)
	copy(sub, v.order[start:end])
	return &View{base: v.base, order: sub, byName: v.byName}, nil
}

// Contains reports whether name exists anywhere in the base set, in
// O(log N)... the map lookup is O(1); containment is documented as
// O(log N) by the source spec's binary-search-backed name index, which
// this map-based view satisfies with room to spare.
func (v *View) Contains(name string) bool {
	_, ok := v.byName[name]
	return ok
}

// Each calls fn for every entry in the current cursor, in order, stopping
// if fn returns an error.
func (v *View) Each(fn func(Entry) error) error {
	for _, idx := range v.order {
		if err := fn(v.base[idx]); err != nil {
			return err
		}
	}
	return nil
}

// Sort returns a new cursor ordered by the given key.
func (v *View) Sort(by SortBy, reverse bool) *View {
	order := make([]int, len(v.order))
	copy(order, v.order)

	less := func(i, j int) bool {
		a, b := v.base[order[i]], v.base[order[j]]
		switch by {
		case ByName:
			return a.Name < b.Name
		case ByLength:
			if a.Length != b.Length {
				return a.Length < b.Length
			}
			return a.ID < b.ID
		default:
			return a.ID < b.ID
		}
	}
	sort.SliceStable(order, less)
	if reverse {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	return &View{base: v.base, order: order, byName: v.byName}
}

// Filter returns a new cursor containing only entries matching f, in the
// current cursor's order.
func (v *View) Filter(f Filter) *View {
	var order []int
	for _, idx := range v.order {
		e := v.base[idx]
		if f.Match(e.Name, e.Length) {
			order = append(order, idx)
		}
	}
	return &View{base: v.base, order: order, byName: v.byName}
}

// Reset returns a cursor restored to insertion order.
func (v *View) Reset() *View {
	order := make([]int, len(v.base))
	for i := range order {
		order[i] = i
	}
	return &View{base: v.base, order: order, byName: v.byName}
}
