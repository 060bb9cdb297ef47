package obsolete

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// ReachableSet is the transitive closure of the entry points over the
// forward graph, stored as a bitmap over graph file indexes.
type ReachableSet struct {
	files  []string
	index  map[string]uint32
	bitmap *roaring.Bitmap
}

// Reachable walks the forward graph from entries with an explicit
// work-list. Entries that are not graph files are ignored.
func Reachable(g *Graph, entries []string) *ReachableSet {
	rs := &ReachableSet{
		files:  g.Files,
		index:  make(map[string]uint32, len(g.Files)),
		bitmap: roaring.New(),
	}
	for i, f := range g.Files {
		rs.index[f] = uint32(i)
	}

	stack := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := rs.index[e]; ok {
			stack = append(stack, e)
		}
	}

	for len(stack) > 0 {
		file := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !rs.bitmap.CheckedAdd(rs.index[file]) {
			continue
		}
		for _, dep := range g.Forward[file] {
			if idx, ok := rs.index[dep]; ok && !rs.bitmap.Contains(idx) {
				stack = append(stack, dep)
			}
		}
	}
	return rs
}

// Contains reports whether file is reachable.
func (rs *ReachableSet) Contains(file string) bool {
	idx, ok := rs.index[file]
	return ok && rs.bitmap.Contains(idx)
}

// Len returns the number of reachable files.
func (rs *ReachableSet) Len() int {
	return int(rs.bitmap.GetCardinality())
}

// Files returns the reachable files in sorted order.
func (rs *ReachableSet) Files() []string {
	out := make([]string, 0, rs.Len())
	it := rs.bitmap.Iterator()
	for it.HasNext() {
		out = append(out, rs.files[it.Next()])
	}
	return out
}
