// Package metadata provides tag-based filtering over corpus entries using
// Roaring Bitmaps. Each tag maps to the set of corpus entry IDs carrying it;
// tag predicates compile into accept filters applied during the candidate
// stage of a search.
package metadata

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index is a tag -> entry-ID inverted index. It is populated once at corpus
// build time and read-only afterwards, so lookups need no coordination.
type Index struct {
	tags map[string]*roaring.Bitmap
}

// NewIndex creates an empty tag index.
func NewIndex() *Index {
	return &Index{tags: make(map[string]*roaring.Bitmap)}
}

// Add registers tags for a corpus entry ID.
func (ix *Index) Add(id uint32, tags ...string) {
	for _, tag := range tags {
		bm, ok := ix.tags[tag]
		if !ok {
			bm = roaring.New()
			ix.tags[tag] = bm
		}
		bm.Add(id)
	}
}

// Tags returns all known tags in sorted order.
func (ix *Index) Tags() []string {
	out := make([]string, 0, len(ix.tags))
	for tag := range ix.tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Cardinality returns the number of entries carrying tag.
func (ix *Index) Cardinality(tag string) uint64 {
	if bm, ok := ix.tags[tag]; ok {
		return bm.GetCardinality()
	}
	return 0
}

// AnyOf returns the union of the given tags' entry sets.
func (ix *Index) AnyOf(tags ...string) *roaring.Bitmap {
	out := roaring.New()
	for _, tag := range tags {
		if bm, ok := ix.tags[tag]; ok {
			out.Or(bm)
		}
	}
	return out
}

// AllOf returns the intersection of the given tags' entry sets. A tag with no
// entries makes the result empty.
func (ix *Index) AllOf(tags ...string) *roaring.Bitmap {
	out := roaring.New()
	for i, tag := range tags {
		bm, ok := ix.tags[tag]
		if !ok {
			return roaring.New()
		}
		if i == 0 {
			out.Or(bm)
			continue
		}
		out.And(bm)
	}
	return out
}

// Accept compiles an any-of tag predicate into an accept filter over entry
// IDs. With no tags, the filter accepts everything (nil is returned).
func (ix *Index) Accept(tags ...string) func(id uint32) bool {
	if len(tags) == 0 {
		return nil
	}
	bm := ix.AnyOf(tags...)
	return bm.Contains
}
