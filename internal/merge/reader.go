package merge

import (
	"go.uber.org/multierr"

	"github.com/holtgrewe/vt/internal/genome"
	"github.com/holtgrewe/vt/internal/vcf"
)

// Entry is one stream's record within a Group.
type Entry struct {
	Stream int
	Record *vcf.Variant
}

// Group is the set of records from all streams that share one locus.
// Entries are in stream order. A Group belongs to the call that produced it;
// the records themselves are immutable and may be retained.
type Group struct {
	Locus   genome.Locus
	Entries []Entry
}

// Record returns the record contributed by stream, or nil.
func (g *Group) Record(stream int) *vcf.Variant {
	for _, e := range g.Entries {
		if e.Stream == stream {
			return e.Record
		}
	}
	return nil
}

// Streams returns the indexes of the contributing streams.
func (g *Group) Streams() []int {
	out := make([]int, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = e.Stream
	}
	return out
}

// SyncedReader walks N sorted streams in lockstep, producing one Group per
// distinct locus in dictionary order.
type SyncedReader struct {
	order   *genome.ContigOrder
	cursors []*Cursor
	closed  bool
}

// NewSyncedReader creates a reader over cursors; cursor i must have index i.
// The reader takes ownership of the cursors.
func NewSyncedReader(order *genome.ContigOrder, cursors []*Cursor) *SyncedReader {
	return &SyncedReader{order: order, cursors: cursors}
}

// NumStreams returns the number of streams, exhausted or not.
func (r *SyncedReader) NumStreams() int {
	return len(r.cursors)
}

// Active returns the number of streams that still have records.
func (r *SyncedReader) Active() int {
	n := 0
	for _, c := range r.cursors {
		if !c.Exhausted() {
			n++
		}
	}
	return n
}

// Cursors returns the underlying cursors in stream order.
func (r *SyncedReader) Cursors() []*Cursor {
	return r.cursors
}

// ReadNextGroup returns every current record whose locus equals the minimum
// locus among the active cursors, then advances exactly those cursors.
// Alleles play no part in the match. Returns nil, nil once every cursor is
// exhausted.
func (r *SyncedReader) ReadNextGroup() (*Group, error) {
	var min genome.Locus
	found := false
	for _, c := range r.cursors {
		if c.Exhausted() {
			continue
		}
		if l := c.Locus(); !found || r.order.Less(l, min) {
			min = l
			found = true
		}
	}
	if !found {
		return nil, nil
	}

	g := &Group{Locus: min}
	for _, c := range r.cursors {
		if c.Exhausted() || c.Locus() != min {
			continue
		}
		v, _ := c.Current()
		g.Entries = append(g.Entries, Entry{Stream: c.Index(), Record: v})
	}

	for _, e := range g.Entries {
		if err := r.cursors[e.Stream].Advance(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Close closes every cursor. Calling Close more than once is safe.
func (r *SyncedReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	for _, c := range r.cursors {
		err = multierr.Append(err, c.Close())
	}
	return err
}
