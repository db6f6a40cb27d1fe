// Package genome provides genomic coordinates, the contig dictionary that
// orders them, and interval restrictions.
package genome

import "fmt"

// Locus is a 1-based position on a chromosome.
type Locus struct {
	Chrom string
	Pos   int64
}

func (l Locus) String() string {
	return fmt.Sprintf("%s:%d", l.Chrom, l.Pos)
}

// ContigOrder is the chromosome dictionary used to compare loci. Chromosomes
// are ranked by the order in which they were added, not lexically.
type ContigOrder struct {
	names []string
	rank  map[string]int
}

// NewContigOrder creates a dictionary from names in canonical order.
// Duplicate names keep their first rank.
func NewContigOrder(names ...string) *ContigOrder {
	o := &ContigOrder{rank: make(map[string]int, len(names))}
	for _, n := range names {
		o.Add(n)
	}
	return o
}

// Add appends a chromosome to the end of the dictionary if it is not
// already present. It reports whether the name was new.
func (o *ContigOrder) Add(name string) bool {
	if _, ok := o.rank[name]; ok {
		return false
	}
	o.rank[name] = len(o.names)
	o.names = append(o.names, name)
	return true
}

// Rank returns the position of chrom in the dictionary.
func (o *ContigOrder) Rank(chrom string) (int, bool) {
	r, ok := o.rank[chrom]
	return r, ok
}

// Contains reports whether chrom is in the dictionary.
func (o *ContigOrder) Contains(chrom string) bool {
	_, ok := o.rank[chrom]
	return ok
}

// Names returns the chromosomes in dictionary order.
func (o *ContigOrder) Names() []string {
	out := make([]string, len(o.names))
	copy(out, o.names)
	return out
}

// Len returns the number of chromosomes in the dictionary.
func (o *ContigOrder) Len() int {
	return len(o.names)
}

// Compare returns -1, 0 or +1 as a sorts before, equal to or after b.
// Both chromosomes must be in the dictionary.
func (o *ContigOrder) Compare(a, b Locus) (int, error) {
	ra, ok := o.rank[a.Chrom]
	if !ok {
		return 0, &UnknownContigError{Chrom: a.Chrom}
	}
	rb, ok := o.rank[b.Chrom]
	if !ok {
		return 0, &UnknownContigError{Chrom: b.Chrom}
	}
	switch {
	case ra < rb:
		return -1, nil
	case ra > rb:
		return 1, nil
	case a.Pos < b.Pos:
		return -1, nil
	case a.Pos > b.Pos:
		return 1, nil
	}
	return 0, nil
}

// Less reports whether a sorts strictly before b. Chromosomes outside the
// dictionary sort after all known ones.
func (o *ContigOrder) Less(a, b Locus) bool {
	ra, oka := o.rank[a.Chrom]
	rb, okb := o.rank[b.Chrom]
	if !oka {
		ra = len(o.names)
	}
	if !okb {
		rb = len(o.names)
	}
	if ra != rb {
		return ra < rb
	}
	if a.Chrom != b.Chrom {
		return a.Chrom < b.Chrom
	}
	return a.Pos < b.Pos
}

// UnknownContigError is returned when a locus references a chromosome that is
// not in the contig dictionary.
type UnknownContigError struct {
	Chrom string
}

func (e *UnknownContigError) Error() string {
	return fmt.Sprintf("contig %q is not in the sequence dictionary", e.Chrom)
}
