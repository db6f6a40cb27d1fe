package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holtgrewe/vt/internal/genome"
)

func readAllGroups(t *testing.T, r *SyncedReader) []*Group {
	t.Helper()
	var groups []*Group
	for {
		g, err := r.ReadNextGroup()
		require.NoError(t, err)
		if g == nil {
			return groups
		}
		groups = append(groups, g)
	}
}

func TestSyncedReader_SortedUnionOfLoci(t *testing.T) {
	a := newStream("a.vcf", nil,
		rec("chr1", 100, "A>T"),
		rec("chr1", 300, "C>G"),
		rec("chr2", 5, "G>A"),
	)
	b := newStream("b.vcf", nil,
		rec("chr1", 100, "A>C"),
		rec("chr1", 200, "T>A"),
		rec("chr2", 5, "G>A"),
		rec("chr2", 7, "G>A"),
	)
	c := newStream("c.vcf", nil)

	r, err := newReader(a, b, c)
	require.NoError(t, err)
	defer r.Close()

	groups := readAllGroups(t, r)

	want := []genome.Locus{
		{Chrom: "chr1", Pos: 100},
		{Chrom: "chr1", Pos: 200},
		{Chrom: "chr1", Pos: 300},
		{Chrom: "chr2", Pos: 5},
		{Chrom: "chr2", Pos: 7},
	}
	require.Len(t, groups, len(want))
	for i, g := range groups {
		assert.Equal(t, want[i], g.Locus)
		if i > 0 {
			assert.True(t, testOrder.Less(groups[i-1].Locus, g.Locus), "loci must increase")
		}
	}

	assert.Equal(t, []int{0, 1}, groups[0].Streams())
	assert.Equal(t, []int{1}, groups[1].Streams())
	assert.Equal(t, []int{0}, groups[2].Streams())
	assert.Equal(t, []int{0, 1}, groups[3].Streams())
	assert.Equal(t, []int{1}, groups[4].Streams())
	assert.Equal(t, 0, r.Active())
}

func TestSyncedReader_GroupCompleteness(t *testing.T) {
	// Same position, different alleles: allele content is not part of the key.
	a := newStream("a.vcf", nil, rec("chr1", 100, "A>T"))
	b := newStream("b.vcf", nil, rec("chr1", 100, "AT>A"))
	c := newStream("c.vcf", nil, rec("chr1", 101, "A>T"))

	r, err := newReader(a, b, c)
	require.NoError(t, err)
	defer r.Close()

	g, err := r.ReadNextGroup()
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, []int{0, 1}, g.Streams())
	assert.Equal(t, "AT", g.Record(1).Ref)
	assert.Nil(t, g.Record(2))

	// Only the included cursors advanced.
	assert.True(t, r.Cursors()[0].Exhausted())
	assert.True(t, r.Cursors()[1].Exhausted())
	assert.False(t, r.Cursors()[2].Exhausted())
}

func TestSyncedReader_ContigOrderIsNotLexical(t *testing.T) {
	order := genome.NewContigOrder("chr2", "chr10", "chr1")
	a := newStream("a.vcf", nil, rec("chr2", 10, "A>T"), rec("chr10", 1, "A>T"), rec("chr1", 1, "A>T"))
	b := newStream("b.vcf", nil, rec("chr10", 1, "A>G"))

	ca, err := NewCursor(0, a.name, a, order, nil)
	require.NoError(t, err)
	cb, err := NewCursor(1, b.name, b, order, nil)
	require.NoError(t, err)
	r := NewSyncedReader(order, []*Cursor{ca, cb})
	defer r.Close()

	groups := readAllGroups(t, r)
	require.Len(t, groups, 3)
	assert.Equal(t, "chr2", groups[0].Locus.Chrom)
	assert.Equal(t, "chr10", groups[1].Locus.Chrom)
	assert.Len(t, groups[1].Entries, 2)
	assert.Equal(t, "chr1", groups[2].Locus.Chrom)
}

func TestSyncedReader_Deterministic(t *testing.T) {
	build := func() []*sliceStream {
		return []*sliceStream{
			newStream("a.vcf", nil, rec("chr1", 1, "A>T"), rec("chr1", 5, "A>T"), rec("chr2", 3, "A>T")),
			newStream("b.vcf", nil, rec("chr1", 5, "A>T"), rec("chr2", 1, "A>T")),
			newStream("c.vcf", nil, rec("chr1", 1, "A>T"), rec("chr2", 3, "A>T")),
		}
	}

	type step struct {
		locus   genome.Locus
		streams []int
	}
	run := func() []step {
		r, err := newReader(build()...)
		require.NoError(t, err)
		defer r.Close()
		var steps []step
		for _, g := range readAllGroups(t, r) {
			steps = append(steps, step{g.Locus, g.Streams()})
		}
		return steps
	}

	first := run()
	for k := 0; k < 5; k++ {
		assert.Equal(t, first, run())
	}
}

func TestSyncedReader_UnsortedInput(t *testing.T) {
	a := newStream("a.vcf", nil, rec("chr1", 200, "A>T"), rec("chr1", 100, "A>T"))
	b := newStream("b.vcf", nil, rec("chr1", 150, "A>T"))

	r, err := newReader(a, b)
	require.NoError(t, err)
	defer r.Close()

	g, err := r.ReadNextGroup()
	require.NoError(t, err)
	assert.Equal(t, int64(150), g.Locus.Pos)

	// Advancing a past 200 reveals 100.
	g, err = r.ReadNextGroup()
	require.Error(t, err)
	assert.Nil(t, g)

	var ue *UnsortedStreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "a.vcf", ue.Stream)
	assert.Equal(t, genome.Locus{Chrom: "chr1", Pos: 200}, ue.Previous)
	assert.Equal(t, genome.Locus{Chrom: "chr1", Pos: 100}, ue.Current)
	assert.True(t, errors.Is(err, ErrMalformedInput))
	assert.Contains(t, err.Error(), "a.vcf")
	assert.Contains(t, err.Error(), "chr1:100")
}

func TestSyncedReader_UnsortedAcrossContigs(t *testing.T) {
	a := newStream("a.vcf", nil, rec("chr2", 1, "A>T"), rec("chr1", 1, "A>T"))

	// The first record primes fine; the error shows up on the first advance.
	r, err := newReader(a)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReadNextGroup()
	var ue *UnsortedStreamError
	assert.True(t, errors.As(err, &ue))
}

func TestSyncedReader_Close(t *testing.T) {
	a := newStream("a.vcf", nil, rec("chr1", 1, "A>T"))
	b := newStream("b.vcf", nil, rec("chr1", 2, "A>T"))

	r, err := newReader(a, b)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)

	g, err := r.ReadNextGroup()
	assert.NoError(t, err)
	assert.Nil(t, g)
}
