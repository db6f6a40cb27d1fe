package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holtgrewe/vt/internal/genome"
	"github.com/holtgrewe/vt/internal/vcf"
)

func mustIntervals(t *testing.T, list string) *genome.IntervalSet {
	t.Helper()
	ivs, err := genome.ParseIntervalList(list)
	require.NoError(t, err)
	set, err := genome.NewIntervalSet(testOrder, ivs)
	require.NoError(t, err)
	return set
}

func drain(t *testing.T, c *Cursor) []genome.Locus {
	t.Helper()
	var loci []genome.Locus
	for {
		v, err := c.Next()
		require.NoError(t, err)
		if v == nil {
			return loci
		}
		loci = append(loci, v.Locus())
	}
}

func TestCursor_IntervalFiltering(t *testing.T) {
	s := newStream("a.vcf", nil,
		rec("chr1", 50, "A>T"),
		rec("chr1", 150, "A>T"),
		rec("chr1", 250, "A>T"),
	)

	c, err := NewCursor(0, s.name, s, testOrder, mustIntervals(t, "chr1:100-200"))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []genome.Locus{{Chrom: "chr1", Pos: 150}}, drain(t, c))
	assert.True(t, c.Exhausted())
	assert.Equal(t, 3, c.RecordsRead())
}

func TestCursor_StopsAfterLastInterval(t *testing.T) {
	s := newStream("a.vcf", nil,
		rec("chr1", 150, "A>T"),
		rec("chr2", 10, "A>T"),
		rec("chr2", 20, "A>T"),
	)

	c, err := NewCursor(0, s.name, s, testOrder, mustIntervals(t, "chr1:100-200"))
	require.NoError(t, err)
	defer c.Close()

	assert.Len(t, drain(t, c), 1)
	// Reading stopped at the first record past the last interval.
	assert.Equal(t, 2, c.RecordsRead())
}

func TestCursor_MultipleIntervals(t *testing.T) {
	s := newStream("a.vcf", nil,
		rec("chr1", 5, "A>T"),
		rec("chr1", 15, "A>T"),
		rec("chr1", 25, "A>T"),
		rec("chr2", 1, "A>T"),
		rec("chr2", 100, "A>T"),
	)

	c, err := NewCursor(0, s.name, s, testOrder, mustIntervals(t, "chr2,chr1:1-10,chr1:20-30"))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []genome.Locus{
		{Chrom: "chr1", Pos: 5},
		{Chrom: "chr1", Pos: 25},
		{Chrom: "chr2", Pos: 1},
		{Chrom: "chr2", Pos: 100},
	}, drain(t, c))
}

func TestCursor_EmptyStream(t *testing.T) {
	s := newStream("a.vcf", nil)

	c, err := NewCursor(0, s.name, s, testOrder, nil)
	require.NoError(t, err)

	v, ok := c.Current()
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.True(t, c.Exhausted())
	require.NoError(t, c.Advance())
	require.NoError(t, c.Close())
	assert.True(t, s.closed)
}

func TestCursor_UnknownContig(t *testing.T) {
	s := newStream("a.vcf", nil, rec("chrUn", 1, "A>T"))

	_, err := NewCursor(0, s.name, s, testOrder, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))

	var uc *genome.UnknownContigError
	require.True(t, errors.As(err, &uc))
	assert.Equal(t, "chrUn", uc.Chrom)
	assert.True(t, s.closed, "failed priming closes the source")
}

func TestCursor_ParseError(t *testing.T) {
	s := newStream("a.vcf", nil, rec("chr1", 1, "A>T"), rec("chr1", 2, "A>T"))
	s.failAt = 1

	c, err := NewCursor(0, s.name, s, testOrder, nil)
	require.NoError(t, err)
	defer c.Close()

	err = c.Advance()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))

	var pe *vcf.ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "a.vcf")
}

func TestCursor_EqualLociAllowed(t *testing.T) {
	s := newStream("a.vcf", nil, rec("chr1", 1, "A>T"), rec("chr1", 1, "A>G"))

	c, err := NewCursor(0, s.name, s, testOrder, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Len(t, drain(t, c), 2)
}
