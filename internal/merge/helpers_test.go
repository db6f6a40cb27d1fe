package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/holtgrewe/vt/internal/genome"
	"github.com/holtgrewe/vt/internal/vcf"
)

// sliceStream is an in-memory vcf.Stream.
type sliceStream struct {
	name    string
	samples []string
	contigs []string
	recs    []*vcf.Variant
	failAt  int // index whose read fails; -1 for never
	next    int
	closed  bool
}

func newStream(name string, samples []string, recs ...*vcf.Variant) *sliceStream {
	return &sliceStream{
		name:    name,
		samples: samples,
		contigs: []string{"chr1", "chr2"},
		recs:    recs,
		failAt:  -1,
	}
}

func (s *sliceStream) Next() (*vcf.Variant, error) {
	if s.next == s.failAt {
		s.next++
		return nil, &vcf.ParseError{Line: s.next, Message: "bad record"}
	}
	if s.next >= len(s.recs) {
		return nil, nil
	}
	v := s.recs[s.next]
	s.next++
	return v, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

func (s *sliceStream) LineNumber() int       { return s.next }
func (s *sliceStream) Name() string          { return s.name }
func (s *sliceStream) SampleNames() []string { return s.samples }
func (s *sliceStream) Contigs() []string     { return s.contigs }

func (s *sliceStream) ContigLines() []string {
	lines := make([]string, len(s.contigs))
	for i, c := range s.contigs {
		lines[i] = fmt.Sprintf("##contig=<ID=%s,length=1000>", c)
	}
	return lines
}

// rec builds a variant. alleles is "REF>ALT1,ALT2" (ALT may be empty);
// gts are GT strings.
func rec(chrom string, pos int64, alleles string, gts ...string) *vcf.Variant {
	ref, alt, _ := strings.Cut(alleles, ">")
	v := &vcf.Variant{Chrom: chrom, Pos: pos, ID: ".", Ref: ref}
	if alt != "" {
		v.Alt = strings.Split(alt, ",")
	}
	for _, s := range gts {
		gt, err := vcf.ParseGenotype(s)
		if err != nil {
			panic(err)
		}
		v.Genotypes = append(v.Genotypes, gt)
	}
	return v
}

func gt(a, b int) vcf.Genotype {
	return vcf.Genotype{A: a, B: b}
}

var testOrder = genome.NewContigOrder("chr1", "chr2")

// newReader primes one cursor per stream.
func newReader(streams ...*sliceStream) (*SyncedReader, error) {
	return newReaderWithIntervals(nil, streams...)
}

func newReaderWithIntervals(ivs *genome.IntervalSet, streams ...*sliceStream) (*SyncedReader, error) {
	cursors := make([]*Cursor, len(streams))
	for i, s := range streams {
		c, err := NewCursor(i, s.name, s, testOrder, ivs)
		if err != nil {
			return nil, err
		}
		cursors[i] = c
	}
	return NewSyncedReader(testOrder, cursors), nil
}

// openFuncFor serves streams by name.
func openFuncFor(streams ...*sliceStream) OpenFunc {
	return func(_ context.Context, path string) (vcf.Stream, error) {
		for _, s := range streams {
			if s.name == path {
				return s, nil
			}
		}
		return nil, fmt.Errorf("no such file")
	}
}

// memSink records everything written to it.
type memSink struct {
	header  *Header
	records []*Record
	closed  bool
	failAt  int // record index whose write fails; -1 for never
}

func newMemSink() *memSink {
	return &memSink{failAt: -1}
}

func (m *memSink) WriteHeader(h *Header) error {
	m.header = h
	return nil
}

func (m *memSink) Write(r *Record) error {
	if len(m.records) == m.failAt {
		return fmt.Errorf("disk full")
	}
	m.records = append(m.records, r)
	return nil
}

func (m *memSink) Close() error {
	m.closed = true
	return nil
}
