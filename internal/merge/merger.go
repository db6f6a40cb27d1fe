package merge

import (
	"fmt"

	"github.com/holtgrewe/vt/internal/genome"
	"github.com/holtgrewe/vt/internal/vcf"
)

// Record is one merged site: a unified allele list and a genotype for every
// sample of every stream.
type Record struct {
	Locus genome.Locus
	ID    string

	// Alleles holds the reference allele at index 0 followed by the
	// alternates. Genotype indices point into it.
	Alleles []string

	// Genotypes has one entry per output sample, grouped stream by stream
	// in stream order.
	Genotypes []vcf.Genotype

	// Streams lists the streams that had a record at this locus.
	Streams []int
}

// Ref returns the reference allele.
func (r *Record) Ref() string {
	return r.Alleles[0]
}

// Alt returns the alternate alleles.
func (r *Record) Alt() []string {
	return r.Alleles[1:]
}

// indexOf returns the index of allele, appending it if absent.
func (r *Record) indexOf(allele string) int {
	for i, a := range r.Alleles {
		if a == allele {
			return i
		}
	}
	r.Alleles = append(r.Alleles, allele)
	return len(r.Alleles) - 1
}

// Merger combines a Group into a Record with stable sample columns.
type Merger struct {
	names   []string
	counts  []int
	offsets []int
	total   int
}

// NewMerger creates a merger for streams with the given names and sample
// counts, in stream order.
func NewMerger(names []string, sampleCounts []int) *Merger {
	m := &Merger{
		names:   names,
		counts:  sampleCounts,
		offsets: make([]int, len(sampleCounts)),
	}
	for i, n := range sampleCounts {
		m.offsets[i] = m.total
		m.total += n
	}
	return m
}

// NumSamples returns the number of genotype columns in every merged record.
func (m *Merger) NumSamples() int {
	return m.total
}

// Merge builds the merged record for g. The reference allele comes from the
// first contributing stream; alleles from later records are appended on
// first sight by exact string match and genotype indices rewritten to
// match. Samples of streams absent from g are missing.
func (m *Merger) Merge(g *Group) (*Record, error) {
	if len(g.Entries) == 0 {
		return nil, fmt.Errorf("empty locus group at %s", g.Locus)
	}

	first := g.Entries[0].Record
	rec := &Record{
		Locus:     g.Locus,
		ID:        first.ID,
		Alleles:   []string{first.Ref},
		Genotypes: make([]vcf.Genotype, m.total),
		Streams:   make([]int, 0, len(g.Entries)),
	}
	for i := range rec.Genotypes {
		rec.Genotypes[i] = vcf.MissingGenotype()
	}

	for _, e := range g.Entries {
		v := e.Record
		if len(v.Genotypes) != m.counts[e.Stream] {
			return nil, &InconsistentGenotypeError{
				Stream: m.names[e.Stream],
				Locus:  g.Locus,
				Reason: fmt.Sprintf("record has %d genotypes, header has %d samples", len(v.Genotypes), m.counts[e.Stream]),
			}
		}

		// local allele index -> unified allele index
		remap := make([]int, v.NumAlleles())
		remap[0] = rec.indexOf(v.Ref)
		for i, alt := range v.Alt {
			remap[i+1] = rec.indexOf(alt)
		}

		offset := m.offsets[e.Stream]
		for s, gt := range v.Genotypes {
			a, err := remapAllele(gt.A, remap)
			if err == nil {
				gt.A = a
				gt.B, err = remapAllele(gt.B, remap)
			}
			if err != nil {
				return nil, &InconsistentGenotypeError{
					Stream: m.names[e.Stream],
					Locus:  g.Locus,
					Reason: fmt.Sprintf("sample %d: %v", s+1, err),
				}
			}
			rec.Genotypes[offset+s] = gt
		}
		rec.Streams = append(rec.Streams, e.Stream)
	}

	return rec, nil
}

func remapAllele(idx int, remap []int) (int, error) {
	if idx < 0 {
		return idx, nil
	}
	if idx >= len(remap) {
		return 0, fmt.Errorf("allele index %d out of range for %d alleles", idx, len(remap))
	}
	return remap[idx], nil
}
