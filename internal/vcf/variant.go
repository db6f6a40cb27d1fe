// Package vcf provides VCF file parsing functionality.
package vcf

import "github.com/holtgrewe/vt/internal/genome"

// Variant represents a single record from a VCF file.
type Variant struct {
	Chrom   string   // Chromosome name (e.g., "12", "chr12")
	Pos     int64    // 1-based genomic position
	ID      string   // Variant identifier (e.g., rs ID)
	Ref     string   // Reference allele
	Alt     []string // Alternate alleles in file order; empty for reference-only sites
	Qual    string   // Quality score as written
	Filter  string   // Filter status (PASS or filter name)
	RawInfo string   // INFO column as written
	Format  string   // FORMAT column, empty when there are no samples

	// SampleColumns holds the raw per-sample columns.
	SampleColumns []string

	// Genotypes holds one GT pair per sample, in header order.
	Genotypes []Genotype
}

// Locus returns the record position.
func (v *Variant) Locus() genome.Locus {
	return genome.Locus{Chrom: v.Chrom, Pos: v.Pos}
}

// Alleles returns the reference allele followed by the alternates, so a
// genotype allele index can be used to index it directly.
func (v *Variant) Alleles() []string {
	out := make([]string, 0, 1+len(v.Alt))
	out = append(out, v.Ref)
	return append(out, v.Alt...)
}

// NumAlleles returns the number of alleles including the reference.
func (v *Variant) NumAlleles() int {
	return 1 + len(v.Alt)
}

// IsMultiAllelic returns true if the record has more than one alternate allele.
func (v *Variant) IsMultiAllelic() bool {
	return len(v.Alt) > 1
}
