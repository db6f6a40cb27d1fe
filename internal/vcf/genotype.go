package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MissingAllele marks a "." allele in a genotype.
	MissingAllele = -1
	// VectorEnd marks the unused second slot of a haploid genotype.
	VectorEnd = -2
)

// Genotype is a diploid GT call. Allele indices refer to the record's
// Alleles(); haploid calls carry VectorEnd in B.
type Genotype struct {
	A, B   int
	Phased bool
}

// MissingGenotype returns the "./." call.
func MissingGenotype() Genotype {
	return Genotype{A: MissingAllele, B: MissingAllele}
}

// IsMissing reports whether no allele was called.
func (g Genotype) IsMissing() bool {
	return g.A == MissingAllele && (g.B == MissingAllele || g.B == VectorEnd)
}

// IsHaploid reports whether the call has a single allele.
func (g Genotype) IsHaploid() bool {
	return g.B == VectorEnd
}

// Indices returns the allele indices present in the call, skipping the
// haploid end marker.
func (g Genotype) Indices() []int {
	if g.B == VectorEnd {
		return []int{g.A}
	}
	return []int{g.A, g.B}
}

func (g Genotype) String() string {
	if g.B == VectorEnd {
		return formatAllele(g.A)
	}
	sep := "/"
	if g.Phased {
		sep = "|"
	}
	return formatAllele(g.A) + sep + formatAllele(g.B)
}

func formatAllele(a int) string {
	if a < 0 {
		return "."
	}
	return strconv.Itoa(a)
}

// ParseGenotype parses a GT value such as "0/1", "1|0", "./." or "1".
func ParseGenotype(s string) (Genotype, error) {
	if s == "" {
		return MissingGenotype(), nil
	}

	sepIdx := strings.IndexAny(s, "/|")
	if sepIdx < 0 {
		a, err := parseAllele(s)
		if err != nil {
			return Genotype{}, err
		}
		return Genotype{A: a, B: VectorEnd}, nil
	}

	rest := s[sepIdx+1:]
	if strings.ContainsAny(rest, "/|") {
		return Genotype{}, fmt.Errorf("genotype %q: ploidy above 2 is not supported", s)
	}
	a, err := parseAllele(s[:sepIdx])
	if err != nil {
		return Genotype{}, err
	}
	b, err := parseAllele(rest)
	if err != nil {
		return Genotype{}, err
	}
	return Genotype{A: a, B: b, Phased: s[sepIdx] == '|'}, nil
}

func parseAllele(s string) (int, error) {
	if s == "." {
		return MissingAllele, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid allele index %q", s)
	}
	return v, nil
}
