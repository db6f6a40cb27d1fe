package annotate

import "strings"

// VariantType is a set of variant classes observed across a record's
// alternate alleles.
type VariantType uint8

const (
	TypeRef     VariantType = 0
	TypeSNP     VariantType = 1 << 0
	TypeMNP     VariantType = 1 << 1
	TypeIndel   VariantType = 1 << 2
	TypeClumped VariantType = 1 << 3
)

var typeNames = []struct {
	t    VariantType
	name string
}{
	{TypeSNP, "SNP"},
	{TypeMNP, "MNP"},
	{TypeIndel, "INDEL"},
	{TypeClumped, "CLUMPED"},
}

// Has reports whether every class in other is present.
func (t VariantType) Has(other VariantType) bool {
	return t&other == other
}

// String returns the classes as a comma-separated list, e.g. "SNP,INDEL".
// A reference-only record returns "".
func (t VariantType) String() string {
	var names []string
	for _, tn := range typeNames {
		if t.Has(tn.t) {
			names = append(names, tn.name)
		}
	}
	return strings.Join(names, ",")
}

// trimmed is a REF/ALT pair with the shared suffix and then the shared
// prefix removed. Offset is where Ref starts within the original REF.
type trimmed struct {
	Ref, Alt string
	Offset   int
}

func trimAlleles(ref, alt string) trimmed {
	ref = strings.ToUpper(ref)
	alt = strings.ToUpper(alt)

	for len(ref) > 0 && len(alt) > 0 && ref[len(ref)-1] == alt[len(alt)-1] {
		ref = ref[:len(ref)-1]
		alt = alt[:len(alt)-1]
	}
	offset := 0
	for offset < len(ref) && offset < len(alt) && ref[offset] == alt[offset] {
		offset++
	}
	return trimmed{Ref: ref[offset:], Alt: alt[offset:], Offset: offset}
}

// isSymbolic reports whether alt is not a plain base sequence, such as
// "<DEL>", "*" or a breakend.
func isSymbolic(alt string) bool {
	return alt == "" || alt == "*" || alt == "." || strings.ContainsAny(alt, "<>[]")
}

// ClassifyAllele classifies one alternate allele against ref.
func ClassifyAllele(ref, alt string) VariantType {
	if isSymbolic(alt) {
		return TypeRef
	}

	t := trimAlleles(ref, alt)
	switch {
	case t.Ref == "" && t.Alt == "":
		return TypeRef
	case t.Ref == "" || t.Alt == "":
		return TypeIndel
	case len(t.Ref) != len(t.Alt):
		return TypeClumped
	case len(t.Ref) == 1:
		return TypeSNP
	}

	for i := 0; i < len(t.Ref); i++ {
		if t.Ref[i] == t.Alt[i] {
			return TypeClumped
		}
	}
	return TypeMNP
}

// Classify combines the classes of every alternate allele.
func Classify(ref string, alts []string) VariantType {
	var t VariantType
	for _, alt := range alts {
		t |= ClassifyAllele(ref, alt)
	}
	return t
}
