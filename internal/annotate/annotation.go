// Package annotate adds variant type and repeat annotations to single-file
// VCF records.
package annotate

import (
	"strconv"

	"github.com/holtgrewe/vt/internal/vcf"
)

// INFO keys written by the annotator.
const (
	InfoVT = "VT"
	InfoRU = "RU"
	InfoRL = "RL"
)

// InfoHeaderLines declares the INFO fields the annotator writes.
var InfoHeaderLines = []string{
	`##INFO=<ID=VT,Number=1,Type=String,Description="Variant Type - SNP, MNP, INDEL, CLUMPED">`,
	`##INFO=<ID=RU,Number=1,Type=String,Description="Repeat unit in a STR or Homopolymer">`,
	`##INFO=<ID=RL,Number=1,Type=Integer,Description="Repeat Length">`,
}

// Annotation is the result of annotating one record.
type Annotation struct {
	Type VariantType

	// Repeat is the tract around the record's first indel allele, nil for
	// records without one.
	Repeat *VNTR
}

// RU returns the repeat unit, or "" when there is no indel.
func (a *Annotation) RU() string {
	if a.Repeat == nil {
		return ""
	}
	return a.Repeat.RU
}

// RL returns the repeat tract length in bases, or 0 when there is no indel.
func (a *Annotation) RL() int {
	if a.Repeat == nil {
		return 0
	}
	return a.Repeat.RL()
}

// Info returns the INFO key/value pairs to set, in output order.
func (a *Annotation) Info() [][2]string {
	var kv [][2]string
	if s := a.Type.String(); s != "" {
		kv = append(kv, [2]string{InfoVT, s})
	}
	if a.Repeat != nil {
		kv = append(kv,
			[2]string{InfoRU, a.Repeat.RU},
			[2]string{InfoRL, strconv.Itoa(a.Repeat.RL())})
	}
	return kv
}

// AnnotationWriter defines the interface for writing annotated records.
type AnnotationWriter interface {
	WriteHeader() error
	Write(v *vcf.Variant, ann *Annotation) error
	Flush() error
}

// Stats counts annotated records.
type Stats struct {
	Annotated int
	ByType    map[string]int
}

func (s *Stats) observe(ann *Annotation) {
	s.Annotated++
	if s.ByType == nil {
		s.ByType = make(map[string]int)
	}
	for _, tn := range typeNames {
		if ann.Type.Has(tn.t) {
			s.ByType[tn.name]++
		}
	}
}
