package annotate

import "fmt"

// VNTR is a tandem repeat tract in the reference around an indel.
type VNTR struct {
	Chrom string
	Pos   int64  // 1-based start of the tract
	Ref   string // reference bases of the tract

	Motif string // canonical repeat unit: smallest rotation of RU
	Len   int    // motif length
	RU    string // repeat unit as inserted or deleted

	LFlank string
	RFlank string

	ExactRU int     // whole copies of RU in the tract
	TotalRU float64 // tract length in repeat units
}

// RL returns the repeat tract length in bases.
func (r *VNTR) RL() int {
	return len(r.Ref)
}

func (r *VNTR) String() string {
	return fmt.Sprintf("%s:%d %s[%s]%s motif=%s ru=%.1f", r.Chrom, r.Pos, r.LFlank, r.Ref, r.RFlank, r.Motif, r.TotalRU)
}
