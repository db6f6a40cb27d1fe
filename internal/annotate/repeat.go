package annotate

// SequenceSource supplies reference bases for a 1-based inclusive range,
// clipped to what it holds.
type SequenceSource interface {
	Sequence(chrom string, start, end int64) string
}

const (
	// maxTract bounds how far a repeat tract is followed in each direction.
	maxTract   = 1000
	flankWidth = 10
)

// RepeatUnit returns the shortest unit u such that s is u repeated a whole
// number of times.
func RepeatUnit(s string) string {
	n := len(s)
	for k := 1; k < n; k++ {
		if n%k != 0 {
			continue
		}
		ok := true
		for i := k; i < n; i++ {
			if s[i] != s[i-k] {
				ok = false
				break
			}
		}
		if ok {
			return s[:k]
		}
	}
	return s
}

// canonicalMotif returns the lexicographically smallest rotation of ru.
func canonicalMotif(ru string) string {
	best := ru
	for i := 1; i < len(ru); i++ {
		if rot := ru[i:] + ru[:i]; rot < best {
			best = rot
		}
	}
	return best
}

// findRepeat locates the tract of ru around pos, where pos is the first
// reference base after an insertion point or the first deleted base.
func findRepeat(src SequenceSource, chrom string, pos int64, ru string) *VNTR {
	k := len(ru)
	left := src.Sequence(chrom, pos-maxTract, pos-1)
	right := src.Sequence(chrom, pos, pos+maxTract)

	nr := 0
	for nr < len(right) && right[nr] == ru[nr%k] {
		nr++
	}
	nl := 0
	for nl < len(left) && left[len(left)-1-nl] == ru[k-1-nl%k] {
		nl++
	}

	start := pos - int64(nl)
	v := &VNTR{
		Chrom: chrom,
		Pos:   start,
		Ref:   left[len(left)-nl:] + right[:nr],
		Motif: canonicalMotif(ru),
		Len:   k,
		RU:    ru,
	}
	v.ExactRU = len(v.Ref) / k
	v.TotalRU = float64(len(v.Ref)) / float64(k)

	lf := left[:len(left)-nl]
	if len(lf) > flankWidth {
		lf = lf[len(lf)-flankWidth:]
	}
	v.LFlank = lf
	rf := right[nr:]
	if len(rf) > flankWidth {
		rf = rf[:flankWidth]
	}
	v.RFlank = rf
	return v
}

// alleleContext serves the record's own REF allele as reference sequence
// when no genome is available.
type alleleContext struct {
	chrom string
	pos   int64
	ref   string
}

func (c alleleContext) Sequence(chrom string, start, end int64) string {
	if chrom != c.chrom {
		return ""
	}
	last := c.pos + int64(len(c.ref)) - 1
	if start < c.pos {
		start = c.pos
	}
	if end > last {
		end = last
	}
	if start > end {
		return ""
	}
	return c.ref[start-c.pos : end-c.pos+1]
}
