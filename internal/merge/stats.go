package merge

import (
	"fmt"
	"io"
)

// Stats accumulates counts over one merge run. The caller owns it and
// passes it to Driver.Run.
type Stats struct {
	Files        int
	Samples      int
	Sites        int   // merged records written
	RecordsRead  []int // per stream, including records outside the intervals
	SitesInAll   int   // sites where every stream contributed
	MultiAllelic int   // sites with more than one alternate allele
	Singletons   int   // sites contributed by a single stream
}

// NewStats returns Stats sized for the given number of streams and samples.
func NewStats(files, samples int) *Stats {
	return &Stats{
		Files:       files,
		Samples:     samples,
		RecordsRead: make([]int, files),
	}
}

func (s *Stats) observe(rec *Record) {
	s.Sites++
	switch len(rec.Streams) {
	case s.Files:
		s.SitesInAll++
	case 1:
		s.Singletons++
	}
	if len(rec.Alleles) > 2 {
		s.MultiAllelic++
	}
}

// WriteSummary prints the stats block.
func (s *Stats) WriteSummary(w io.Writer, inputs []string) error {
	if _, err := fmt.Fprintf(w, "\nstats: no. of files         %d\n", s.Files); err != nil {
		return err
	}
	fmt.Fprintf(w, "       no. of samples       %d\n", s.Samples)
	fmt.Fprintf(w, "       no. of sites         %d\n", s.Sites)
	fmt.Fprintf(w, "       sites in all files   %d\n", s.SitesInAll)
	fmt.Fprintf(w, "       singleton sites      %d\n", s.Singletons)
	fmt.Fprintf(w, "       multi-allelic sites  %d\n", s.MultiAllelic)
	for i, n := range s.RecordsRead {
		name := fmt.Sprintf("file %d", i+1)
		if i < len(inputs) {
			name = inputs[i]
		}
		fmt.Fprintf(w, "       records read         %d  %s\n", n, name)
	}
	_, err := fmt.Fprintln(w)
	return err
}
