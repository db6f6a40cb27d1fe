// Package reference loads reference genome sequences and their contig
// dictionary.
package reference

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Genome holds reference sequences keyed by contig name.
type Genome struct {
	path      string
	names     []string          // contig names in file order
	sequences map[string]string // contig -> upper-case sequence
}

// NewGenome creates an empty genome for the FASTA file at path.
func NewGenome(path string) *Genome {
	return &Genome{
		path:      path,
		sequences: make(map[string]string),
	}
}

// Load parses the FASTA file. Gzipped files are detected by the .gz suffix.
func (g *Genome) Load() error {
	f, err := os.Open(g.path)
	if err != nil {
		return fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	if strings.HasSuffix(g.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return g.parseFASTA(reader)
}

// parseFASTA reads every record. The contig name is the header up to the
// first whitespace.
func (g *Genome) parseFASTA(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var currentName string
	var currentSeq strings.Builder

	flush := func() {
		if currentName == "" {
			return
		}
		if _, ok := g.sequences[currentName]; !ok {
			g.names = append(g.names, currentName)
		}
		g.sequences[currentName] = strings.ToUpper(currentSeq.String())
	}

	for scanner.Scan() {
		line := scanner.Text()

		if name, ok := strings.CutPrefix(line, ">"); ok {
			flush()
			currentName = contigName(name)
			currentSeq.Reset()
			if currentName == "" {
				return fmt.Errorf("FASTA record without a name")
			}
			continue
		}
		currentSeq.WriteString(strings.TrimSpace(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan FASTA: %w", err)
	}
	return nil
}

func contigName(header string) string {
	if fields := strings.Fields(header); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Names returns the contig names in file order.
func (g *Genome) Names() []string {
	return g.names
}

// Lengths returns the length of every contig.
func (g *Genome) Lengths() map[string]int64 {
	out := make(map[string]int64, len(g.sequences))
	for name, seq := range g.sequences {
		out[name] = int64(len(seq))
	}
	return out
}

// HasContig reports whether the genome has a sequence for chrom.
func (g *Genome) HasContig(chrom string) bool {
	_, ok := g.sequences[chrom]
	return ok
}

// Sequence returns the bases from start to end, 1-based and inclusive,
// clipped to the contig. It returns "" for unknown contigs or empty ranges.
func (g *Genome) Sequence(chrom string, start, end int64) string {
	seq, ok := g.sequences[chrom]
	if !ok {
		return ""
	}
	if start < 1 {
		start = 1
	}
	if end > int64(len(seq)) {
		end = int64(len(seq))
	}
	if start > end {
		return ""
	}
	return seq[start-1 : end]
}

// Base returns the base at pos, or 'N' when it lies outside the contig.
func (g *Genome) Base(chrom string, pos int64) byte {
	s := g.Sequence(chrom, pos, pos)
	if s == "" {
		return 'N'
	}
	return s[0]
}
