package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/holtgrewe/vt/internal/merge"
)

// MergedFileFormat is the VCF version declared in merged output.
const MergedFileFormat = "##fileformat=VCFv4.1"

const gtFormatLine = `##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`

// MergedVCFWriter writes merged records as a multi-sample VCF. It
// implements merge.Sink.
type MergedVCFWriter struct {
	w       *bufio.Writer
	dst     io.Writer
	samples int
	closed  bool
}

// NewMergedVCFWriter creates a writer. If w is an io.Closer it is closed by
// Close.
func NewMergedVCFWriter(w io.Writer) *MergedVCFWriter {
	return &MergedVCFWriter{
		w:   bufio.NewWriter(w),
		dst: w,
	}
}

// WriteHeader writes the meta lines and the #CHROM line.
func (mw *MergedVCFWriter) WriteHeader(h *merge.Header) error {
	mw.samples = len(h.Samples)

	lines := []string{MergedFileFormat}
	lines = append(lines, h.ContigLines...)
	lines = append(lines, gtFormatLine)

	cols := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO"
	if len(h.Samples) > 0 {
		cols += "\tFORMAT\t" + strings.Join(h.Samples, "\t")
	}
	lines = append(lines, cols)

	for _, line := range lines {
		if _, err := mw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes one merged record.
func (mw *MergedVCFWriter) Write(rec *merge.Record) error {
	var lb strings.Builder
	lb.Grow(64 + 4*len(rec.Genotypes))

	lb.WriteString(rec.Locus.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(rec.Locus.Pos, 10))
	lb.WriteByte('\t')
	lb.WriteString(orDot(rec.ID))
	lb.WriteByte('\t')
	lb.WriteString(rec.Ref())
	lb.WriteByte('\t')
	lb.WriteString(joinAlt(rec.Alt()))
	lb.WriteString("\t.\t.\t.")

	if mw.samples > 0 {
		lb.WriteString("\tGT")
		for _, gt := range rec.Genotypes {
			lb.WriteByte('\t')
			lb.WriteString(gt.String())
		}
	}
	lb.WriteByte('\n')

	_, err := mw.w.WriteString(lb.String())
	return err
}

// Close flushes buffered output and closes the destination if it is a
// Closer.
func (mw *MergedVCFWriter) Close() error {
	if mw.closed {
		return nil
	}
	mw.closed = true

	err := mw.w.Flush()
	if c, ok := mw.dst.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
