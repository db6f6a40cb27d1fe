// Package output provides VCF and tab-delimited writers for merged and
// annotated records.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/holtgrewe/vt/internal/annotate"
	"github.com/holtgrewe/vt/internal/vcf"
)

// TabWriter writes annotations in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#CHROM",
			"POS",
			"ID",
			"REF",
			"ALT",
			"VT",
			"RU",
			"RL",
			"MOTIF",
			"TRACT",
			"FLANKS",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single annotation.
func (tw *TabWriter) Write(v *vcf.Variant, ann *annotate.Annotation) error {
	vt := ann.Type.String()
	if vt == "" {
		vt = "-"
	}

	ru, rl, motif, tract, flanks := "-", "-", "-", "-", "-"
	if r := ann.Repeat; r != nil {
		ru = r.RU
		rl = strconv.Itoa(r.RL())
		motif = r.Motif
		if r.RL() > 0 {
			tract = r.Chrom + ":" + strconv.FormatInt(r.Pos, 10) + "-" + strconv.FormatInt(r.Pos+int64(r.RL())-1, 10)
		}
		flanks = orDash(r.LFlank) + "/" + orDash(r.RFlank)
	}

	values := []string{
		v.Chrom,
		strconv.FormatInt(v.Pos, 10),
		orDot(v.ID),
		v.Ref,
		joinAlt(v.Alt),
		vt,
		ru,
		rl,
		motif,
		tract,
		flanks,
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
