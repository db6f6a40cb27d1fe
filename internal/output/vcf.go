package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/holtgrewe/vt/internal/annotate"
	"github.com/holtgrewe/vt/internal/vcf"
)

// annotationKeys are the INFO keys the annotator owns. Existing values are
// replaced.
var annotationKeys = []string{annotate.InfoVT, annotate.InfoRU, annotate.InfoRL}

// VCFWriter writes annotated records in VCF format with VT, RU and RL
// INFO fields.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string // original VCF header lines (## and #CHROM)
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the original VCF header lines with the annotation INFO
// lines inserted before #CHROM. Earlier declarations of the same keys are
// dropped.
func (vw *VCFWriter) WriteHeader() error {
	for _, line := range vw.headerLines {
		if declaresInfo(line, annotationKeys) {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			for _, info := range annotate.InfoHeaderLines {
				if _, err := vw.w.WriteString(info + "\n"); err != nil {
					return err
				}
			}
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func declaresInfo(line string, keys []string) bool {
	for _, k := range keys {
		if strings.HasPrefix(line, "##INFO=<ID="+k+",") {
			return true
		}
	}
	return false
}

// Write writes one record with its annotation merged into INFO.
func (vw *VCFWriter) Write(v *vcf.Variant, ann *annotate.Annotation) error {
	info := stripInfo(v.RawInfo, annotationKeys)
	for _, kv := range ann.Info() {
		if info == "." {
			info = kv[0] + "=" + kv[1]
		} else {
			info += ";" + kv[0] + "=" + kv[1]
		}
	}

	var lb strings.Builder
	lb.Grow(256)

	lb.WriteString(v.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(v.Pos, 10))
	lb.WriteByte('\t')
	lb.WriteString(orDot(v.ID))
	lb.WriteByte('\t')
	lb.WriteString(v.Ref)
	lb.WriteByte('\t')
	lb.WriteString(joinAlt(v.Alt))
	lb.WriteByte('\t')
	lb.WriteString(orDot(v.Qual))
	lb.WriteByte('\t')
	lb.WriteString(orDot(v.Filter))
	lb.WriteByte('\t')
	lb.WriteString(info)

	// Append FORMAT + sample columns if present
	if v.Format != "" {
		lb.WriteByte('\t')
		lb.WriteString(v.Format)
		for _, col := range v.SampleColumns {
			lb.WriteByte('\t')
			lb.WriteString(col)
		}
	}

	lb.WriteByte('\n')
	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush flushes the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// stripInfo removes the given keys from a raw INFO string.
func stripInfo(rawInfo string, keys []string) string {
	if rawInfo == "" || rawInfo == "." {
		return "."
	}

	var b strings.Builder
	for _, field := range strings.Split(rawInfo, ";") {
		key, _, _ := strings.Cut(field, "=")
		drop := field == ""
		for _, k := range keys {
			if key == k {
				drop = true
				break
			}
		}
		if drop {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(field)
	}

	if b.Len() == 0 {
		return "."
	}
	return b.String()
}

func joinAlt(alt []string) string {
	if len(alt) == 0 {
		return "."
	}
	return strings.Join(alt, ",")
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}
