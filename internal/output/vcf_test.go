package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/holtgrewe/vt/internal/annotate"
	"github.com/holtgrewe/vt/internal/vcf"
)

func TestVCFWriter_Header(t *testing.T) {
	headers := []string{
		"##fileformat=VCFv4.2",
		"##reference=GRCh38",
		"##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Total Depth\">",
		"##INFO=<ID=VT,Number=1,Type=String,Description=\"old\">",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO",
	}

	var buf bytes.Buffer
	w := NewVCFWriter(&buf, headers)
	if err := w.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	// Original ## lines preserved
	if lines[0] != "##fileformat=VCFv4.2" {
		t.Errorf("first line = %q, want ##fileformat=VCFv4.2", lines[0])
	}
	if lines[1] != "##reference=GRCh38" {
		t.Errorf("second line = %q, want ##reference=GRCh38", lines[1])
	}

	vtCount := 0
	vtIdx, chromIdx := -1, -1
	for i, line := range lines {
		if strings.HasPrefix(line, "##INFO=<ID=VT,") {
			vtCount++
			vtIdx = i
		}
		if strings.HasPrefix(line, "#CHROM") {
			chromIdx = i
		}
	}
	if vtCount != 1 {
		t.Fatalf("found %d VT INFO lines, want 1", vtCount)
	}
	if strings.Contains(lines[vtIdx], "old") {
		t.Errorf("stale VT declaration kept: %s", lines[vtIdx])
	}
	if chromIdx != len(lines)-1 || vtIdx >= chromIdx {
		t.Errorf("VT INFO line (idx %d) should appear before #CHROM line (idx %d)", vtIdx, chromIdx)
	}
	if !strings.Contains(buf.String(), "##INFO=<ID=RL,") {
		t.Error("RL INFO line not found in header")
	}
}

func TestVCFWriter_Indel(t *testing.T) {
	var buf bytes.Buffer
	w := NewVCFWriter(&buf, nil)

	v := &vcf.Variant{
		Chrom:         "chr1",
		Pos:           4,
		ID:            "rs1",
		Ref:           "TCA",
		Alt:           []string{"T"},
		Qual:          "50",
		Filter:        "PASS",
		RawInfo:       "DP=10;RU=XX;RL=1",
		Format:        "GT",
		SampleColumns: []string{"0/1", "1/1"},
	}
	ann := &annotate.Annotation{
		Type:   annotate.TypeIndel,
		Repeat: &annotate.VNTR{RU: "CA", Ref: "CACACACA"},
	}

	if err := w.Write(v, ann); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "chr1\t4\trs1\tTCA\tT\t50\tPASS\tDP=10;VT=INDEL;RU=CA;RL=8\tGT\t0/1\t1/1\n"
	if buf.String() != want {
		t.Errorf("got  %q\nwant %q", buf.String(), want)
	}
}

func TestVCFWriter_SNPWithoutInfo(t *testing.T) {
	var buf bytes.Buffer
	w := NewVCFWriter(&buf, nil)

	v := &vcf.Variant{Chrom: "12", Pos: 25245351, ID: ".", Ref: "C", Alt: []string{"A"}, RawInfo: "."}
	if err := w.Write(v, &annotate.Annotation{Type: annotate.TypeSNP}); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	want := "12\t25245351\t.\tC\tA\t.\t.\tVT=SNP\n"
	if buf.String() != want {
		t.Errorf("got  %q\nwant %q", buf.String(), want)
	}
}

func TestVCFWriter_ReferenceOnly(t *testing.T) {
	var buf bytes.Buffer
	w := NewVCFWriter(&buf, nil)

	v := &vcf.Variant{Chrom: "1", Pos: 5, Ref: "G", RawInfo: "VT=SNP"}
	if err := w.Write(v, &annotate.Annotation{}); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	want := "1\t5\t.\tG\t.\t.\t.\t.\n"
	if buf.String() != want {
		t.Errorf("got  %q\nwant %q", buf.String(), want)
	}
}

func TestStripInfo(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "."},
		{".", "."},
		{"DP=5", "DP=5"},
		{"VT=SNP", "."},
		{"DP=5;VT=SNP;DB", "DP=5;DB"},
		{"RU=A;RL=3;VTX=1", "VTX=1"},
	}
	for _, tt := range tests {
		if got := stripInfo(tt.in, annotationKeys); got != tt.want {
			t.Errorf("stripInfo(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
