package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vcfHeader = "##fileformat=VCFv4.1\n" +
	"##contig=<ID=1,length=1000>\n" +
	"##contig=<ID=2,length=1000>\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// emptyConfig keeps tests away from the user's ~/.vt.yaml.
func emptyConfig(t *testing.T, dir string) string {
	return writeFile(t, dir, "vt.yaml", "log:\n  level: error\n")
}

func TestRun_Merge(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcf", vcfHeader+
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tA1\n"+
		"1\t100\trs1\tA\tT\t.\t.\t.\tGT\t0/1\n"+
		"2\t5\t.\tG\tC\t.\t.\t.\tGT\t1/1\n")
	b := writeFile(t, dir, "b.vcf", vcfHeader+
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tB1\n"+
		"1\t100\t.\tA\tG\t.\t.\t.\tGT\t0/1\n")
	list := writeFile(t, dir, "inputs.txt", "# inputs\n"+a+"\n"+b+"\n")
	out := filepath.Join(dir, "merged.vcf")

	code := run([]string{"merge", "--config", emptyConfig(t, dir), "-L", list, "-o", out})
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	got := string(data)
	assert.Contains(t, got, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tA1\tB1\n")
	assert.Contains(t, got, "1\t100\trs1\tA\tT,G\t.\t.\t.\tGT\t0/1\t0/2\n")
	assert.Contains(t, got, "2\t5\t.\tG\tC\t.\t.\t.\tGT\t1/1\t./.\n")
}

func TestRun_MergeWithIntervalsAndDuckDB(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcf", vcfHeader+
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tA1\n"+
		"1\t100\t.\tA\tT\t.\t.\t.\tGT\t0/1\n"+
		"2\t5\t.\tG\tC\t.\t.\t.\tGT\t1/1\n")
	list := writeFile(t, dir, "inputs.txt", a+"\n")
	out := filepath.Join(dir, "merged.vcf.gz")
	db := filepath.Join(dir, "merged.duckdb")

	code := run([]string{"merge", "--config", emptyConfig(t, dir), "-L", list, "-i", "2", "-o", out, "--duckdb", db})
	require.Equal(t, ExitSuccess, code)

	_, err := os.Stat(out)
	assert.NoError(t, err)
	_, err = os.Stat(db)
	assert.NoError(t, err)
}

func TestRun_MergeErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := emptyConfig(t, dir)

	assert.Equal(t, ExitUsage, run([]string{"merge", "--config", cfg}), "missing input list")
	assert.Equal(t, ExitUsage, run([]string{"merge", "--config", cfg, "--no-such-flag"}))

	list := writeFile(t, dir, "inputs.txt", filepath.Join(dir, "missing.vcf")+"\n")
	assert.Equal(t, ExitError, run([]string{"merge", "--config", cfg, "-L", list}))

	assert.Equal(t, ExitError, run([]string{"merge", "--config", cfg, "-L", filepath.Join(dir, "nope.txt")}))
}

func TestRun_Annotate(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.vcf", vcfHeader+
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"+
		"1\t10\t.\tC\tA\t.\t.\t.\n"+
		"1\t20\t.\tAC\tGT\t.\t.\t.\n"+
		"2\t30\t.\tA\tT\t.\t.\t.\n")
	out := filepath.Join(dir, "out.vcf")

	code := run([]string{"annotate", "--config", emptyConfig(t, dir), "-i", "1", "-o", out, in})
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	got := string(data)
	assert.Contains(t, got, "##INFO=<ID=VT,")
	assert.Contains(t, got, "1\t10\t.\tC\tA\t.\t.\tVT=SNP\n")
	assert.Contains(t, got, "1\t20\t.\tAC\tGT\t.\t.\tVT=MNP\n")
	assert.False(t, strings.Contains(got, "2\t30\t"), "record outside the intervals is skipped")
}

func TestRun_AnnotateUsage(t *testing.T) {
	dir := t.TempDir()
	cfg := emptyConfig(t, dir)
	in := writeFile(t, dir, "in.vcf", vcfHeader+"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")

	assert.Equal(t, ExitUsage, run([]string{"annotate", "--config", cfg}))
	assert.Equal(t, ExitUsage, run([]string{"annotate", "--config", cfg, "-f", "xml", in}))
}

func TestRun_Config(t *testing.T) {
	dir := t.TempDir()
	cfg := emptyConfig(t, dir)

	require.Equal(t, ExitSuccess, run([]string{"config", "set", "--config", cfg, "annotate.workers", "4"}))

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workers: 4")

	assert.Equal(t, ExitError, run([]string{"config", "get", "--config", cfg, "no.such.key"}))
}
