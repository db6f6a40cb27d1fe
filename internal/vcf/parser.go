// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/multierr"
)

// Parser reads variants from a VCF file.
type Parser struct {
	name        string
	reader      *bufio.Reader
	closers     []io.Closer
	lineNumber  int
	header      []string
	contigLines []string // raw ##contig lines
	contigs     []string // contig IDs in header order
	sampleNames []string // sample names from #CHROM header line
}

// NewParser creates a new VCF parser for the given local file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files; "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}
	return newParser(path, file)
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
// Gzip input is detected from its magic bytes.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	return newParser("-", io.NopCloser(r))
}

func newParser(name string, rc io.ReadCloser) (*Parser, error) {
	p := &Parser{name: name, closers: []io.Closer{rc}}

	br := bufio.NewReader(rc)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		p.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.closers = append(p.closers, gz)
		p.reader = bufio.NewReader(gz)
	} else {
		p.reader = br
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// parseHeader reads and stores VCF header lines.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			p.header = append(p.header, line)
			if strings.HasPrefix(line, "##contig=") {
				id, ok := contigID(line)
				if !ok {
					return &ParseError{
						Line:    p.lineNumber,
						Message: "##contig line without ID",
					}
				}
				p.contigLines = append(p.contigLines, line)
				p.contigs = append(p.contigs, id)
			}
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.header = append(p.header, line)
			// Extract sample names from columns after FORMAT (index 9+)
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				p.sampleNames = fields[9:]
			}
			return nil
		}

		// Non-header line encountered without #CHROM
		return &ParseError{
			Line:    p.lineNumber,
			Message: "expected #CHROM header line",
		}
	}

	return &ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// contigID extracts the ID from a line like ##contig=<ID=chr1,length=248956422>.
func contigID(line string) (string, bool) {
	body := strings.TrimPrefix(line, "##contig=")
	body = strings.TrimPrefix(body, "<")
	body = strings.TrimSuffix(body, ">")
	for _, kv := range strings.Split(body, ",") {
		if id, ok := strings.CutPrefix(kv, "ID="); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// Next reads the next variant from the VCF file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue // Skip empty lines
		}

		return p.parseLine(line)
	}
}

// parseLine parses a single VCF data line into a Variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := parsePos(fields[1])
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	v := &Variant{
		Chrom:   fields[0],
		Pos:     pos,
		ID:      fields[2],
		Ref:     fields[3],
		Qual:    fields[5],
		Filter:  fields[6],
		RawInfo: fields[7],
	}
	if fields[4] != "." && fields[4] != "" {
		v.Alt = strings.Split(fields[4], ",")
	}

	nSamples := len(p.sampleNames)
	if len(fields) > 8 {
		v.Format = fields[8]
		v.SampleColumns = fields[9:]
	}
	if len(v.SampleColumns) != nSamples {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected %d sample columns, found %d", nSamples, len(v.SampleColumns)),
		}
	}

	if nSamples > 0 {
		v.Genotypes, err = parseGenotypes(v.Format, v.SampleColumns)
		if err != nil {
			return nil, &ParseError{Line: p.lineNumber, Message: err.Error()}
		}
	}

	return v, nil
}

func parsePos(s string) (int64, error) {
	pos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if pos < 1 {
		return 0, fmt.Errorf("position %d is not 1-based", pos)
	}
	return pos, nil
}

// parseGenotypes extracts the GT sub-field of every sample column. Samples
// lack a call when FORMAT has no GT key or the column is truncated.
func parseGenotypes(format string, columns []string) ([]Genotype, error) {
	gts := make([]Genotype, len(columns))

	gtIdx := -1
	for i, key := range strings.Split(format, ":") {
		if key == "GT" {
			gtIdx = i
			break
		}
	}

	for i, col := range columns {
		if gtIdx < 0 {
			gts[i] = MissingGenotype()
			continue
		}
		subfields := strings.Split(col, ":")
		if gtIdx >= len(subfields) {
			gts[i] = MissingGenotype()
			continue
		}
		gt, err := ParseGenotype(subfields[gtIdx])
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i+1, err)
		}
		gts[i] = gt
	}
	return gts, nil
}

// Name returns the path the parser was opened from ("-" for stdin).
func (p *Parser) Name() string {
	return p.name
}

// Header returns the VCF header lines.
func (p *Parser) Header() []string {
	return p.header
}

// ContigLines returns the raw ##contig header lines.
func (p *Parser) ContigLines() []string {
	return p.contigLines
}

// Contigs returns the contig IDs declared in the header, in order.
func (p *Parser) Contigs() []string {
	return p.contigs
}

// SampleNames returns sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.sampleNames
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	var err error
	for i := len(p.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, p.closers[i].Close())
	}
	p.closers = nil
	return err
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
