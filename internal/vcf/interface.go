// Package vcf provides VCF file parsing functionality.
package vcf

// VariantParser is the interface for parsers that read variants.
type VariantParser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}

// Stream is a VariantParser that also describes the file it reads.
// It is what the merge reader consumes for each input.
type Stream interface {
	VariantParser

	// Name identifies the input in error messages.
	Name() string

	// SampleNames returns the sample columns in header order.
	SampleNames() []string

	// Contigs returns the ##contig IDs in header order.
	Contigs() []string

	// ContigLines returns the raw ##contig lines matching Contigs.
	ContigLines() []string
}
