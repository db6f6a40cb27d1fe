package merge

import "go.uber.org/multierr"

// Header describes the merged output: the contig dictionary and every
// sample column in stream order.
type Header struct {
	// Contigs is the contig dictionary in order.
	Contigs []string

	// ContigLines holds the raw ##contig lines to emit, first input first,
	// followed by synthesized lines for contigs only known from later inputs.
	ContigLines []string

	// Samples is the union of input sample names in stream order.
	Samples []string

	// Inputs names each input stream, in stream order.
	Inputs []string

	// InputSamples is the sample count of each input stream.
	InputSamples []int
}

// Sink receives merged records in non-decreasing locus order.
type Sink interface {
	WriteHeader(h *Header) error
	Write(rec *Record) error
	Close() error
}

// MultiSink fans records out to several sinks.
type MultiSink []Sink

// WriteHeader writes h to every sink, stopping at the first error.
func (m MultiSink) WriteHeader(h *Header) error {
	for _, s := range m {
		if err := s.WriteHeader(h); err != nil {
			return err
		}
	}
	return nil
}

// Write writes rec to every sink, stopping at the first error.
func (m MultiSink) Write(rec *Record) error {
	for _, s := range m {
		if err := s.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the combined error.
func (m MultiSink) Close() error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Close())
	}
	return err
}
