package merge

import (
	"errors"
	"fmt"

	"github.com/holtgrewe/vt/internal/genome"
)

// ErrMalformedInput matches every error caused by an input stream violating
// the merge preconditions (sorted order, known contigs, parseable records).
var ErrMalformedInput = errors.New("malformed input")

// UnsortedStreamError is returned when a stream yields a record whose locus
// is before the previously yielded one.
type UnsortedStreamError struct {
	Stream   string
	Previous genome.Locus
	Current  genome.Locus
}

func (e *UnsortedStreamError) Error() string {
	return fmt.Sprintf("%s: record at %s follows %s; input must be sorted by contig and position",
		e.Stream, e.Current, e.Previous)
}

// Is makes UnsortedStreamError match ErrMalformedInput.
func (e *UnsortedStreamError) Is(target error) bool {
	return target == ErrMalformedInput
}

// MalformedInputError wraps a record-level problem in one stream, such as a
// parse failure or a contig missing from the dictionary.
type MalformedInputError struct {
	Stream string
	Locus  genome.Locus // zero when the record could not be parsed
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Locus.Chrom != "" {
		return fmt.Sprintf("%s: record at %s: %v", e.Stream, e.Locus, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stream, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Is makes MalformedInputError match ErrMalformedInput.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// StreamOpenError is returned when an input path cannot be opened.
type StreamOpenError struct {
	Path string
	Err  error
}

func (e *StreamOpenError) Error() string {
	return fmt.Sprintf("cannot open %s: %v", e.Path, e.Err)
}

func (e *StreamOpenError) Unwrap() error {
	return e.Err
}

// InconsistentGenotypeError is returned when a record's genotypes do not fit
// its own allele list or sample count.
type InconsistentGenotypeError struct {
	Stream string
	Locus  genome.Locus
	Reason string
}

func (e *InconsistentGenotypeError) Error() string {
	return fmt.Sprintf("%s: inconsistent genotype at %s: %s", e.Stream, e.Locus, e.Reason)
}
