package merge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"

	"github.com/holtgrewe/vt/internal/genome"
	"github.com/holtgrewe/vt/internal/vcf"
)

// OpenFunc opens one input path as a stream.
type OpenFunc func(ctx context.Context, path string) (vcf.Stream, error)

// OpenerFunc adapts a vcf.Opener to an OpenFunc.
func OpenerFunc(o *vcf.Opener) OpenFunc {
	return func(ctx context.Context, path string) (vcf.Stream, error) {
		p, err := o.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// ReadInputList reads one input path per line. Blank lines and lines
// starting with '#' are ignored.
func ReadInputList(r io.Reader) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input list: %w", err)
	}
	return paths, nil
}

// OpenStreams opens every path. On failure the streams already opened are
// closed and the returned error combines one StreamOpenError per failing
// path.
func OpenStreams(ctx context.Context, open OpenFunc, paths []string) ([]vcf.Stream, error) {
	streams := make([]vcf.Stream, 0, len(paths))
	var errs error
	for _, p := range paths {
		s, err := open(ctx, p)
		if err != nil {
			errs = multierr.Append(errs, &StreamOpenError{Path: p, Err: err})
			continue
		}
		streams = append(streams, s)
	}
	if errs != nil {
		closeStreams(streams)
		return nil, errs
	}
	return streams, nil
}

func closeStreams(streams []vcf.Stream) {
	for _, s := range streams {
		s.Close()
	}
}

// ContigOrderFromStreams builds a dictionary from the union of the streams'
// ##contig IDs, taken in stream order.
func ContigOrderFromStreams(streams []vcf.Stream) *genome.ContigOrder {
	order := genome.NewContigOrder()
	for _, s := range streams {
		for _, c := range s.Contigs() {
			order.Add(c)
		}
	}
	return order
}

// NewHeader assembles the merged header. Contig lines follow the dictionary;
// each uses the raw line of the first stream declaring it, or a synthesized
// line with the length from lengths when no stream does.
func NewHeader(streams []vcf.Stream, order *genome.ContigOrder, lengths map[string]int64) *Header {
	raw := make(map[string]string)
	for _, s := range streams {
		lines := s.ContigLines()
		for i, c := range s.Contigs() {
			if _, ok := raw[c]; !ok && i < len(lines) {
				raw[c] = lines[i]
			}
		}
	}

	h := &Header{Contigs: order.Names()}
	for _, c := range h.Contigs {
		line, ok := raw[c]
		if !ok {
			if n, ok := lengths[c]; ok {
				line = fmt.Sprintf("##contig=<ID=%s,length=%d>", c, n)
			} else {
				line = fmt.Sprintf("##contig=<ID=%s>", c)
			}
		}
		h.ContigLines = append(h.ContigLines, line)
	}
	for _, s := range streams {
		h.Samples = append(h.Samples, s.SampleNames()...)
		h.Inputs = append(h.Inputs, s.Name())
		h.InputSamples = append(h.InputSamples, len(s.SampleNames()))
	}
	return h
}

// Config describes one merge.
type Config struct {
	// Inputs are the paths to merge, in stream order.
	Inputs []string

	// Contigs is the canonical dictionary. When empty, the union of the
	// inputs' ##contig lines is used.
	Contigs []string

	// ContigLengths optionally supplies lengths for synthesized header lines.
	ContigLengths map[string]int64

	// Intervals restricts every stream. Empty means no restriction.
	Intervals []genome.Interval
}

// Plan is a merge ready to run.
type Plan struct {
	Order  *genome.ContigOrder
	Header *Header
	Reader *SyncedReader
	Merger *Merger
	Stats  *Stats
}

// Prepare opens every input, resolves the contig dictionary and intervals,
// and primes one cursor per stream. On error nothing is left open.
func Prepare(ctx context.Context, cfg Config, open OpenFunc) (*Plan, error) {
	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("no input files")
	}

	streams, err := OpenStreams(ctx, open, cfg.Inputs)
	if err != nil {
		return nil, err
	}

	var order *genome.ContigOrder
	if len(cfg.Contigs) > 0 {
		order = genome.NewContigOrder(cfg.Contigs...)
	} else {
		order = ContigOrderFromStreams(streams)
	}

	var intervals *genome.IntervalSet
	if len(cfg.Intervals) > 0 {
		intervals, err = genome.NewIntervalSet(order, cfg.Intervals)
		if err != nil {
			closeStreams(streams)
			return nil, fmt.Errorf("resolve intervals: %w", err)
		}
	}

	header := NewHeader(streams, order, cfg.ContigLengths)

	names := make([]string, len(streams))
	counts := make([]int, len(streams))
	cursors := make([]*Cursor, 0, len(streams))
	for i, s := range streams {
		names[i] = s.Name()
		counts[i] = len(s.SampleNames())

		c, err := NewCursor(i, s.Name(), s, order, intervals)
		if err != nil {
			// NewCursor closed s; close the rest.
			for _, done := range cursors {
				done.Close()
			}
			closeStreams(streams[i+1:])
			return nil, err
		}
		cursors = append(cursors, c)
	}

	return &Plan{
		Order:  order,
		Header: header,
		Reader: NewSyncedReader(order, cursors),
		Merger: NewMerger(names, counts),
		Stats:  NewStats(len(streams), len(header.Samples)),
	}, nil
}
