// Package merge implements the synchronized multi-stream positional merge:
// per-file cursors, a reader grouping records by locus, and the merger that
// combines each group into one multi-sample record.
package merge

import (
	"errors"
	"fmt"

	"github.com/holtgrewe/vt/internal/genome"
	"github.com/holtgrewe/vt/internal/vcf"
)

// Cursor buffers the current record of one sorted input stream, optionally
// restricted to an interval set. The cursor owns its source and closes it.
type Cursor struct {
	index  int
	name   string
	src    vcf.VariantParser
	order  *genome.ContigOrder
	filter *genome.Filter // nil when the stream is not restricted

	cur       *vcf.Variant
	last      genome.Locus
	hasLast   bool
	exhausted bool
	closed    bool

	recordsRead int // records read from the source, including skipped ones
}

var _ vcf.VariantParser = (*Cursor)(nil)

// NewCursor wraps src and reads its first matching record. intervals may be
// nil. If priming fails the source is closed.
func NewCursor(index int, name string, src vcf.VariantParser, order *genome.ContigOrder, intervals *genome.IntervalSet) (*Cursor, error) {
	c := &Cursor{
		index: index,
		name:  name,
		src:   src,
		order: order,
	}
	if intervals != nil {
		c.filter = intervals.NewFilter()
	}
	if err := c.Advance(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Index returns the stream index the cursor was created with.
func (c *Cursor) Index() int {
	return c.index
}

// Name returns the stream name used in error messages.
func (c *Cursor) Name() string {
	return c.name
}

// Current returns the buffered record, or false once the stream is exhausted.
func (c *Cursor) Current() (*vcf.Variant, bool) {
	if c.exhausted {
		return nil, false
	}
	return c.cur, true
}

// Locus returns the locus of the buffered record. Only valid while the
// cursor is not exhausted.
func (c *Cursor) Locus() genome.Locus {
	return c.cur.Locus()
}

// Exhausted reports whether the stream has no further matching records.
func (c *Cursor) Exhausted() bool {
	return c.exhausted
}

// RecordsRead returns the number of records read from the source so far,
// including those outside the interval restriction.
func (c *Cursor) RecordsRead() int {
	return c.recordsRead
}

// Advance discards the current record and buffers the next one inside the
// interval restriction.
func (c *Cursor) Advance() error {
	if c.exhausted {
		return nil
	}
	c.cur = nil

	for {
		v, err := c.src.Next()
		if err != nil {
			var pe *vcf.ParseError
			if errors.As(err, &pe) {
				return &MalformedInputError{Stream: c.name, Err: err}
			}
			return fmt.Errorf("read %s: %w", c.name, err)
		}
		if v == nil {
			c.exhausted = true
			return nil
		}
		c.recordsRead++

		l := v.Locus()
		if !c.order.Contains(l.Chrom) {
			return &MalformedInputError{
				Stream: c.name,
				Locus:  l,
				Err:    &genome.UnknownContigError{Chrom: l.Chrom},
			}
		}
		if c.hasLast {
			if cmp, _ := c.order.Compare(l, c.last); cmp < 0 {
				return &UnsortedStreamError{Stream: c.name, Previous: c.last, Current: l}
			}
		}
		c.last = l
		c.hasLast = true

		if c.filter != nil {
			switch c.filter.Check(l) {
			case genome.Skip:
				continue
			case genome.Done:
				c.exhausted = true
				return nil
			}
		}

		c.cur = v
		return nil
	}
}

// Next returns the buffered record and advances, so a single cursor can be
// consumed like a parser. Returns nil, nil once exhausted.
func (c *Cursor) Next() (*vcf.Variant, error) {
	v, ok := c.Current()
	if !ok {
		return nil, nil
	}
	if err := c.Advance(); err != nil {
		return nil, err
	}
	return v, nil
}

// LineNumber returns the source's current line number.
func (c *Cursor) LineNumber() int {
	return c.src.LineNumber()
}

// Close releases the underlying stream. The cursor is exhausted afterwards.
func (c *Cursor) Close() error {
	c.exhausted = true
	c.cur = nil
	if c.closed {
		return nil
	}
	c.closed = true
	return c.src.Close()
}
