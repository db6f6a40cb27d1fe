package genome

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// EndOfContig is the End of an interval that runs to the end of its chromosome.
const EndOfContig = math.MaxInt64

// Interval is a 1-based, fully closed range on one chromosome.
type Interval struct {
	Chrom string
	Start int64
	End   int64
}

// Contains reports whether l lies inside the interval.
func (iv Interval) Contains(l Locus) bool {
	return l.Chrom == iv.Chrom && l.Pos >= iv.Start && l.Pos <= iv.End
}

func (iv Interval) String() string {
	switch {
	case iv.Start <= 1 && iv.End == EndOfContig:
		return iv.Chrom
	case iv.End == EndOfContig:
		return fmt.Sprintf("%s:%d-", iv.Chrom, iv.Start)
	}
	return fmt.Sprintf("%s:%d-%d", iv.Chrom, iv.Start, iv.End)
}

// IntervalParseError reports malformed interval syntax.
type IntervalParseError struct {
	Source string // flag or file:line the text came from
	Input  string
	Reason string
}

func (e *IntervalParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("invalid interval %q (%s): %s", e.Input, e.Source, e.Reason)
	}
	return fmt.Sprintf("invalid interval %q: %s", e.Input, e.Reason)
}

// ParseInterval parses one interval in chr, chr:pos, chr:start-end or
// chr:start- form.
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Interval{}, &IntervalParseError{Input: s, Reason: "empty interval"}
	}

	colon := strings.LastIndexByte(s, ':')
	if colon < 0 {
		return Interval{Chrom: s, Start: 1, End: EndOfContig}, nil
	}
	chrom, rng := s[:colon], s[colon+1:]
	if chrom == "" {
		return Interval{}, &IntervalParseError{Input: s, Reason: "missing chromosome"}
	}

	startStr, endStr, hasDash := strings.Cut(rng, "-")
	start, err := parsePosition(startStr)
	if err != nil {
		return Interval{}, &IntervalParseError{Input: s, Reason: "start " + err.Error()}
	}
	iv := Interval{Chrom: chrom, Start: start, End: start}
	if hasDash {
		if endStr == "" {
			iv.End = EndOfContig
		} else {
			end, err := parsePosition(endStr)
			if err != nil {
				return Interval{}, &IntervalParseError{Input: s, Reason: "end " + err.Error()}
			}
			iv.End = end
		}
	}
	if iv.End < iv.Start {
		return Interval{}, &IntervalParseError{Input: s, Reason: "end is before start"}
	}
	return iv, nil
}

func parsePosition(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("is empty")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v < 1 {
		return 0, fmt.Errorf("%d is not a 1-based position", v)
	}
	return v, nil
}

// ParseIntervalList parses a comma-separated list of intervals as given on
// the command line.
func ParseIntervalList(list string) ([]Interval, error) {
	var out []Interval
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	for _, field := range strings.Split(list, ",") {
		iv, err := ParseInterval(field)
		if err != nil {
			if pe, ok := err.(*IntervalParseError); ok {
				pe.Source = "interval list"
			}
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}

// ReadIntervalFile reads one interval per line. Lines are either in the
// command-line syntax or tab-separated "chrom start end" with 1-based
// inclusive coordinates. Blank lines and lines starting with '#' are skipped.
func ReadIntervalFile(path string) ([]Interval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open interval file: %w", err)
	}
	defer f.Close()

	var out []Interval
	scanner := bufio.NewScanner(f)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var iv Interval
		if fields := strings.Split(line, "\t"); len(fields) >= 3 {
			iv, err = ParseInterval(fmt.Sprintf("%s:%s-%s", fields[0], fields[1], fields[2]))
		} else {
			iv, err = ParseInterval(line)
		}
		if err != nil {
			if pe, ok := err.(*IntervalParseError); ok {
				pe.Input = line
				pe.Source = fmt.Sprintf("%s:%d", path, lineNumber)
			}
			return nil, err
		}
		out = append(out, iv)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read interval file: %w", err)
	}
	return out, nil
}

// LoadIntervals resolves the file and list forms of an interval restriction
// into a single slice, file entries first. Both arguments are optional.
func LoadIntervals(file, list string) ([]Interval, error) {
	var out []Interval
	if file != "" {
		ivs, err := ReadIntervalFile(file)
		if err != nil {
			return nil, err
		}
		out = append(out, ivs...)
	}
	ivs, err := ParseIntervalList(list)
	if err != nil {
		return nil, err
	}
	return append(out, ivs...), nil
}

// IntervalSet is an ordered, non-overlapping set of intervals. Intervals are
// sorted by contig dictionary order and never modified after construction.
type IntervalSet struct {
	order     *ContigOrder
	intervals []Interval
	byChrom   map[string][]Interval
}

// NewIntervalSet sorts intervals by dictionary order and coalesces
// overlapping or adjacent ones. Every chromosome must be in the dictionary.
func NewIntervalSet(order *ContigOrder, intervals []Interval) (*IntervalSet, error) {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	for _, iv := range sorted {
		if !order.Contains(iv.Chrom) {
			return nil, &UnknownContigError{Chrom: iv.Chrom}
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		ri, _ := order.Rank(sorted[i].Chrom)
		rj, _ := order.Rank(sorted[j].Chrom)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Start < sorted[j].Start
	})

	var merged []Interval
	for _, iv := range sorted {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.Chrom == iv.Chrom && (last.End == EndOfContig || iv.Start <= last.End+1) {
				if iv.End > last.End {
					last.End = iv.End
				}
				continue
			}
		}
		merged = append(merged, iv)
	}

	s := &IntervalSet{
		order:     order,
		intervals: merged,
		byChrom:   make(map[string][]Interval),
	}
	for _, iv := range merged {
		s.byChrom[iv.Chrom] = append(s.byChrom[iv.Chrom], iv)
	}
	return s, nil
}

// Intervals returns the normalized intervals in order.
func (s *IntervalSet) Intervals() []Interval {
	return s.intervals
}

// Len returns the number of normalized intervals.
func (s *IntervalSet) Len() int {
	return len(s.intervals)
}

// Contains reports whether l falls inside any interval.
func (s *IntervalSet) Contains(l Locus) bool {
	ivs := s.byChrom[l.Chrom]
	// first interval ending at or after l
	i := sort.Search(len(ivs), func(i int) bool { return ivs[i].End >= l.Pos })
	return i < len(ivs) && ivs[i].Start <= l.Pos
}

// NewFilter returns a forward-only filter over the set for one sorted stream.
func (s *IntervalSet) NewFilter() *Filter {
	return &Filter{set: s}
}

// Verdict is the outcome of checking a locus against a Filter.
type Verdict int

const (
	// Keep means the locus lies inside an interval.
	Keep Verdict = iota
	// Skip means the locus lies before the next interval.
	Skip
	// Done means the locus lies after the last interval.
	Done
)

// Filter walks an IntervalSet alongside one sorted stream. Loci passed to
// Check must be non-decreasing.
type Filter struct {
	set *IntervalSet
	idx int
}

// Check classifies l against the remaining intervals.
func (f *Filter) Check(l Locus) Verdict {
	order := f.set.order
	ivs := f.set.intervals
	for f.idx < len(ivs) && order.Less(Locus{Chrom: ivs[f.idx].Chrom, Pos: ivs[f.idx].End}, l) {
		f.idx++
	}
	if f.idx == len(ivs) {
		return Done
	}
	iv := ivs[f.idx]
	if order.Less(l, Locus{Chrom: iv.Chrom, Pos: iv.Start}) {
		return Skip
	}
	return Keep
}
