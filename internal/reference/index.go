package reference

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// IndexEntry is one line of a samtools .fai index.
type IndexEntry struct {
	Name   string
	Length int64
}

// ReadIndex parses a .fai index. Only the name and length columns are used.
func ReadIndex(r io.Reader) ([]IndexEntry, error) {
	var entries []IndexEntry
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("fai line %d: expected at least 2 columns, found %d", lineNumber, len(fields))
		}
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("fai line %d: invalid length %q", lineNumber, fields[1])
		}
		entries = append(entries, IndexEntry{Name: fields[0], Length: n})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fai index: %w", err)
	}
	return entries, nil
}

// Dictionary is a contig dictionary in canonical order.
type Dictionary struct {
	Names   []string
	Lengths map[string]int64
}

// LoadDictionary returns the contig dictionary of the FASTA at path. The
// .fai index next to it is used when present; otherwise the FASTA itself
// is scanned.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path + ".fai")
	switch {
	case err == nil:
		defer f.Close()
		entries, err := ReadIndex(f)
		if err != nil {
			return nil, fmt.Errorf("%s.fai: %w", path, err)
		}
		d := &Dictionary{Lengths: make(map[string]int64, len(entries))}
		for _, e := range entries {
			d.Names = append(d.Names, e.Name)
			d.Lengths[e.Name] = e.Length
		}
		return d, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("open fai index: %w", err)
	}

	g := NewGenome(path)
	if err := g.Load(); err != nil {
		return nil, err
	}
	return &Dictionary{Names: g.Names(), Lengths: g.Lengths()}, nil
}
