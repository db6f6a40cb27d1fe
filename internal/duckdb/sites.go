package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/holtgrewe/vt/internal/merge"
)

// Site is one row of merged_sites.
type Site struct {
	Chrom         string
	Pos           int64
	ID            string
	Ref           string
	Alt           string // comma-separated, "." when none
	Streams       []int
	CalledSamples int
	MultiAllelic  bool
}

// SiteFromRecord summarizes a merged record.
func SiteFromRecord(rec *merge.Record) Site {
	alt := "."
	if len(rec.Alt()) > 0 {
		alt = strings.Join(rec.Alt(), ",")
	}
	called := 0
	for _, gt := range rec.Genotypes {
		if !gt.IsMissing() {
			called++
		}
	}
	return Site{
		Chrom:         rec.Locus.Chrom,
		Pos:           rec.Locus.Pos,
		ID:            rec.ID,
		Ref:           rec.Ref(),
		Alt:           alt,
		Streams:       rec.Streams,
		CalledSamples: called,
		MultiAllelic:  len(rec.Alt()) > 1,
	}
}

func formatStreams(streams []int) string {
	parts := make([]string, len(streams))
	for i, s := range streams {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

func parseStreams(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid stream list %q", s)
		}
		out[i] = n
	}
	return out, nil
}

// WriteSites batch-inserts sites using the Appender API.
func (s *Store) WriteSites(sites []Site) error {
	if len(sites) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "merged_sites")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, st := range sites {
		if err := appender.AppendRow(
			st.Chrom, st.Pos, st.ID, st.Ref, st.Alt,
			int64(len(st.Streams)), formatStreams(st.Streams),
			int64(st.CalledSamples), st.MultiAllelic,
		); err != nil {
			return fmt.Errorf("append merged site: %w", err)
		}
	}

	return appender.Flush()
}

const siteColumns = `chrom, pos, id, ref, alt, streams, called_samples, multi_allelic`

// LookupSite returns the merged site at chrom:pos, or nil.
func (s *Store) LookupSite(chrom string, pos int64) (*Site, error) {
	rows, err := s.db.Query(`SELECT `+siteColumns+` FROM merged_sites WHERE chrom=? AND pos=?`, chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query site: %w", err)
	}
	defer rows.Close()

	sites, err := scanSites(rows)
	if err != nil || len(sites) == 0 {
		return nil, err
	}
	return &sites[0], nil
}

// SitesInRegion returns the sites on chrom between start and end inclusive,
// ordered by position.
func (s *Store) SitesInRegion(chrom string, start, end int64) ([]Site, error) {
	rows, err := s.db.Query(`SELECT `+siteColumns+` FROM merged_sites
		WHERE chrom=? AND pos BETWEEN ? AND ? ORDER BY pos`, chrom, start, end)
	if err != nil {
		return nil, fmt.Errorf("query region: %w", err)
	}
	defer rows.Close()

	return scanSites(rows)
}

// CountSitesInAll returns the number of sites every one of n streams
// contributed to.
func (s *Store) CountSitesInAll(n int) (int, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT count(*) FROM merged_sites WHERE n_streams=?`, int64(n)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sites: %w", err)
	}
	return int(count), nil
}

// scanSites scans rows into Site slices.
func scanSites(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Site, error) {
	var sites []Site
	for rows.Next() {
		var st Site
		var streams string
		var called int64
		if err := rows.Scan(&st.Chrom, &st.Pos, &st.ID, &st.Ref, &st.Alt, &streams, &called, &st.MultiAllelic); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		var err error
		if st.Streams, err = parseStreams(streams); err != nil {
			return nil, err
		}
		st.CalledSamples = int(called)
		sites = append(sites, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return sites, nil
}
