package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"os"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Input is one row of merge_inputs.
type Input struct {
	FileFingerprint
	Samples int
}

// WriteInputs replaces the recorded inputs.
func (s *Store) WriteInputs(inputs []Input) error {
	if _, err := s.db.Exec("DELETE FROM merge_inputs"); err != nil {
		return fmt.Errorf("clear merge inputs: %w", err)
	}
	if len(inputs) == 0 {
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
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "merge_inputs")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i, in := range inputs {
		if err := appender.AppendRow(int64(i), in.Path, in.Size, in.ModTime, int64(in.Samples)); err != nil {
			return fmt.Errorf("append merge input: %w", err)
		}
	}
	return appender.Flush()
}

// Inputs returns the recorded inputs in stream order.
func (s *Store) Inputs() ([]Input, error) {
	rows, err := s.db.Query(`SELECT path, size, mod_time, samples FROM merge_inputs ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("query merge inputs: %w", err)
	}
	defer rows.Close()

	var out []Input
	for rows.Next() {
		var in Input
		var samples int64
		if err := rows.Scan(&in.Path, &in.Size, &in.ModTime, &samples); err != nil {
			return nil, fmt.Errorf("scan merge input: %w", err)
		}
		in.Samples = int(samples)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merge inputs: %w", err)
	}
	return out, nil
}

// SameInputs reports whether the database already holds a merge of exactly
// these files, compared by path, size and modification time. DuckDB keeps
// timestamps to the microsecond.
func (s *Store) SameInputs(fps []FileFingerprint) (bool, error) {
	stored, err := s.Inputs()
	if err != nil {
		return false, err
	}
	if len(stored) != len(fps) {
		return false, nil
	}
	for i, in := range stored {
		fp := fps[i]
		if in.Path != fp.Path || in.Size != fp.Size || !in.ModTime.Equal(fp.ModTime.Truncate(time.Microsecond)) {
			return false, nil
		}
	}
	return true, nil
}
