// Package duckdb persists merged sites and the inputs they came from in a
// DuckDB database for later querying.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding merge results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS merged_sites (
		chrom VARCHAR,
		pos BIGINT,
		id VARCHAR,
		ref VARCHAR,
		alt VARCHAR,
		n_streams BIGINT,
		streams VARCHAR,
		called_samples BIGINT,
		multi_allelic BOOLEAN,
		PRIMARY KEY (chrom, pos)
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS merge_inputs (
		idx BIGINT PRIMARY KEY,
		path VARCHAR,
		size BIGINT,
		mod_time TIMESTAMP,
		samples BIGINT
	)`)
	return err
}

// Clear removes all merged sites and inputs.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM merged_sites"); err != nil {
		return fmt.Errorf("clear merged sites: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM merge_inputs"); err != nil {
		return fmt.Errorf("clear merge inputs: %w", err)
	}
	return nil
}
