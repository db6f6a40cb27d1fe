package duckdb

import (
	"github.com/holtgrewe/vt/internal/merge"
	"github.com/holtgrewe/vt/internal/vcf"
)

const defaultBatchSize = 10000

// Sink stores merged records in a Store. It implements merge.Sink. Sites
// are buffered and appended in batches.
type Sink struct {
	store     *Store
	batch     []Site
	batchSize int
	closed    bool
}

// NewSink creates a sink writing to store. The store stays open after
// Close.
func NewSink(store *Store) *Sink {
	return &Sink{store: store, batchSize: defaultBatchSize}
}

// WriteHeader clears previous results and records the inputs. Inputs that
// are not local files are recorded by path only.
func (s *Sink) WriteHeader(h *merge.Header) error {
	if err := s.store.Clear(); err != nil {
		return err
	}

	inputs := make([]Input, len(h.Inputs))
	for i, path := range h.Inputs {
		inputs[i].Path = path
		if path != "-" && !vcf.IsRemote(path) {
			if fp, err := StatFile(path); err == nil {
				inputs[i].FileFingerprint = fp
			}
		}
		if i < len(h.InputSamples) {
			inputs[i].Samples = h.InputSamples[i]
		}
	}
	return s.store.WriteInputs(inputs)
}

// Write buffers one record.
func (s *Sink) Write(rec *merge.Record) error {
	s.batch = append(s.batch, SiteFromRecord(rec))
	if len(s.batch) >= s.batchSize {
		return s.flush()
	}
	return nil
}

func (s *Sink) flush() error {
	if err := s.store.WriteSites(s.batch); err != nil {
		return err
	}
	s.batch = s.batch[:0]
	return nil
}

// Close writes any buffered sites.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.flush()
}
