package merge

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// State is the lifecycle state of a Driver.
type State int

const (
	// Running means every stream still has records.
	Running State = iota
	// Draining means at least one stream is exhausted; the others are still
	// merged and the exhausted ones report missing genotypes.
	Draining
	// Done means every stream is exhausted or the run stopped. Resources
	// have been released and there is no way back.
	Done
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Driver pulls locus groups from a SyncedReader, merges them and writes
// the result to a Sink.
type Driver struct {
	reader *SyncedReader
	merger *Merger
	sink   Sink
	state  State
	closed bool
	logger *zap.Logger
}

// NewDriver creates a driver. It takes ownership of reader and sink and
// closes both when it reaches Done.
func NewDriver(reader *SyncedReader, merger *Merger, sink Sink) *Driver {
	d := &Driver{
		reader: reader,
		merger: merger,
		sink:   sink,
		logger: zap.NewNop(),
	}
	d.updateState()
	return d
}

// SetLogger sets the logger for progress messages.
func (d *Driver) SetLogger(l *zap.Logger) {
	d.logger = l
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

func (d *Driver) updateState() {
	if d.state == Done {
		return
	}
	switch active := d.reader.Active(); {
	case active == 0:
		d.state = Done
	case active < d.reader.NumStreams():
		if d.state == Running {
			d.logger.Debug("stream exhausted, draining remaining inputs", zap.Int("active", active))
		}
		d.state = Draining
	default:
		d.state = Running
	}
}

// Run writes the header and merges every group until all streams are
// exhausted, ctx is cancelled or an error occurs. Records written before a
// failure stay written. stats may be nil. The reader and sink are closed
// on return.
func (d *Driver) Run(ctx context.Context, header *Header, stats *Stats) (err error) {
	if d.closed {
		return fmt.Errorf("merge already finished")
	}
	defer func() {
		err = multierr.Append(err, d.Close())
	}()

	if err := d.sink.WriteHeader(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for d.state != Done {
		if err := ctx.Err(); err != nil {
			return err
		}

		g, err := d.reader.ReadNextGroup()
		if err != nil {
			return err
		}
		if g == nil {
			break
		}

		rec, err := d.merger.Merge(g)
		if err != nil {
			return err
		}
		if err := d.sink.Write(rec); err != nil {
			return fmt.Errorf("write record at %s: %w", rec.Locus, err)
		}
		if stats != nil {
			stats.observe(rec)
		}

		d.updateState()
	}

	if stats != nil {
		for i, c := range d.reader.Cursors() {
			if i < len(stats.RecordsRead) {
				stats.RecordsRead[i] = c.RecordsRead()
			}
		}
		d.logger.Info("merge complete",
			zap.Int("sites", stats.Sites),
			zap.Int("files", stats.Files))
	}
	return nil
}

// Close releases the reader and sink and moves the driver to Done.
// Calling Close more than once is safe.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.state = Done

	return multierr.Append(d.reader.Close(), d.sink.Close())
}
