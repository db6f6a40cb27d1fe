package annotate

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/holtgrewe/vt/internal/vcf"
)

// Annotator classifies records and detects repeat context around indels.
type Annotator struct {
	ref     SequenceSource
	workers int
	logger  *zap.Logger
}

// NewAnnotator creates an annotator. ref may be nil, in which case repeat
// tracts are measured within the record's own REF allele.
func NewAnnotator(ref SequenceSource) *Annotator {
	return &Annotator{
		ref:    ref,
		logger: zap.NewNop(),
	}
}

// SetWorkers sets the number of annotation workers; 0 means one per CPU.
func (a *Annotator) SetWorkers(n int) {
	a.workers = n
}

// SetLogger sets the logger for warning and info messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Annotate classifies a single record and, for indels, finds the repeat
// tract around the first indel allele.
func (a *Annotator) Annotate(v *vcf.Variant) (*Annotation, error) {
	if v.Ref == "" {
		return nil, fmt.Errorf("%s: empty reference allele", v.Locus())
	}

	ann := &Annotation{Type: Classify(v.Ref, v.Alt)}
	if !ann.Type.Has(TypeIndel) {
		return ann, nil
	}

	for _, alt := range v.Alt {
		if ClassifyAllele(v.Ref, alt) != TypeIndel {
			continue
		}
		t := trimAlleles(v.Ref, alt)
		seq := t.Ref + t.Alt // one of them is empty
		pos := v.Pos + int64(t.Offset)

		src := a.ref
		if src == nil {
			src = alleleContext{chrom: v.Chrom, pos: v.Pos, ref: strings.ToUpper(v.Ref)}
		} else if got := src.Sequence(v.Chrom, v.Pos, v.Pos); got != "" && got[0] != upper(v.Ref[0]) {
			a.logger.Warn("reference mismatch",
				zap.String("chrom", v.Chrom),
				zap.Int64("pos", v.Pos),
				zap.String("ref", v.Ref),
				zap.String("genome", got))
		}

		ann.Repeat = findRepeat(src, v.Chrom, pos, RepeatUnit(seq))
		break
	}
	return ann, nil
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// AnnotateAll annotates every record from parser in input order. Records
// that fail to annotate are logged and skipped. stats may be nil.
func (a *Annotator) AnnotateAll(ctx context.Context, parser vcf.VariantParser, writer AnnotationWriter, stats *Stats) error {
	workers := a.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Job, 2*workers)
	produced := make(chan struct{})
	var parseErr error
	variantCount := 0

	go func() {
		defer close(produced)
		defer close(jobs)
		seq := 0
		for {
			v, err := parser.Next()
			if err != nil {
				parseErr = fmt.Errorf("read variant: %w", err)
				return
			}
			if v == nil {
				return
			}
			variantCount++

			select {
			case jobs <- Job{Seq: seq, Variant: v}:
				seq++
			case <-wctx.Done():
				return
			}
		}
	}()

	results := a.AnnotateJobs(wctx, jobs, workers)

	err := InOrder(results, func(r Result) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.Err != nil {
			a.logger.Warn("failed to annotate variant",
				zap.String("chrom", r.Variant.Chrom),
				zap.Int64("pos", r.Variant.Pos),
				zap.Error(r.Err))
			return nil
		}
		if err := writer.Write(r.Variant, r.Ann); err != nil {
			cancel()
			return fmt.Errorf("write annotation: %w", err)
		}
		if stats != nil {
			stats.observe(r.Ann)
		}
		return nil
	})
	cancel()
	<-produced
	if err != nil {
		return err
	}

	if parseErr != nil {
		return parseErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if variantCount == 0 {
		a.logger.Info("0 variants processed")
	}

	return writer.Flush()
}
