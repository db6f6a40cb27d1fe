package annotate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holtgrewe/vt/internal/vcf"
)

// snpJobs returns n queued SNP jobs; every tenth one is an indel.
func snpJobs(n int) <-chan Job {
	ch := make(chan Job, n)
	for i := 0; i < n; i++ {
		v := &vcf.Variant{Chrom: "1", Pos: int64(100 + i), Ref: "A", Alt: []string{"T"}}
		if i%10 == 9 {
			v.Alt = []string{"AT"}
		}
		ch <- Job{Seq: i, Variant: v}
	}
	close(ch)
	return ch
}

func collectSeqs(t *testing.T, results <-chan Result) []int {
	t.Helper()
	var seqs []int
	require.NoError(t, InOrder(results, func(r Result) error {
		require.NoError(t, r.Err)
		seqs = append(seqs, r.Seq)
		return nil
	}))
	return seqs
}

func TestAnnotateJobs_PreservesOrder(t *testing.T) {
	for _, workers := range []int{1, 4, 8, 0} {
		ann := NewAnnotator(nil)
		seqs := collectSeqs(t, ann.AnnotateJobs(context.Background(), snpJobs(200), workers))

		require.Len(t, seqs, 200, "workers=%d", workers)
		for i, seq := range seqs {
			assert.Equal(t, i, seq, "workers=%d", workers)
		}
	}
}

func TestAnnotateJobs_CarriesAnnotation(t *testing.T) {
	ann := NewAnnotator(nil)

	err := InOrder(ann.AnnotateJobs(context.Background(), snpJobs(20), 3), func(r Result) error {
		want := TypeSNP
		if r.Seq%10 == 9 {
			want = TypeIndel
		}
		assert.Equal(t, want, r.Ann.Type, "seq %d", r.Seq)
		assert.Equal(t, int64(100+r.Seq), r.Variant.Pos)
		return nil
	})
	require.NoError(t, err)
}

func TestAnnotateJobs_Empty(t *testing.T) {
	ch := make(chan Job)
	close(ch)

	seqs := collectSeqs(t, NewAnnotator(nil).AnnotateJobs(context.Background(), ch, 4))
	assert.Empty(t, seqs)
}

func TestInOrder_StopsAtFirstError(t *testing.T) {
	ann := NewAnnotator(nil)
	stop := errors.New("stop at 5")

	count := 0
	err := InOrder(ann.AnnotateJobs(context.Background(), snpJobs(100), 4), func(r Result) error {
		count++
		if count == 5 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 5, count)
}

func TestInOrder_OutOfOrderArrival(t *testing.T) {
	ch := make(chan Result, 4)
	for _, seq := range []int{2, 0, 3, 1} {
		ch <- Result{Seq: seq}
	}
	close(ch)

	var seqs []int
	require.NoError(t, InOrder(ch, func(r Result) error {
		seqs = append(seqs, r.Seq)
		return nil
	}))
	assert.Equal(t, []int{0, 1, 2, 3}, seqs)
}
