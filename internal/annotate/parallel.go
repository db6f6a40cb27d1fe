package annotate

import (
	"context"
	"runtime"
	"sync"

	"github.com/holtgrewe/vt/internal/vcf"
)

// Job is one record queued for annotation. Seq is its position in the
// input, counting from 0.
type Job struct {
	Seq     int
	Variant *vcf.Variant
}

// Result carries the annotation of one Job.
type Result struct {
	Seq     int
	Variant *vcf.Variant
	Ann     *Annotation
	Err     error
}

// AnnotateJobs annotates jobs on a pool of workers; 0 means one per CPU.
// Results arrive in completion order, use InOrder to restore input order.
// Workers stop once ctx is done. The returned channel is closed after every
// worker has returned.
func (a *Annotator) AnnotateJobs(ctx context.Context, jobs <-chan Job, workers int) <-chan Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make(chan Result, 2*workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				ann, err := a.Annotate(j.Variant)
				select {
				case out <- Result{Seq: j.Seq, Variant: j.Variant, Ann: ann, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// InOrder calls fn for every result in Seq order, holding back results
// that arrive early. After fn fails the remaining results are drained so
// the workers can exit, and fn's error is returned.
func InOrder(results <-chan Result, fn func(Result) error) error {
	var (
		window []*Result // window[i] holds Seq next+i
		next   int
		fnErr  error
	)

	for r := range results {
		r := r // per-iteration copy: &r is retained in window (go1.22 loopvar semantics)
		if fnErr != nil {
			continue
		}

		off := r.Seq - next
		for len(window) <= off {
			window = append(window, nil)
		}
		window[off] = &r

		for len(window) > 0 && window[0] != nil {
			head := window[0]
			window = window[1:]
			next++
			if err := fn(*head); err != nil {
				fnErr = err
				break
			}
		}
	}

	return fnErr
}
