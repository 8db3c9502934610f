package lysbild

import (
	"runtime"
	"sync"

	"k8s.io/klog/v2"
)

// An Outcome classifies the result of one image job.
type Outcome int

const (
	Processed Outcome = iota
	Skipped
	Failed
)

// A Result is one completed job from the worker pool. Record is set
// for Processed, Err for Failed.
type Result struct {
	Source  *SourceImage
	Outcome Outcome
	Record  *ImageRecord
	Err     error
}

// A Job processes one source image. Jobs trap their own failures and
// report them as a Failed result, so one bad image never takes down
// the batch.
type Job func() Result

// RunPool executes jobs across at most workers goroutines and streams
// results back in completion order. workers <= 0 uses all available
// CPUs; workers == 1 runs strictly sequentially. The channel closes
// once every job has completed.
func RunPool(jobs []Job, workers int) <-chan Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(jobs) && len(jobs) > 0 {
		workers = len(jobs)
	}

	queue := make(chan Job)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			klog.V(2).Infof("worker %d started", id)
			for j := range queue {
				results <- j()
			}
			klog.V(2).Infof("worker %d finished", id)
		}(i)
	}

	go func() {
		for _, j := range jobs {
			queue <- j
		}
		close(queue)
		wg.Wait()
		close(results)
	}()

	return results
}
