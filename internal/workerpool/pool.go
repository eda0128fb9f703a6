// Package workerpool runs a unit-of-work function over an input list with
// bounded, fixed-size concurrency, mirroring the teacher's channel+WaitGroup
// fan-out (see internal/engine/recon.ReconService.Run in the reference tree)
// generalized with generics so every pipeline stage can share it.
package workerpool

import (
	"sync"

	"github.com/vhostsieve/vhostsieve/internal/progress"
)

// Job describes one stage's unit of work. Go does not allow methods to carry
// their own type parameters, so the runner below is a free function rather
// than a method on Job.
type Job[A any, R any] struct {
	// GetArgs returns the full work list for this stage.
	GetArgs func() []A
	// Run executes one unit of work. WorkerID is stable for the life of the
	// goroutine that calls Run and is used by callers that need per-worker
	// state (see internal/sniinject).
	Run func(workerID int, arg A) (R, bool)
	// ShowStartInfo announces the stage before work begins.
	ShowStartInfo func(args []A)
	// ValidateResults decides whether the stage produced an acceptable
	// outcome; a false return causes RunJob to return nil.
	ValidateResults func(results []R) bool
}

// RunJob fans Job.Run out across a fixed pool of threads goroutines, each
// assigned a stable worker ID in [0, threads). Results for which Run returns
// ok=false are dropped. Execution order is unspecified.
func RunJob[A any, R any](job Job[A, R], threads int, tracker *progress.Tracker) []R {
	args := job.GetArgs()
	if job.ShowStartInfo != nil {
		job.ShowStartInfo(args)
	}
	if tracker != nil {
		tracker.Reset(len(args))
	}
	if len(args) == 0 {
		if job.ValidateResults != nil && !job.ValidateResults(nil) {
			return nil
		}
		return nil
	}
	if threads < 1 {
		threads = 1
	}

	type indexedArg struct {
		idx int
		arg A
	}
	work := make(chan indexedArg, len(args))
	for i, a := range args {
		work <- indexedArg{i, a}
	}
	close(work)

	var mu sync.Mutex
	var results []R
	var wg sync.WaitGroup

	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for item := range work {
				r, ok := job.Run(workerID, item.arg)
				if tracker != nil {
					tracker.Done()
				}
				if !ok {
					continue
				}
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	if job.ValidateResults != nil && !job.ValidateResults(results) {
		return nil
	}
	return results
}
