package emax

import (
	"runtime"
	"sync"

	"github.com/katalvlaran/kwdp/model"
)

// forEachPartition is the dense-partition fork/join: it runs fn once per
// partition on a bounded worker pool and joins before returning. fn must
// be a pure function of its partition's slice of state plus shared
// read-only inputs; partitions must not be assumed to run in any order or
// to share draws.
//
// The first error aborts the join (remaining jobs are drained, not
// retried) and is returned verbatim.
//
// Complexity: O(partitions) scheduling overhead.
func forEachPartition(parts []model.Partition, workers int, fn func(part *model.Partition) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(parts) {
		workers = len(parts)
	}

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := fn(&parts[i]); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}

	for i := range parts {
		jobs <- i
	}
	close(jobs)
	wg.Wait() // barrier: the period is complete only when every partition merged

	return firstErr
}
