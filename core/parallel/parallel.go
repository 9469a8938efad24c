// Package parallel provides the chunked loops and order-preserving map used
// by the row-wise transforms and the cross-validation grid.
package parallel

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
)

// Parallelize divides the specified total number (items) according to the number of CPU cores,
// and executes the specified function (fn) in parallel for each range (start, end)
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeN(items, runtime.NumCPU(), fn)
}

// ParallelizeN is Parallelize with an explicit worker count.
func ParallelizeN(items, workers int, fn func(start, end int)) {
	if items == 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items // No need for more workers than items
	}

	// Calculate the number of items each worker handles (ceiling division)
	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// Map calls fn(i) for every i in [0, n) on up to workers goroutines and
// returns the results in index order. Output does not depend on scheduling.
//
// workers <= 0 means runtime.NumCPU(); 1 runs sequentially on the caller's
// goroutine. Panics in fn are recovered as *errors.PanicError. When several
// calls fail, the error of the lowest index is returned.
func Map[T any](n, workers int, fn func(i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	errs := make([]error, n)
	if n == 0 {
		return out, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	run := func(i int) {
		errs[i] = errors.SafeExecute(fmt.Sprintf("parallel.Map[%d]", i), func() error {
			v, err := fn(i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}

	if workers == 1 {
		for i := 0; i < n; i++ {
			run(i)
			if errs[i] != nil {
				return nil, errs[i]
			}
		}
		return out, nil
	}

	ParallelizeN(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			run(i)
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
