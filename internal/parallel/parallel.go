// Package parallel splits index ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// MinGrain is the smallest range handed to a single worker by For.
// Ranges shorter than MinGrain run on the calling goroutine.
var MinGrain = 1

// For calls fn over disjoint [start, end) chunks covering [0, n).
func For(n int, fn func(start, end int)) {
	ForGrain(n, MinGrain, fn)
}

// ForGrain is For with an explicit minimum chunk size. Kernels whose
// per-index work is large (a whole channel plane) pass 1; cheap
// elementwise loops pass a larger grain to avoid spawning goroutines for
// a handful of floats.
func ForGrain(n, grain int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if grain < 1 {
		grain = 1
	}
	workers := runtime.GOMAXPROCS(0)
	if maxWorkers := (n + grain - 1) / grain; workers > maxWorkers {
		workers = maxWorkers
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
