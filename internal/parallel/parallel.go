// Package parallel splits an index range across worker goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// ForEach invokes fn(start, end) on up to workers goroutines covering
// [0, n) in contiguous chunks and waits for all of them. workers <= 0
// means one worker per CPU.
func ForEach(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	per := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * per
		if start >= n {
			break
		}
		end := start + per
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
