// Package parallel provides a bounded-concurrency loop helper for
// batch-parallel kernels.
package parallel

import (
	"runtime"
	"sync"
)

// ForEach runs body(i) for i in [0, length) using at most limit concurrent
// goroutines. A limit <= 0 selects GOMAXPROCS. The call returns once every
// iteration has completed.
func ForEach(length, limit int, body func(i int)) {
	if length <= 0 {
		return
	}

	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	if limit == 1 || length == 1 {
		for i := range length {
			body(i)
		}

		return
	}

	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup

	wg.Add(length)

	for i := range length {
		sem <- struct{}{}

		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			body(i)
		}(i)
	}

	wg.Wait()
}
