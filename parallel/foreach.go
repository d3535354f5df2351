// Package parallel contains parallel ForEach() plus other concurrency primitives.
package parallel

import "sync"

import "github.com/klauspost/cpuid/v2"

// Threads reports the number of workers to use when the caller asks for n.
// Zero or negative n means one worker per logical core.
func Threads(n int) int {
	if n > 0 {
		return n
	}
	if cores := cpuid.CPU.LogicalCores; cores > 0 {
		return cores
	}
	return 1
}

// ForEach executes a for loop with a limited number of concurrent goroutines.
// Each goroutine processes one integer, from 0 to length.
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = 1
	}
	if length <= 0 {
		return
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			body(i)
		}(i)
	}

	wg.Wait()
}
