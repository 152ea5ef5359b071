// Package parallel splits index ranges across goroutines for the CPU kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Workers int // Upper bound on goroutines per call; <= 1 runs inline.
	MinWork int // Minimum scalar operations per goroutine.
}

// DefaultConfig uses one worker per CPU and keeps goroutines at a few
// thousand multiply-adds each.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.NumCPU(),
		MinWork: 4096,
	}
}

// Sequential never spawns goroutines.
func Sequential() Config {
	return Config{Workers: 1}
}

// For executes f(i) for i in [0, n). cost estimates the scalar operations of
// one call and decides how many items each goroutine takes. f must be safe
// to run concurrently for distinct i.
func For(n, cost int, f func(i int), cfg Config) {
	if n <= 0 {
		return
	}
	chunk := chunkSize(n, cost, cfg)
	if chunk >= n {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForBatch iterates the batch×inner grid, e.g. (sample, channel) for
// convolutions or (sample, row) for similarity images.
func ForBatch(batch, inner, cost int, f func(b, i int), cfg Config) {
	if inner <= 0 {
		return
	}
	For(batch*inner, cost, func(k int) {
		f(k/inner, k%inner)
	}, cfg)
}

func chunkSize(n, cost int, cfg Config) int {
	if cfg.Workers <= 1 {
		return n
	}
	cost = max(cost, 1)
	minItems := max((cfg.MinWork+cost-1)/cost, 1)
	return max((n+cfg.Workers-1)/cfg.Workers, minItems)
}
