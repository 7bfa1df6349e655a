// Package parallel distributes independent per-objective work. The
// optimization engine is strictly sequential across iterations and midpoints;
// only the propagation of separate objectives at a fixed point in the
// algorithm may run concurrently, and every call forms a barrier.
package parallel

import (
	"runtime"
	"sync"
)

// Mapper invokes fn for every index in [0, n) and waits for all invocations
// to finish. Results are positioned by index in whatever storage fn writes
// to; Map returns the first error in index order, or nil.
type Mapper interface {
	Map(n int, fn func(i int) error) error
}

// Serial runs the function calls one after another in the calling goroutine.
// It is the default mapper.
type Serial struct{}

// Map implements [Mapper]. It stops at the first error.
func (Serial) Map(n int, fn func(i int) error) error {
	for i := 0; i < n; i++ {
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

// Pool fans the function calls out over a fixed set of worker goroutines.
// Workers ≤ 0 means one worker per CPU.
type Pool struct {
	Workers int
}

// Map implements [Mapper]. All indices are processed even when some fail;
// the first error by index order is returned.
func (p Pool) Map(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	errs := make([]error, n)
	indices := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				errs[i] = fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
