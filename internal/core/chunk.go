package core

import "golang.org/x/sync/errgroup"

// mapChunks splits [0, n) into at most workers contiguous ranges, runs fn on
// each (concurrently when workers > 1) and concatenates the results in range
// order. Output order is the same for any worker count.
func mapChunks[T any](n, workers int, fn func(lo, hi int) []T) []T {
	if workers <= 1 || n < 2 {
		return fn(0, n)
	}
	workers = min(workers, n)
	size := (n + workers - 1) / workers

	parts := make([][]T, workers)
	var g errgroup.Group
	g.SetLimit(workers)
	for w := range workers {
		lo := w * size
		hi := min(lo+size, n)
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			parts[w] = fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait() // fn never fails

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]T, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
