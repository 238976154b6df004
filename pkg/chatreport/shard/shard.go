// Package shard splits order-insensitive corpus passes across goroutines.
package shard

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Range is a half-open [Start, End) slice of item indices.
type Range struct {
	Start, End int
}

// Ranges splits n items into at most workers contiguous ranges.
func Ranges(n, workers int) []Range {
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	size := (n + workers - 1) / workers
	var out []Range
	for start := 0; start < n; start += size {
		out = append(out, Range{Start: start, End: min(start+size, n)})
	}
	return out
}

// Map runs fn once per range of n items and returns the results in range
// order, so callers can reduce them deterministically. The first error
// cancels the context handed to the other shards and is returned.
func Map[T any](ctx context.Context, n, workers int, fn func(context.Context, Range) (T, error)) ([]T, error) {
	ranges := Ranges(n, workers)
	out := make([]T, len(ranges))
	g, ctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			v, err := fn(ctx, r)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckEvery is how many items a shard processes between context checks.
const CheckEvery = 1024

// Cancelled reports ctx's error every CheckEvery items, and nil otherwise.
func Cancelled(ctx context.Context, i int) error {
	if i%CheckEvery != 0 {
		return nil
	}
	return ctx.Err()
}
