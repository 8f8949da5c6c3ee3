package sim

import (
	"context"
	"sync/atomic"

	"github.com/san-kum/pairmass/internal/generator"
	"github.com/san-kum/pairmass/internal/random"
	"golang.org/x/sync/errgroup"
)

// chunk returns the contiguous range of iterations of worker w.
func chunk(iterations, workers, w int) (from, to int64) {
	base := iterations / workers
	rem := iterations % workers
	start := w*base + min(w, rem)
	size := base
	if w < rem {
		size++
	}
	return int64(start), int64(start + size)
}

func (s *Simulator) runParallel(ctx context.Context, cfg Config, gen *generator.Generator, pool *generator.Pool) ([]*partial, error) {
	workers := cfg.Workers
	if workers > cfg.Iterations {
		workers = cfg.Iterations
	}

	parts := make([]*partial, workers)
	for w := range parts {
		p, err := s.newPartial(cfg, gen, pool)
		if err != nil {
			return nil, err
		}
		parts[w] = p
	}

	var done atomic.Int64
	counter := func() int { return int(done.Add(1)) }

	root := random.New(cfg.Seed)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			defer pool.Put(parts[w].ev)
			from, to := chunk(cfg.Iterations, workers, w)
			return s.runChunk(gctx, parts[w], root.Split(w), from, to, cfg.Iterations, counter)
		})
	}

	err := g.Wait()
	if err != nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return parts, err
}
