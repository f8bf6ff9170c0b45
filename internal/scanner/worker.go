package scanner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/maxvaer/netsweep/internal/probe"
)

// dispatchConfig holds options for the dispatch loop.
type dispatchConfig struct {
	Concurrency int
	Timeout     time.Duration
	Limiter     *Limiter // nil = unlimited
	Pauser      *Pauser  // nil = no pause support
}

// dispatch fans targets out to the prober with at most cfg.Concurrency
// probes in flight and returns a channel of results. The channel is closed
// once every dispatched probe has reported. Cancelling ctx stops further
// dispatch; probes already in flight finish on their own timeout.
func dispatch(
	ctx context.Context,
	p probe.Prober,
	targets []Target,
	cfg dispatchConfig,
) <-chan Result {
	resultsCh := make(chan Result, cfg.Concurrency)
	sem := semaphore.NewWeighted(int64(cfg.Concurrency))

	go func() {
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			close(resultsCh)
		}()

		for _, t := range targets {
			if ctx.Err() != nil {
				return
			}
			if cfg.Pauser != nil {
				if err := cfg.Pauser.Wait(ctx); err != nil {
					return
				}
			}
			if err := cfg.Limiter.Wait(ctx); err != nil {
				return
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			// Acquire may succeed on an already cancelled context.
			if ctx.Err() != nil {
				sem.Release(1)
				return
			}

			wg.Add(1)
			go func(t Target) {
				defer wg.Done()
				defer sem.Release(1)
				res := p.Probe(t.Address, t.Port, cfg.Timeout)
				resultsCh <- Result{Target: t, Status: res.Status, RTT: res.RTT, Err: res.Err}
			}(t)
		}
	}()

	return resultsCh
}
