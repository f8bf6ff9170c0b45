package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maxvaer/netsweep/internal/probe"
)

// DefaultProgressEvery is the number of completions between progress events.
const DefaultProgressEvery = 50

// ErrInvalidRequest is returned, wrapped, for requests rejected before any
// probe is dispatched.
var ErrInvalidRequest = errors.New("invalid scan request")

// Request describes a fully parsed scan.
type Request struct {
	Addresses     []string
	Ports         []int
	Timeout       time.Duration
	Concurrency   int
	ProgressEvery int     // 0 = DefaultProgressEvery
	Rate          float64 // probes per second, 0 = unlimited
	Pauser        *Pauser // optional interactive pause gate
}

// Validate reports whether the request can be dispatched.
func (r *Request) Validate() error {
	switch {
	case len(r.Addresses) == 0:
		return fmt.Errorf("%w: no addresses to scan", ErrInvalidRequest)
	case len(r.Ports) == 0:
		return fmt.Errorf("%w: no ports to scan", ErrInvalidRequest)
	case r.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidRequest, r.Concurrency)
	case r.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidRequest, r.Timeout)
	}
	for _, p := range r.Ports {
		if p < 1 || p > 65535 {
			return fmt.Errorf("%w: port %d out of range 1-65535", ErrInvalidRequest, p)
		}
	}
	return nil
}

// Callbacks receive live feedback while a scan runs. Both are optional and
// are always invoked from the goroutine that called Run.
type Callbacks struct {
	OnProgress func(ProgressEvent)
	OnOpen     func(Target)
}

// Run scans every address × port pair in req with p and blocks until all
// dispatched probes have completed. A per-target failure never aborts the
// scan. If ctx is cancelled, dispatch stops, in-flight probes are drained
// and the partial outcome is returned with Cancelled set.
func Run(ctx context.Context, req Request, p probe.Prober, cb Callbacks) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	every := req.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	targets := Expand(req.Addresses, req.Ports)
	out := &Outcome{Total: len(targets)}
	start := time.Now()

	results := dispatch(ctx, p, targets, dispatchConfig{
		Concurrency: req.Concurrency,
		Timeout:     req.Timeout,
		Limiter:     NewLimiter(req.Rate),
		Pauser:      req.Pauser,
	})

	reported := -1
	progress := func() {
		if cb.OnProgress == nil {
			return
		}
		reported = out.Completed
		cb.OnProgress(ProgressEvent{
			Completed: out.Completed,
			Total:     out.Total,
			Open:      len(out.Open),
			Errors:    out.Errors,
			Elapsed:   time.Since(start),
		})
	}

	for res := range results {
		out.record(res)

		if res.Status == probe.Open && cb.OnOpen != nil {
			cb.OnOpen(res.Target)
		}
		if out.Completed%every == 0 || out.Completed == out.Total {
			progress()
		}
	}

	out.Elapsed = time.Since(start)
	out.Cancelled = out.Completed < out.Total
	// A cancelled scan still gets one event with the final counts.
	if out.Cancelled && reported != out.Completed {
		progress()
	}
	return out, nil
}
