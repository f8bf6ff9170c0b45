package scanner

import (
	"time"

	"github.com/maxvaer/netsweep/internal/probe"
)

// Result holds the outcome of probing a single target.
type Result struct {
	Target Target
	Status probe.Status
	RTT    time.Duration
	Err    error // diagnostic only
}

// ProgressEvent is emitted every ProgressEvery completions and on the last.
type ProgressEvent struct {
	Completed int
	Total     int
	Open      int
	Errors    int
	Elapsed   time.Duration
}

// Outcome is the aggregate of a scan. Open is in completion order.
type Outcome struct {
	Open      []Result
	Total     int
	Completed int
	Closed    int
	Errors    int
	Elapsed   time.Duration
	Cancelled bool
}

// OpenTargets returns the open targets in completion order.
func (o *Outcome) OpenTargets() []Target {
	targets := make([]Target, len(o.Open))
	for i, r := range o.Open {
		targets[i] = r.Target
	}
	return targets
}

func (o *Outcome) record(r Result) {
	o.Completed++
	switch r.Status {
	case probe.Open:
		o.Open = append(o.Open, r)
	case probe.Closed:
		o.Closed++
	default:
		o.Errors++
	}
}
