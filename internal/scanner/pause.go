package scanner

import (
	"context"
	"sync"
	"time"
)

// Pauser is a cooperative pause/resume gate for the dispatch loop.
// When not paused, Wait costs a mutex lock and a bool check.
type Pauser struct {
	mu          sync.Mutex
	cond        *sync.Cond
	paused      bool
	pausedSince time.Time
	totalPaused time.Duration
}

// NewPauser creates a Pauser in the running (unpaused) state.
func NewPauser() *Pauser {
	p := &Pauser{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Wait blocks while the scan is paused. It returns ctx.Err() if the
// context ends first, so an interrupt still gets through a pause.
func (p *Pauser) Wait(ctx context.Context) error {
	p.mu.Lock()
	if !p.paused {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	for p.paused {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.cond.Wait()
	}
	return nil
}

// Pause stops dispatch until Resume. It reports whether the state changed.
func (p *Pauser) Pause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return false
	}
	p.paused = true
	p.pausedSince = time.Now()
	return true
}

// Resume releases every dispatcher blocked in Wait. It reports whether the
// state changed.
func (p *Pauser) Resume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return false
	}
	p.totalPaused += time.Since(p.pausedSince)
	p.paused = false
	p.cond.Broadcast()
	return true
}

// Toggle flips the state and returns true if the scan is now paused.
func (p *Pauser) Toggle() bool {
	if p.Resume() {
		return false
	}
	p.Pause()
	return true
}

// IsPaused returns whether the scan is currently paused.
func (p *Pauser) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// PausedDuration returns the total time spent paused, including any
// ongoing pause.
func (p *Pauser) PausedDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.totalPaused
	if p.paused {
		d += time.Since(p.pausedSince)
	}
	return d
}
