package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPauserWaitNotPaused(t *testing.T) {
	p := NewPauser()
	done := make(chan error)
	go func() { done <- p.Wait(context.Background()) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait() blocked when not paused")
	}
}

func TestPauserToggle(t *testing.T) {
	p := NewPauser()
	require.False(t, p.IsPaused())

	assert.True(t, p.Toggle(), "Toggle should report paused")
	assert.True(t, p.IsPaused())

	assert.False(t, p.Toggle(), "Toggle should report resumed")
	assert.False(t, p.IsPaused())
}

func TestPauserBlocksAndResumes(t *testing.T) {
	p := NewPauser()
	p.Toggle()

	var reached atomic.Int32
	var wg sync.WaitGroup
	n := 5
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reached.Add(1)
			_ = p.Wait(context.Background())
		}()
	}

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(n), reached.Load())

	p.Toggle()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutines did not unblock after resume")
	}
}

func TestPauserWaitHonorsCancel(t *testing.T) {
	p := NewPauser()
	p.Toggle()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() { done <- p.Wait(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Wait() ignored cancellation")
	}
	assert.True(t, p.IsPaused())
}

func TestPauserDuration(t *testing.T) {
	p := NewPauser()

	p.Toggle()
	time.Sleep(50 * time.Millisecond)
	p.Toggle()

	p.Toggle()
	time.Sleep(50 * time.Millisecond)
	p.Toggle()

	total := p.PausedDuration()
	assert.GreaterOrEqual(t, total, 80*time.Millisecond)
	assert.Less(t, total, 300*time.Millisecond)
}

func TestPauserConcurrent(t *testing.T) {
	p := NewPauser()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = p.Wait(context.Background())
			}
		}()
	}

	go func() {
		for i := 0; i < 10; i++ {
			p.Toggle()
			time.Sleep(5 * time.Millisecond)
		}
		if p.IsPaused() {
			p.Toggle()
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent test timed out")
	}
}

func TestPauserPauseResumeIdempotent(t *testing.T) {
	p := NewPauser()
	assert.False(t, p.Resume(), "resume while running is a no-op")
	assert.True(t, p.Pause())
	assert.False(t, p.Pause(), "second pause is a no-op")
	assert.True(t, p.IsPaused())
	assert.True(t, p.Resume())
	assert.False(t, p.IsPaused())
}
