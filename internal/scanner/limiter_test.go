package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiterUnlimited(t *testing.T) {
	l := NewLimiter(0)
	assert.Nil(t, l)
	assert.NoError(t, l.Wait(context.Background()))
}

func TestLimiterPacesDispatch(t *testing.T) {
	l := NewLimiter(20)
	require.NotNil(t, l)

	start := time.Now()
	for i := 0; i < 30; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	// 20 burst tokens, then 10 more at 20/s.
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}

func TestLimiterWaitCancelled(t *testing.T) {
	l := NewLimiter(1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestRunAppliesRateLimit(t *testing.T) {
	m := newMockProber(openOnly())
	start := time.Now()
	out, err := Run(context.Background(), Request{
		Addresses:   []string{"10.0.0.1"},
		Ports:       []int{1, 2, 3, 4, 5, 6},
		Timeout:     time.Second,
		Concurrency: 6,
		Rate:        2,
	}, m, Callbacks{})
	require.NoError(t, err)
	assert.Equal(t, 6, out.Completed)
	// burst of 2, then 4 more at 2/s.
	assert.GreaterOrEqual(t, time.Since(start), 1500*time.Millisecond)
}
