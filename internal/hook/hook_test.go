package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxvaer/netsweep/internal/scanner"
)

func TestExpand(t *testing.T) {
	target := scanner.Target{Address: "10.0.0.1", Port: 8080}
	got := Expand("notify {address} {port} {target}", target)
	assert.Equal(t, "notify 10.0.0.1 8080 10.0.0.1:8080", got)
}

func TestRunnerPipesPayload(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	out := filepath.Join(t.TempDir(), "hook.json")

	r := NewRunner("cat > "+out, "scan-1", 1, true)
	r.Run(context.Background(), scanner.Target{Address: "127.0.0.1", Port: 22})
	r.Wait()

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var p payload
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, payload{ScanID: "scan-1", Address: "127.0.0.1", Port: 22, Target: "127.0.0.1:22"}, p)
}

func TestRunnerFailureIsReported(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	var stderr bytes.Buffer
	r := NewRunner("exit 3", "", 1, false)
	r.stderr = &stderr
	r.Run(context.Background(), scanner.Target{Address: "127.0.0.1", Port: 22})
	r.Wait()

	assert.Contains(t, stderr.String(), "[hook] 127.0.0.1:22: error")
}

func TestRunnerBoundsConcurrentHooks(t *testing.T) {
	const limit = 3
	r := NewRunner("unused", "", limit, true)

	var active, peak, calls atomic.Int32
	r.exec = func(ctx context.Context, _ scanner.Target) {
		calls.Add(1)
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		active.Add(-1)
	}

	for i := 0; i < 50; i++ {
		r.Run(context.Background(), scanner.Target{Address: "10.0.0.1", Port: i + 1})
	}
	r.Wait()

	assert.Equal(t, int32(50), calls.Load())
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestRunnerCancelDropsQueuedHooks(t *testing.T) {
	r := NewRunner("unused", "", 1, true)

	release := make(chan struct{})
	var started atomic.Int32
	var once sync.Once
	firstRunning := make(chan struct{})
	r.exec = func(ctx context.Context, _ scanner.Target) {
		started.Add(1)
		once.Do(func() { close(firstRunning) })
		select {
		case <-ctx.Done():
		case <-release:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 10; i++ {
		r.Run(ctx, scanner.Target{Address: "10.0.0.1", Port: i + 1})
	}
	<-firstRunning
	cancel()

	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("Wait did not return after cancel")
	}
	assert.Equal(t, int32(1), started.Load(), "queued hooks must not start after cancel")
}

func TestRunnerCancelKillsRunningHook(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	r := NewRunner("sleep 10", "", 1, true)

	ctx, cancel := context.WithCancel(context.Background())
	r.Run(ctx, scanner.Target{Address: "127.0.0.1", Port: 22})
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	cancel()
	r.Wait()
	assert.Less(t, time.Since(start), 5*time.Second)
}
