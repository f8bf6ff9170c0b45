package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/maxvaer/netsweep/internal/scanner"
)

const (
	// Timeout bounds a single hook invocation.
	Timeout = 30 * time.Second
	// DefaultConcurrency caps hook processes running at once.
	DefaultConcurrency = 4
)

// payload is the JSON document sent to the hook command via stdin.
type payload struct {
	ScanID  string `json:"scan_id,omitempty"`
	Address string `json:"address"`
	Port    int    `json:"port"`
	Target  string `json:"target"`
}

// Runner executes a shell command for each open target. Commands run in
// the background, at most limit at a time, so a slow hook never stalls
// result collection; call Wait before exiting.
type Runner struct {
	cmd    string
	scanID string
	quiet  bool
	stderr io.Writer
	sem    *semaphore.Weighted
	wg     sync.WaitGroup

	exec func(ctx context.Context, t scanner.Target)
}

// NewRunner creates a hook runner. cmd is the shell command to execute and
// limit the number of hook processes allowed at once (< 1 means
// DefaultConcurrency).
func NewRunner(cmd, scanID string, limit int, quiet bool) *Runner {
	if limit < 1 {
		limit = DefaultConcurrency
	}
	r := &Runner{
		cmd:    cmd,
		scanID: scanID,
		quiet:  quiet,
		stderr: os.Stderr,
		sem:    semaphore.NewWeighted(int64(limit)),
	}
	r.exec = r.run
	return r
}

// Run queues the hook command for t with the target as JSON on stdin.
// Cancelling ctx drops queued hooks and kills running ones. Errors are
// reported but never halt the scan.
func (r *Runner) Run(ctx context.Context, t scanner.Target) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer r.sem.Release(1)
		if ctx.Err() != nil {
			return
		}
		r.exec(ctx, t)
	}()
}

// Wait blocks until every started hook has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, t scanner.Target) {
	data, err := json.Marshal(payload{
		ScanID:  r.scanID,
		Address: t.Address,
		Port:    t.Port,
		Target:  t.String(),
	})
	if err != nil {
		fmt.Fprintf(r.stderr, "[hook] marshal error: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	shell, args := shellCommand()
	cmd := exec.CommandContext(ctx, shell, append(args, Expand(r.cmd, t))...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stderr = r.stderr
	// Children of the shell may keep the output pipe open after a kill.
	cmd.WaitDelay = time.Second

	out, err := cmd.Output()
	if err != nil {
		if !r.quiet && !errors.Is(ctx.Err(), context.Canceled) {
			fmt.Fprintf(r.stderr, "[hook] %s: error: %v\n", t, err)
		}
		return
	}
	if len(out) > 0 && !r.quiet {
		fmt.Fprintf(r.stderr, "[hook] %s", out)
	}
}

// Expand replaces {address}, {port} and {target} placeholders in cmd.
func Expand(cmd string, t scanner.Target) string {
	cmd = strings.ReplaceAll(cmd, "{address}", t.Address)
	cmd = strings.ReplaceAll(cmd, "{port}", strconv.Itoa(t.Port))
	cmd = strings.ReplaceAll(cmd, "{target}", t.String())
	return cmd
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}
