package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maxvaer/netsweep/internal/config"
	"github.com/maxvaer/netsweep/internal/hook"
	"github.com/maxvaer/netsweep/internal/netutil"
	"github.com/maxvaer/netsweep/internal/output"
	"github.com/maxvaer/netsweep/internal/probe"
	"github.com/maxvaer/netsweep/internal/scanner"
	"github.com/maxvaer/netsweep/pkg/version"
)

// ErrInterrupted is returned when the scan was stopped by the user. The
// partial results have already been reported.
var ErrInterrupted = errors.New("scan interrupted by user")

// Run executes the full scan pipeline: resolve targets, scan, print the
// summary and write the optional report file.
func Run(ctx context.Context, opts *config.Options) error {
	r := &runner{
		opts:   opts,
		stdout: os.Stdout,
		stderr: os.Stderr,
		prober: probe.NewTCP(newLogger(os.Stderr, opts.Verbose)),
	}
	return r.run(ctx)
}

type runner struct {
	opts   *config.Options
	stdout io.Writer
	stderr io.Writer
	prober probe.Prober
}

// plan is the fully parsed scan input.
type plan struct {
	addresses []string
	ports     []int
	subnet    string
	ipRange   string
	portRange string
}

func (r *runner) run(ctx context.Context) error {
	opts := r.opts

	p, err := resolveTargets(opts)
	if err != nil {
		return err
	}

	meta := output.Meta{
		ScanID:    uuid.NewString(),
		Subnet:    p.subnet,
		IPRange:   p.ipRange,
		PortRange: p.portRange,
	}
	total := len(p.addresses) * len(p.ports)

	if !opts.Quiet {
		printBanner(r.stderr, opts, p, meta.ScanID)
	}

	pauser, restore := startStdinToggle(r.stderr, opts.Quiet)
	defer restore()

	var hooks *hook.Runner
	if opts.OnOpenCmd != "" {
		hooks = hook.NewRunner(opts.OnOpenCmd, meta.ScanID, hook.DefaultConcurrency, opts.Quiet)
	}

	progress := output.NewProgress(r.stderr, opts.Quiet)

	started := time.Now()
	if !opts.Quiet {
		fmt.Fprintf(r.stderr, "[*] Starting scan of %d IPs across %d ports (%d total scans)\n",
			len(p.addresses), len(p.ports), total)
		output.PrintTimestamp(r.stderr, "[*] Scan started", started)
	}

	outcome, err := scanner.Run(ctx, scanner.Request{
		Addresses:     p.addresses,
		Ports:         p.ports,
		Timeout:       opts.Timeout,
		Concurrency:   opts.Threads,
		ProgressEvery: opts.ProgressEvery,
		Rate:          opts.Rate,
		Pauser:        pauser,
	}, r.prober, scanner.Callbacks{
		OnProgress: progress.Update,
		OnOpen: func(t scanner.Target) {
			progress.ClearLine()
			fmt.Fprintf(r.stdout, "[+] Found open port: %s | Port %d is open\n", t.Address, t.Port)
			progress.Redraw()
			if hooks != nil {
				hooks.Run(ctx, t)
			}
		},
	})
	progress.Stop()
	if err != nil {
		return err
	}
	if hooks != nil {
		hooks.Wait()
	}

	meta.Generated = time.Now()
	stats := output.NewStats(outcome)

	if !opts.Quiet {
		output.PrintTimestamp(r.stderr, "[*] Scan completed", meta.Generated)
		if pauser != nil && pauser.PausedDuration() > 0 {
			fmt.Fprintf(r.stderr, "[*] Paused for %s\n", pauser.PausedDuration().Round(time.Millisecond))
		}
		output.PrintSummary(r.stdout, meta, stats)
		if opts.Tree {
			output.PrintTree(r.stdout, outcome.Open)
		}
	}

	if opts.OutputFile != "" {
		if err := r.saveReport(meta, outcome); err != nil {
			fmt.Fprintf(r.stderr, "[!] Error saving results to file: %v\n", err)
			return fmt.Errorf("saving results: %w", err)
		}
		if !opts.Quiet {
			fmt.Fprintf(r.stderr, "[+] Results saved to %s\n", opts.OutputFile)
		}
	}

	if outcome.Cancelled && ctx.Err() != nil {
		return ErrInterrupted
	}
	return nil
}

// saveReport renders the full report in memory and then writes it
// atomically, so a failed write never leaves a truncated file.
func (r *runner) saveReport(meta output.Meta, outcome *scanner.Outcome) error {
	var buf bytes.Buffer
	w, err := output.New(r.opts.OutputFormat, &buf)
	if err != nil {
		return err
	}
	if r.opts.SortBy != "" {
		w = output.NewSortedWriter(w, r.opts.SortBy)
	}
	if err := output.Render(w, meta, outcome); err != nil {
		return err
	}
	return output.WriteAtomic(r.opts.OutputFile, buf.Bytes())
}

// resolveTargets turns the subnet/CIDR and range specs into address and
// port lists.
func resolveTargets(opts *config.Options) (*plan, error) {
	p := &plan{}

	if opts.CIDR != "" {
		addrs, err := netutil.ExpandCIDR(opts.CIDR)
		if err != nil {
			return nil, fmt.Errorf("expanding CIDR: %w", err)
		}
		p.addresses = addrs
		p.subnet = opts.CIDR
		p.ipRange = "all hosts"
	} else {
		subnet := netutil.NormalizeSubnet(opts.Subnet)
		suffixes, err := netutil.ParseRange(opts.IPRange, netutil.MinHost, netutil.MaxHost)
		if err != nil {
			return nil, fmt.Errorf("invalid IP range %q, use '1-255' or '1,2,3,4': %w", opts.IPRange, err)
		}
		p.addresses = scanner.SubnetAddresses(subnet, suffixes)
		p.subnet = subnet
		p.ipRange = opts.IPRange
	}

	if opts.PortsFile != "" {
		ports, err := netutil.LoadPortsFile(opts.PortsFile)
		if err != nil {
			return nil, err
		}
		p.ports = ports
		p.portRange = "file " + opts.PortsFile
	} else {
		ports, err := netutil.ParseRange(opts.PortRange, netutil.MinPort, netutil.MaxPort)
		if err != nil {
			return nil, fmt.Errorf("invalid port range %q, use '1-1024' or '22,80,443': %w", opts.PortRange, err)
		}
		p.ports = ports
		p.portRange = opts.PortRange
	}
	return p, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logo is the ASCII banner shared with the help output.
func Logo(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
                 __
   ____  ___  / /________      _____  ___  ____
  / __ \/ _ \/ __/ ___/ | /| / / _ \/ _ \/ __ \
 / / / /  __/ /_(__  )| |/ |/ /  __/  __/ /_/ /
/_/ /_/\___/\__/____/ |__/|__/\___/\___/ .___/
                                      /_/   %s
`, ver)
}

func printBanner(w io.Writer, opts *config.Options, p *plan, scanID string) {
	const (
		cyan   = "\033[36m"
		white  = "\033[97m"
		dim    = "\033[2m"
		yellow = "\033[33m"
		reset  = "\033[0m"
	)

	c, wh, d, y, rs := cyan, white, dim, yellow, reset
	if opts.NoColor {
		c, wh, d, y, rs = "", "", "", "", ""
	}

	fmt.Fprintf(w, "%s%s%s\n", c, Logo(version.Version), rs)

	rate := "unlimited"
	if opts.Rate > 0 {
		rate = fmt.Sprintf("%.0f probes/s", opts.Rate)
	}

	fmt.Fprintf(w, "%s  ──────────────────────────────────────%s\n", d, rs)
	fmt.Fprintf(w, "  %sSubnet:%s       %s%s%s\n", d, rs, wh, p.subnet, rs)
	fmt.Fprintf(w, "  %sIP Range:%s     %s%s%s\n", d, rs, wh, p.ipRange, rs)
	fmt.Fprintf(w, "  %sPort Range:%s   %s%s%s\n", d, rs, wh, p.portRange, rs)
	fmt.Fprintf(w, "  %sThreads:%s      %s%d%s\n", d, rs, y, opts.Threads, rs)
	fmt.Fprintf(w, "  %sTimeout:%s      %s%s%s\n", d, rs, y, opts.Timeout, rs)
	fmt.Fprintf(w, "  %sRate:%s         %s%s%s\n", d, rs, y, rate, rs)
	fmt.Fprintf(w, "  %sScan ID:%s      %s%s%s\n", d, rs, d, scanID, rs)
	fmt.Fprintf(w, "%s  ──────────────────────────────────────%s\n\n", d, rs)
}
