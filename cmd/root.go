package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maxvaer/netsweep/internal/config"
	"github.com/maxvaer/netsweep/internal/runner"
	"github.com/maxvaer/netsweep/internal/updater"
	"github.com/maxvaer/netsweep/pkg/version"
)

var (
	opts       *config.Options
	cfgFile    string
	updateFlag bool
)

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"subnet", "ip-range", "cidr", "port-range", "ports-file"}},
	{"PERFORMANCE", []string{"threads", "timeout", "rate"}},
	{"OUTPUT", []string{"output", "format", "sort", "quiet", "no-color", "verbose", "tree", "progress-every", "on-open"}},
	{"CONFIGURATION", []string{"config"}},
	{"UPDATE", []string{"update"}},
}

var rootCmd = &cobra.Command{
	Use:     "netsweep [flags]",
	Short:   "Concurrent TCP connect scanner for local subnets",
	Version: version.Version,
	Long: `netsweep sweeps a range of hosts and ports with full TCP connects and
reports which ports accept connections. Open ports are printed as they are
found; press Enter or Space to pause and resume a running scan.`,
	Example: `  netsweep
  netsweep -s 10.0.0. -i 1-50 -p 22,80,443
  netsweep --cidr 172.16.0.0/24 -p 1-1024 -w 200 -t 250ms
  netsweep -p 1-65535 --rate 500 -o results.json --format json
  netsweep --ports-file top-ports.txt --on-open "notify-send {target}"
  netsweep --config scan.yaml`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if updateFlag {
			return nil
		}
		v, err := config.NewViper(cfgFile)
		if err != nil {
			return err
		}
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		opts, err = config.Load(v)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if updateFlag {
			return updater.Update(cmd.Context())
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.Run(ctx, opts)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	d := config.Defaults()
	f := rootCmd.Flags()

	// Target
	f.StringP("subnet", "s", d.Subnet, "Subnet prefix to scan")
	f.StringP("ip-range", "i", d.IPRange, "Host suffixes to scan (e.g. 1-255 or 1,2,3,4)")
	f.String("cidr", "", "CIDR range or single IP to scan instead of --subnet/--ip-range")
	f.StringP("port-range", "p", d.PortRange, "Ports to scan (e.g. 1-1024 or 22,80,443)")
	f.String("ports-file", "", "File with one port spec per line, replaces --port-range")

	// Performance
	f.IntP("threads", "w", d.Threads, "Maximum concurrent probes")
	f.VarP(newTimeoutValue(d.Timeout), "timeout", "t", "Connect timeout, seconds (0.5) or duration (500ms)")
	f.Float64("rate", 0, "Maximum probes per second (0 = unlimited)")

	// Output
	f.StringP("output", "o", "", "Write results to this file")
	f.String("format", d.OutputFormat, "Output format: text, json, csv, yaml")
	f.String("sort", "", "Sort results in the output file: address, port")
	f.BoolP("quiet", "q", false, "Minimal output")
	f.Bool("no-color", false, "Disable colored output")
	f.BoolP("verbose", "v", false, "Log per-probe diagnostics to stderr")
	f.Bool("tree", false, "Print open ports grouped by host after the scan")
	f.Int("progress-every", d.ProgressEvery, "Completed probes between progress updates")

	// Hooks
	f.String("on-open", "", "Shell command to run for each open port ({address}, {port}, {target}; JSON on stdin)")

	f.StringVar(&cfgFile, "config", "", "YAML config file (flags and NETSWEEP_* env override it)")
	f.BoolVar(&updateFlag, "update", false, "Update netsweep to the latest version")

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, runner.Logo(cmd.Version))
		fmt.Fprintf(w, "\n%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})
}

// Execute runs the root command and maps errors to exit codes.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, runner.ErrInterrupted) {
			fmt.Fprintln(os.Stderr, "\n[!] Scan interrupted by user")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// timeoutValue is a pflag.Value that accepts bare seconds as well as Go
// durations. String renders the canonical duration so viper can decode it.
type timeoutValue time.Duration

func newTimeoutValue(d time.Duration) *timeoutValue {
	v := timeoutValue(d)
	return &v
}

func (t *timeoutValue) String() string { return time.Duration(*t).String() }

func (t *timeoutValue) Set(s string) error {
	d, err := config.ParseTimeout(s)
	if err != nil {
		return err
	}
	*t = timeoutValue(d)
	return nil
}

func (t *timeoutValue) Type() string { return "duration" }

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	const col = 32
	if len(left) < col {
		left += strings.Repeat(" ", col-len(left))
	}

	right := f.Usage
	switch def := f.DefValue; def {
	case "", "false", "0", "0s":
	default:
		right += fmt.Sprintf(" (default %s)", def)
	}
	return "   " + left + right
}
