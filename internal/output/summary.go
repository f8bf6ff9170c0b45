package output

import (
	"fmt"
	"io"
	"time"
)

// PrintSummary writes the end-of-scan summary block.
func PrintSummary(w io.Writer, meta Meta, stats Stats) {
	fmt.Fprintf(w, "\nScan Summary:\n")
	fmt.Fprintf(w, "  Subnet: %s\n", meta.Subnet)
	fmt.Fprintf(w, "  IP Range: %s\n", meta.IPRange)
	fmt.Fprintf(w, "  Port Range: %s\n", meta.PortRange)
	fmt.Fprintf(w, "  Open Ports Found: %d\n", stats.Open)
	fmt.Fprintf(w, "  Scans Completed: %d/%d (closed: %d, errors: %d)\n",
		stats.Completed, stats.Total, stats.Closed, stats.Errors)
	fmt.Fprintf(w, "  Total scan time: %.2f seconds (%.1f probes/s)\n",
		stats.Duration.Seconds(), stats.ProbesPerSec)
	if stats.Cancelled {
		fmt.Fprintf(w, "  Scan interrupted before completion\n")
	}
}

// PrintTimestamp writes a "<label> at: <time>" line.
func PrintTimestamp(w io.Writer, label string, t time.Time) {
	fmt.Fprintf(w, "%s at: %s\n", label, t.Format(TimestampLayout))
}
