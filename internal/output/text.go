package output

import (
	"fmt"
	"io"

	"github.com/maxvaer/netsweep/internal/scanner"
)

// TimestampLayout is used for every human-readable timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// TextWriter writes the plain result file: two comment lines, a blank
// line, then one "address,port" line per open target.
type TextWriter struct {
	w     io.Writer
	count int
}

// NewTextWriter creates a text report writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

func (t *TextWriter) WriteHeader(meta Meta) error {
	_, err := fmt.Fprintf(t.w, "# Network Scan Results - %s\n# Subnet: %s, IP Range: %s, Port Range: %s\n\n",
		meta.Generated.Format(TimestampLayout), meta.Subnet, meta.IPRange, meta.PortRange)
	return err
}

func (t *TextWriter) WriteResult(result *scanner.Result) error {
	t.count++
	_, err := fmt.Fprintf(t.w, "%s,%d\n", result.Target.Address, result.Target.Port)
	return err
}

func (t *TextWriter) WriteFooter(_ Stats) error {
	if t.count > 0 {
		return nil
	}
	_, err := fmt.Fprintln(t.w, "# No open ports found")
	return err
}
