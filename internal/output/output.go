package output

import (
	"fmt"
	"io"
	"time"

	"github.com/maxvaer/netsweep/internal/scanner"
)

// Meta describes the scan a report belongs to.
type Meta struct {
	ScanID    string
	Generated time.Time
	Subnet    string
	IPRange   string
	PortRange string
}

// Stats holds aggregate scan statistics.
type Stats struct {
	Total        int
	Completed    int
	Open         int
	Closed       int
	Errors       int
	Duration     time.Duration
	ProbesPerSec float64
	Cancelled    bool
}

// NewStats summarizes a scan outcome.
func NewStats(o *scanner.Outcome) Stats {
	s := Stats{
		Total:     o.Total,
		Completed: o.Completed,
		Open:      len(o.Open),
		Closed:    o.Closed,
		Errors:    o.Errors,
		Duration:  o.Elapsed,
		Cancelled: o.Cancelled,
	}
	if o.Elapsed.Seconds() > 0 {
		s.ProbesPerSec = float64(o.Completed) / o.Elapsed.Seconds()
	}
	return s
}

// Writer is implemented by each report format.
type Writer interface {
	WriteHeader(meta Meta) error
	WriteResult(result *scanner.Result) error
	WriteFooter(stats Stats) error
}

// New returns a report writer for format that writes to w.
func New(format string, w io.Writer) (Writer, error) {
	switch format {
	case "", "text":
		return NewTextWriter(w), nil
	case "json":
		return NewJSONWriter(w), nil
	case "csv":
		return NewCSVWriter(w), nil
	case "yaml":
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// Render writes a complete report of the open results in o.
func Render(w Writer, meta Meta, o *scanner.Outcome) error {
	if err := w.WriteHeader(meta); err != nil {
		return err
	}
	for i := range o.Open {
		if err := w.WriteResult(&o.Open[i]); err != nil {
			return err
		}
	}
	return w.WriteFooter(NewStats(o))
}
