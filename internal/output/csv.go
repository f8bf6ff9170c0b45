package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/maxvaer/netsweep/internal/scanner"
)

// CSVWriter writes results in CSV format.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter creates a CSV report writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (c *CSVWriter) WriteHeader(_ Meta) error {
	return c.w.Write([]string{"address", "port", "rtt_ms"})
}

func (c *CSVWriter) WriteResult(result *scanner.Result) error {
	return c.w.Write([]string{
		result.Target.Address,
		strconv.Itoa(result.Target.Port),
		strconv.FormatInt(result.RTT.Milliseconds(), 10),
	})
}

func (c *CSVWriter) WriteFooter(_ Stats) error {
	c.w.Flush()
	return c.w.Error()
}
