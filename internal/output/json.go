package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/maxvaer/netsweep/internal/scanner"
)

type reportEntry struct {
	Address string `json:"address" yaml:"address"`
	Port    int    `json:"port" yaml:"port"`
	RTTms   int64  `json:"rtt_ms" yaml:"rtt_ms"`
}

type reportStats struct {
	Total      int     `json:"total" yaml:"total"`
	Completed  int     `json:"completed" yaml:"completed"`
	Open       int     `json:"open" yaml:"open"`
	Closed     int     `json:"closed" yaml:"closed"`
	Errors     int     `json:"errors" yaml:"errors"`
	DurationMs int64   `json:"duration_ms" yaml:"duration_ms"`
	Rate       float64 `json:"probes_per_sec" yaml:"probes_per_sec"`
	Cancelled  bool    `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
}

// report is the document shared by the JSON and YAML writers.
type report struct {
	ScanID    string        `json:"scan_id" yaml:"scan_id"`
	Generated time.Time     `json:"generated" yaml:"generated"`
	Subnet    string        `json:"subnet" yaml:"subnet"`
	IPRange   string        `json:"ip_range" yaml:"ip_range"`
	PortRange string        `json:"port_range" yaml:"port_range"`
	Open      []reportEntry `json:"open" yaml:"open"`
	Stats     reportStats   `json:"stats" yaml:"stats"`
}

func (r *report) header(meta Meta) {
	r.ScanID = meta.ScanID
	r.Generated = meta.Generated
	r.Subnet = meta.Subnet
	r.IPRange = meta.IPRange
	r.PortRange = meta.PortRange
	r.Open = []reportEntry{}
}

func (r *report) add(result *scanner.Result) {
	r.Open = append(r.Open, reportEntry{
		Address: result.Target.Address,
		Port:    result.Target.Port,
		RTTms:   result.RTT.Milliseconds(),
	})
}

func (r *report) footer(stats Stats) {
	r.Stats = reportStats{
		Total:      stats.Total,
		Completed:  stats.Completed,
		Open:       stats.Open,
		Closed:     stats.Closed,
		Errors:     stats.Errors,
		DurationMs: stats.Duration.Milliseconds(),
		Rate:       stats.ProbesPerSec,
		Cancelled:  stats.Cancelled,
	}
}

// JSONWriter buffers results and writes a single JSON document.
type JSONWriter struct {
	w   io.Writer
	doc report
}

// NewJSONWriter creates a JSON report writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

func (j *JSONWriter) WriteHeader(meta Meta) error {
	j.doc.header(meta)
	return nil
}

func (j *JSONWriter) WriteResult(result *scanner.Result) error {
	j.doc.add(result)
	return nil
}

func (j *JSONWriter) WriteFooter(stats Stats) error {
	j.doc.footer(stats)
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.doc)
}
