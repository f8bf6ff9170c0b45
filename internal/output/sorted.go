package output

import (
	"net/netip"
	"sort"

	"github.com/maxvaer/netsweep/internal/scanner"
)

// SortedWriter buffers results and replays them sorted when WriteFooter
// is called. It wraps any other Writer.
type SortedWriter struct {
	inner   Writer
	sortBy  string
	results []*scanner.Result
}

// NewSortedWriter wraps inner and buffers results for sorted replay.
// sortBy is "address" (address, then port) or "port" (port, then address).
func NewSortedWriter(inner Writer, sortBy string) *SortedWriter {
	return &SortedWriter{inner: inner, sortBy: sortBy}
}

func (w *SortedWriter) WriteHeader(meta Meta) error {
	return w.inner.WriteHeader(meta)
}

func (w *SortedWriter) WriteResult(result *scanner.Result) error {
	cpy := *result
	w.results = append(w.results, &cpy)
	return nil
}

func (w *SortedWriter) WriteFooter(stats Stats) error {
	sort.SliceStable(w.results, func(i, j int) bool {
		a, b := w.results[i].Target, w.results[j].Target
		switch w.sortBy {
		case "port":
			if a.Port != b.Port {
				return a.Port < b.Port
			}
			return compareAddr(a.Address, b.Address) < 0
		case "address":
			if c := compareAddr(a.Address, b.Address); c != 0 {
				return c < 0
			}
			return a.Port < b.Port
		default:
			return false
		}
	})
	for _, r := range w.results {
		if err := w.inner.WriteResult(r); err != nil {
			return err
		}
	}
	return w.inner.WriteFooter(stats)
}

// compareAddr orders IP literals numerically and falls back to string
// order for hostnames.
func compareAddr(a, b string) int {
	ipA, errA := netip.ParseAddr(a)
	ipB, errB := netip.ParseAddr(b)
	if errA == nil && errB == nil {
		return ipA.Compare(ipB)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
