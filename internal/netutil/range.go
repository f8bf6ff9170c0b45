package netutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRange is wrapped by every ParseRange failure.
var ErrInvalidRange = errors.New("invalid range")

// Bounds for the two kinds of range the CLI accepts.
const (
	MinHost = 0
	MaxHost = 255
	MinPort = 1
	MaxPort = 65535
)

// ParseRange expands a range spec into its integers, in the order written.
// Supported forms:
//   - single: "22"
//   - list:   "22,80,443"
//   - range:  "1-1024"
//   - mixed:  "22,80,8000-8100"
//
// Duplicates are kept. Every value must lie in [lo, hi].
func ParseRange(spec string, lo, hi int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidRange)
	}

	var out []int
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, fmt.Errorf("%w: empty token in %q", ErrInvalidRange, spec)
		}

		start, end := tok, tok
		if a, b, ok := strings.Cut(tok, "-"); ok {
			start, end = a, b
		}
		first, err := parseBound(start, lo, hi)
		if err != nil {
			return nil, err
		}
		last, err := parseBound(end, lo, hi)
		if err != nil {
			return nil, err
		}
		if first > last {
			return nil, fmt.Errorf("%w: start greater than end in %q", ErrInvalidRange, tok)
		}
		for i := first; i <= last; i++ {
			out = append(out, i)
		}
	}
	return out, nil
}

func parseBound(s string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidRange, s)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%w: %d outside %d-%d", ErrInvalidRange, v, lo, hi)
	}
	return v, nil
}

// NormalizeSubnet makes sure a subnet prefix ends in a dot, so "10.0.0"
// and "10.0.0." both join with suffixes as "10.0.0.N".
func NormalizeSubnet(subnet string) string {
	subnet = strings.TrimSpace(subnet)
	if !strings.HasSuffix(subnet, ".") {
		subnet += "."
	}
	return subnet
}
