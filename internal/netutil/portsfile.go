package netutil

import (
	"fmt"
	"os"
	"strings"
)

// LoadPortsFile reads port specs from path, one per line. Blank lines and
// lines starting with # are skipped; trailing "# ..." comments are dropped.
func LoadPortsFile(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ports file %s: %w", path, err)
	}

	var ports []int
	for n, line := range strings.Split(string(data), "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ps, err := ParseRange(line, MinPort, MaxPort)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, n+1, err)
		}
		ports = append(ports, ps...)
	}
	if len(ports) == 0 {
		return nil, fmt.Errorf("%w: no ports in %s", ErrInvalidRange, path)
	}
	return ports, nil
}
