package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/maxvaer/netsweep/internal/scanner"
)

// PrintTree renders open ports grouped by host, hosts in address order.
//
//	Open ports by host:
//	  10.0.0.1
//	  ├── 22
//	  └── 80
func PrintTree(w io.Writer, results []scanner.Result) {
	if len(results) == 0 {
		return
	}

	byHost := make(map[string][]int)
	var hosts []string
	for _, r := range results {
		addr := r.Target.Address
		if _, ok := byHost[addr]; !ok {
			hosts = append(hosts, addr)
		}
		byHost[addr] = append(byHost[addr], r.Target.Port)
	}
	sort.Slice(hosts, func(i, j int) bool { return compareAddr(hosts[i], hosts[j]) < 0 })

	fmt.Fprintf(w, "\n  Open ports by host:\n")
	for _, h := range hosts {
		ports := byHost[h]
		sort.Ints(ports)
		fmt.Fprintf(w, "  %s\n", h)
		for i, p := range ports {
			connector := "├── "
			if i == len(ports)-1 {
				connector = "└── "
			}
			fmt.Fprintf(w, "  %s%d\n", connector, p)
		}
	}
}
