package runner

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/maxvaer/netsweep/internal/scanner"
)

// startStdinToggle puts the terminal in raw mode and toggles a Pauser on
// Enter or Space. When stdin is not a terminal it returns a nil pauser,
// which the scanner treats as never paused.
func startStdinToggle(w io.Writer, quiet bool) (*scanner.Pauser, func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		if !quiet {
			fmt.Fprintf(w, "[!] Could not enable raw terminal: %v\n", err)
		}
		return nil, func() {}
	}
	// Raw mode also disables OPOST; output still needs \n -> \r\n.
	fixOutputProcessing(fd)

	pauser := scanner.NewPauser()
	if !quiet {
		fmt.Fprintf(w, "[*] Press Enter or Space to pause/resume\n")
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}

			switch buf[0] {
			case 0x03: // Ctrl+C
				_ = term.Restore(fd, oldState)
				sendInterrupt()
				return
			case '\r', '\n', ' ':
				paused := pauser.Toggle()
				if quiet {
					continue
				}
				if paused {
					fmt.Fprintf(w, "\r\033[K[*] Scan paused, press Enter or Space to resume\n")
				} else {
					fmt.Fprintf(w, "\r\033[K[*] Scan resumed\n")
				}
			}
		}
	}()

	return pauser, func() { _ = term.Restore(fd, oldState) }
}
