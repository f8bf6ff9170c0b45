package probe

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
)

// Status classifies the outcome of a single connect attempt.
type Status int

const (
	// Error covers timeouts, resolution failures and any other transport
	// failure. Callers treat it exactly like Closed.
	Error Status = iota
	// Closed means the remote host actively refused the connection.
	Closed
	// Open means the TCP handshake completed before the timeout.
	Open
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "error"
	}
}

// Result is the classified outcome of one probe. Err is kept for
// diagnostics only and never changes control flow.
type Result struct {
	Status Status
	RTT    time.Duration
	Err    error
}

// Prober performs a single connect attempt against address:port.
type Prober interface {
	Probe(address string, port int, timeout time.Duration) Result
}

// ProberFunc adapts a plain function to the Prober interface.
type ProberFunc func(address string, port int, timeout time.Duration) Result

func (f ProberFunc) Probe(address string, port int, timeout time.Duration) Result {
	return f(address, port, timeout)
}

// Dialer opens a connection bounded by its own timeout.
type Dialer interface {
	DialTimeout(network, address string, timeout time.Duration) (net.Conn, error)
}

type netDialer struct{}

func (netDialer) DialTimeout(network, address string, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	return d.Dial(network, address)
}

// TCP is a connect-scan prober. The zero value dials with the standard
// library and discards diagnostic logs.
type TCP struct {
	Dialer Dialer
	Logger *slog.Logger
}

// NewTCP returns a TCP prober that logs diagnostics to logger.
func NewTCP(logger *slog.Logger) *TCP {
	return &TCP{Dialer: netDialer{}, Logger: logger}
}

// Probe dials address:port once. The connection, if any, is closed before
// returning on every path.
func (p *TCP) Probe(address string, port int, timeout time.Duration) Result {
	dialer := p.Dialer
	if dialer == nil {
		dialer = netDialer{}
	}
	logger := p.Logger
	if logger == nil {
		logger = discardLogger
	}

	addr := net.JoinHostPort(address, strconv.Itoa(port))
	start := time.Now()
	conn, err := dialer.DialTimeout("tcp", addr, timeout)
	rtt := time.Since(start)
	if conn != nil {
		defer func() {
			if cerr := conn.Close(); cerr != nil {
				logger.Debug("close failed", "target", addr, "error", cerr)
			}
		}()
	}

	status := Classify(err)
	if err != nil {
		logger.Debug("probe failed", "target", addr, "status", status.String(), "error", err)
	}
	return Result{Status: status, RTT: rtt, Err: err}
}

// Classify maps a dial error to a Status.
func Classify(err error) Status {
	if err == nil {
		return Open
	}
	for _, errno := range refusedErrnos {
		if errors.Is(err, errno) {
			return Closed
		}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Error
	}
	// Some platforms surface refusals without a matching errno.
	if strings.Contains(err.Error(), "connection refused") {
		return Closed
	}
	return Error
}

var defaultProber = &TCP{}

// ProbeOne performs a single connect attempt with the default dialer.
func ProbeOne(address string, port int, timeout time.Duration) Status {
	return defaultProber.Probe(address, port, timeout).Status
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
