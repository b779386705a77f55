// Package printer delivers encoded receipts to ESC/POS devices over raw
// sockets and serial lines
package printer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/possuite/print-bridge/internal/encoder"
	"github.com/possuite/print-bridge/pkg/receipt"
)

// DialTimeout bounds both connection establishment and the write
const DialTimeout = 5 * time.Second

// attemptState tracks how far a print attempt got. A failure is classified
// by the state it interrupted: before a session exists it is a connection
// problem, after one exists it is a transport problem. Deadline expiry wins
// over both. Each attempt resolves exactly once.
type attemptState int

const (
	stateConnecting attemptState = iota
	stateConnected
	stateResolved
)

// Transport performs single-shot deliveries. Connections are per-call and
// torn down after every outcome; retry policy belongs to the caller.
type Transport struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewTransport creates a transport with the default timeout
func NewTransport(logger *slog.Logger) *Transport {
	return &Transport{
		timeout: DialTimeout,
		logger:  logger,
	}
}

// Send encodes the payload and delivers it to the printer at ip:port.
// Validation failures surface as ErrInvalidRequest before any socket is
// opened. A printer that accepts the stream and then closes the connection
// itself is a success; many network printers do exactly that.
func (t *Transport) Send(ctx context.Context, ip string, port int, payload *receipt.Payload) error {
	if err := validateTarget(ip, port, payload); err != nil {
		return err
	}

	addr := net.JoinHostPort(ip, strconv.Itoa(port))
	t.logger.Info("printing receipt", slog.String("printer", addr))

	return t.deliver(ctx, addr, encoder.Encode(payload))
}

// deliver writes an already-encoded stream to a TCP endpoint
func (t *Transport) deliver(ctx context.Context, addr string, data []byte) error {
	state := stateConnecting

	dialer := net.Dialer{Timeout: t.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return t.resolve(&state, addr, err)
	}
	defer conn.Close()

	state = stateConnected
	t.logger.Info("connected to printer", slog.String("printer", addr))

	_ = conn.SetDeadline(time.Now().Add(t.timeout))

	if _, err := conn.Write(data); err != nil {
		return t.resolve(&state, addr, err)
	}

	return t.resolve(&state, addr, nil)
}

// resolve produces the single terminal outcome for an attempt
func (t *Transport) resolve(state *attemptState, addr string, cause error) error {
	if *state == stateResolved {
		return nil
	}
	at := *state
	*state = stateResolved

	if cause == nil {
		t.logger.Info("receipt delivered", slog.String("printer", addr))
		return nil
	}

	err := classify(at, addr, cause)
	t.logger.Error("print attempt failed",
		slog.String("printer", addr),
		slog.String("error", err.Error()))
	return err
}

func classify(at attemptState, addr string, cause error) error {
	if isTimeout(cause) {
		return fmt.Errorf("%w: no response from %s within %s: %v",
			ErrTimeout, addr, DialTimeout, cause)
	}

	if at == stateConnecting {
		return fmt.Errorf("%w: cannot connect to printer at %s: %v", ErrConnection, addr, cause)
	}
	return fmt.Errorf("%w: printer error at %s: %v", ErrTransport, addr, cause)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// validateTarget fails fast on caller errors, before any network activity
func validateTarget(ip string, port int, payload *receipt.Payload) error {
	if ip == "" || payload == nil {
		return fmt.Errorf("%w: ip and payload are required", ErrInvalidRequest)
	}
	if !isDottedQuad(ip) {
		return fmt.Errorf("%w: invalid IP address format: %s", ErrInvalidRequest, ip)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: invalid port number %d, must be between 1 and 65535", ErrInvalidRequest, port)
	}
	return nil
}

// isDottedQuad reports whether s is exactly four 0-255 octets. IPv6
// forms, including IPv4-mapped ones like ::ffff:1.2.3.4, are rejected.
func isDottedQuad(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if part == "" || len(part) > 3 {
			return false
		}
		n := 0
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return false
			}
			n = n*10 + int(ch-'0')
		}
		if n > 255 {
			return false
		}
	}
	return true
}
