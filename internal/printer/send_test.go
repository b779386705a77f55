package printer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/possuite/print-bridge/pkg/receipt"
)

func testTransport() *Transport {
	return NewTransport(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testPayload() *receipt.Payload {
	return &receipt.Payload{
		ReceiptNumber: "RCP-1",
		Date:          "1/2/2025, 3:04:05 PM",
		Items: []receipt.Item{
			{Name: "Coffee", Quantity: 1, Price: 350, Total: 350},
		},
		Subtotal:      350,
		Total:         350,
		PaymentMethod: receipt.PaymentCash,
	}
}

// stubPrinter accepts connections, drains each one until the client closes,
// and records what it received
type stubPrinter struct {
	listener net.Listener
	mu       sync.Mutex
	conns    int
	received []byte
}

func newStubPrinter(t *testing.T) *stubPrinter {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start stub printer: %v", err)
	}

	s := &stubPrinter{listener: listener}
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func() {
				data, _ := io.ReadAll(conn)
				conn.Close()

				s.mu.Lock()
				s.conns++
				s.received = append(s.received, data...)
				s.mu.Unlock()
			}()
		}
	}()

	t.Cleanup(func() { listener.Close() })
	return s
}

func (s *stubPrinter) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *stubPrinter) snapshot() (int, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns, append([]byte(nil), s.received...)
}

func TestSend_InvalidIP(t *testing.T) {
	tests := []string{
		"999.999.999.999",
		"256.1.1.1",
		"not-an-ip",
		"1.2.3",
		"1.2.3.4.5",
		"::1",
		"::ffff:127.0.0.1",
	}

	for _, ip := range tests {
		t.Run(ip, func(t *testing.T) {
			err := testTransport().Send(context.Background(), ip, 9100, testPayload())
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest for ip %q, got %v", ip, err)
			}
		})
	}
}

func TestSend_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		err := testTransport().Send(context.Background(), "127.0.0.1", port, testPayload())
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Expected ErrInvalidRequest for port %d, got %v", port, err)
		}
	}
}

func TestSend_MissingFields(t *testing.T) {
	if err := testTransport().Send(context.Background(), "", 9100, testPayload()); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for empty ip, got %v", err)
	}

	if err := testTransport().Send(context.Background(), "127.0.0.1", 9100, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for nil payload, got %v", err)
	}
}

func TestSend_ValidationNeverDials(t *testing.T) {
	stub := newStubPrinter(t)

	err := testTransport().Send(context.Background(), "999.999.999.999", stub.port(), testPayload())
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Expected ErrInvalidRequest, got %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	conns, _ := stub.snapshot()
	if conns != 0 {
		t.Errorf("Expected no connection attempts, stub saw %d", conns)
	}
}

func TestSend_Success(t *testing.T) {
	stub := newStubPrinter(t)

	err := testTransport().Send(context.Background(), "127.0.0.1", stub.port(), testPayload())
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		conns, data := stub.snapshot()
		if conns == 1 {
			if !bytes.Contains(data, []byte("Coffee")) {
				t.Error("Expected stream to contain the item name")
			}
			if !bytes.Contains(data, []byte("TOTAL: $3.50")) {
				t.Error("Expected stream to contain the formatted total")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected exactly one connection, stub saw %d", conns)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSend_ConnectionRefused(t *testing.T) {
	// Grab a port with no listener on it
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	start := time.Now()
	err = testTransport().Send(context.Background(), "127.0.0.1", port, testPayload())

	if !errors.Is(err, ErrConnection) {
		t.Errorf("Expected ErrConnection, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > DialTimeout+time.Second {
		t.Errorf("Expected failure within the timeout bound, took %s", elapsed)
	}
}

func TestSendSerial_Validation(t *testing.T) {
	tr := testTransport()

	if err := tr.SendSerial(context.Background(), "", testPayload()); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for empty device, got %v", err)
	}
	if err := tr.SendSerial(context.Background(), "/dev/ttyUSB0", nil); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for nil payload, got %v", err)
	}
}

func TestSendSerial_MissingDevice(t *testing.T) {
	err := testTransport().SendSerial(context.Background(), "/dev/nonexistent-printer", testPayload())
	if !errors.Is(err, ErrConnection) {
		t.Errorf("Expected ErrConnection for missing device, got %v", err)
	}
}

func TestIsDottedQuad(t *testing.T) {
	valid := []string{"0.0.0.0", "127.0.0.1", "192.168.1.100", "255.255.255.255"}
	for _, ip := range valid {
		if !isDottedQuad(ip) {
			t.Errorf("Expected %q to be a valid dotted quad", ip)
		}
	}

	invalid := []string{"", "256.0.0.1", "1.2.3", "1.2.3.4.5", "a.b.c.d", "::ffff:127.0.0.1"}
	for _, ip := range invalid {
		if isDottedQuad(ip) {
			t.Errorf("Expected %q to be rejected", ip)
		}
	}
}
