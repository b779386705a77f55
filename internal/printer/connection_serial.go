package printer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tarm/serial"

	"github.com/possuite/print-bridge/internal/encoder"
	"github.com/possuite/print-bridge/pkg/receipt"
)

// DefaultBaudRate for locally attached receipt printers
const DefaultBaudRate = 9600

// SerialConnection wraps an open serial line to a locally attached printer
type SerialConnection struct {
	port *serial.Port
	mu   sync.Mutex
}

// ConnectSerial opens a serial printer device
func ConnectSerial(device string, baud int) (*SerialConnection, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name: device,
		Baud: baud,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial printer: %w", err)
	}

	return &SerialConnection{port: port}, nil
}

// Write sends data to the serial printer
func (c *SerialConnection) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.port.Write(data)
}

// Close closes the serial port
func (c *SerialConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port != nil {
		return c.port.Close()
	}
	return nil
}

// SendSerial encodes the payload and delivers it over a serial line. Like
// network delivery this is one attempt over a per-call connection: open,
// write, close, resolve.
func (t *Transport) SendSerial(ctx context.Context, device string, payload *receipt.Payload) error {
	if device == "" || payload == nil {
		return fmt.Errorf("%w: device and payload are required", ErrInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	t.logger.Info("printing receipt", slog.String("printer", device))

	conn, err := ConnectSerial(device, DefaultBaudRate)
	if err != nil {
		return fmt.Errorf("%w: cannot open printer device %s: %v", ErrConnection, device, err)
	}
	defer conn.Close()

	if _, err := conn.Write(encoder.Encode(payload)); err != nil {
		return fmt.Errorf("%w: printer error at %s: %v", ErrTransport, device, err)
	}

	t.logger.Info("receipt delivered", slog.String("printer", device))
	return nil
}
