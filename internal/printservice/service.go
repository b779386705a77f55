// Package printservice is the client-side print facade the point-of-sale
// UI talks to. It owns the runtime print configuration and dispatches
// encoded-receipt requests to the bridge over HTTP.
package printservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/possuite/print-bridge/pkg/receipt"
)

// ErrDisabled is returned when an operation runs while printing is turned
// off or not configured; it is raised locally, before any network call
var ErrDisabled = errors.New("printing is disabled or not configured")

// Config is the facade's runtime configuration. It lives for the process
// lifetime, is reconstructible from the environment, and is overwritten
// wholesale on update, never migrated piecemeal.
type Config struct {
	Enabled      bool   `json:"enabled"`
	ServerURL    string `json:"serverUrl"`
	PrinterIP    string `json:"printerIp"`
	PrinterPort  int    `json:"printerPort"`
	StoreName    string `json:"storeName,omitempty"`
	StoreAddress string `json:"storeAddress,omitempty"`
	StorePhone   string `json:"storePhone,omitempty"`
	Footer       string `json:"footer,omitempty"`
}

// Update carries a partial configuration; nil fields keep their prior value
type Update struct {
	Enabled      *bool   `json:"enabled,omitempty"`
	ServerURL    *string `json:"serverUrl,omitempty"`
	PrinterIP    *string `json:"printerIp,omitempty"`
	PrinterPort  *int    `json:"printerPort,omitempty"`
	StoreName    *string `json:"storeName,omitempty"`
	StoreAddress *string `json:"storeAddress,omitempty"`
	StorePhone   *string `json:"storePhone,omitempty"`
	Footer       *string `json:"footer,omitempty"`
}

// Sale is the sale data handed over by the checkout flow. Money fields are
// integer cents throughout.
type Sale struct {
	CashierName   string         `json:"cashierName,omitempty"`
	CustomerName  string         `json:"customerName,omitempty"`
	Items         []receipt.Item `json:"items"`
	Subtotal      int            `json:"subtotal"`
	Discount      int            `json:"discount"`
	Tax           int            `json:"tax"`
	Total         int            `json:"total"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
}

// Service is safe for concurrent use. Config reads during an in-flight
// print are possible, but a payload is fixed the moment it is built, so a
// late update only affects future calls.
type Service struct {
	mu     sync.RWMutex
	cfg    Config
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// New creates a facade with the given starting configuration
func New(cfg Config, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		now:    time.Now,
	}
}

// Config returns a copy of the current configuration
func (s *Service) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfig shallow-merges the update into the current configuration
func (s *Service) UpdateConfig(u Update) Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Enabled != nil {
		s.cfg.Enabled = *u.Enabled
	}
	if u.ServerURL != nil {
		s.cfg.ServerURL = *u.ServerURL
	}
	if u.PrinterIP != nil {
		s.cfg.PrinterIP = *u.PrinterIP
	}
	if u.PrinterPort != nil {
		s.cfg.PrinterPort = *u.PrinterPort
	}
	if u.StoreName != nil {
		s.cfg.StoreName = *u.StoreName
	}
	if u.StoreAddress != nil {
		s.cfg.StoreAddress = *u.StoreAddress
	}
	if u.StorePhone != nil {
		s.cfg.StorePhone = *u.StorePhone
	}
	if u.Footer != nil {
		s.cfg.Footer = *u.Footer
	}

	return s.cfg
}

// Enabled reports whether printing is turned on and configured
func (s *Service) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Enabled && s.cfg.ServerURL != "" && s.cfg.PrinterIP != ""
}

// PrintReceipt builds a receipt payload from the sale merged with the
// store branding and dispatches it to the bridge. When printing is
// disabled it returns false without touching the network. Transport
// failures are always surfaced to the caller.
func (s *Service) PrintReceipt(ctx context.Context, sale Sale, receiptNumber string) (bool, error) {
	if !s.Enabled() {
		s.logger.Info("printing is disabled or not configured, skipping receipt")
		return false, nil
	}

	cfg := s.Config()

	if receiptNumber == "" {
		receiptNumber = fmt.Sprintf("RCP-%d", s.now().UnixMilli())
	}
	cashier := sale.CashierName
	if cashier == "" {
		cashier = "Cashier"
	}
	method := sale.PaymentMethod
	if method == "" {
		method = receipt.PaymentCash
	}

	payload := &receipt.Payload{
		StoreName:     cfg.StoreName,
		StoreAddress:  cfg.StoreAddress,
		StorePhone:    cfg.StorePhone,
		ReceiptNumber: receiptNumber,
		Date:          s.now().Format("1/2/2006, 3:04:05 PM"),
		Cashier:       cashier,
		Customer:      sale.CustomerName,
		Items:         sale.Items,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Tax:           sale.Tax,
		Total:         sale.Total,
		PaymentMethod: method,
		Footer:        cfg.Footer,
	}

	body := map[string]any{
		"ip":      cfg.PrinterIP,
		"port":    cfg.PrinterPort,
		"payload": payload,
	}

	if err := s.post(ctx, cfg.ServerURL+"/print/receipt", body, "print request failed"); err != nil {
		return false, fmt.Errorf("failed to print receipt: %w", err)
	}

	s.logger.Info("receipt printed", slog.String("receipt", receiptNumber))
	return true, nil
}

// TestPrint asks the bridge to print its fixed demonstration receipt on
// the configured printer
func (s *Service) TestPrint(ctx context.Context) error {
	if !s.Enabled() {
		return ErrDisabled
	}

	cfg := s.Config()
	body := map[string]any{
		"ip":   cfg.PrinterIP,
		"port": cfg.PrinterPort,
	}

	if err := s.post(ctx, cfg.ServerURL+"/print/test", body, "test print failed"); err != nil {
		return fmt.Errorf("test print failed: %w", err)
	}

	s.logger.Info("test print sent", slog.String("printer", cfg.PrinterIP))
	return nil
}

// CheckServerHealth probes the bridge's liveness endpoint. It never
// returns an error: any failure reads as unhealthy.
func (s *Service) CheckServerHealth(ctx context.Context) bool {
	cfg := s.Config()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.ServerURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("print server health check failed", slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// post sends a JSON body and converts non-2xx replies into errors carrying
// the bridge's error text
func (s *Service) post(ctx context.Context, url string, body any, fallback string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.New(bridgeError(resp.Body, fallback))
	}

	return nil
}

// bridgeError extracts the error field from a bridge failure response
func bridgeError(r io.Reader, fallback string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err == nil && strings.TrimSpace(body.Error) != "" {
		return body.Error
	}
	return fallback
}
