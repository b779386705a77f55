// Package api exposes printer access over HTTP so browser-hosted UIs,
// which cannot open raw sockets, can request prints
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/possuite/print-bridge/internal/printer"
	"github.com/possuite/print-bridge/internal/registry"
	"github.com/possuite/print-bridge/pkg/receipt"
)

// ServiceName identifies the bridge in health responses
const ServiceName = "pos-print-bridge"

var availableEndpoints = []string{
	"GET /health",
	"POST /print/receipt",
	"POST /print/test",
	"GET /printers",
	"POST /printers",
	"POST /printers/:id/name",
	"DELETE /printers/:id",
	"POST /printers/:id/print",
	"GET /ws",
}

// Server is the bridge HTTP server
type Server struct {
	router    *gin.Engine
	transport *printer.Transport
	registry  *registry.Registry
	hub       *Hub
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewServer creates a bridge server around a transport and a printer
// registry
func NewServer(transport *printer.Transport, reg *registry.Registry, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsCfg))

	server := &Server{
		router:    router,
		transport: transport,
		registry:  reg,
		hub:       newHub(logger),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		logger: logger,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/print/receipt", s.handleReceipt)
	s.router.POST("/print/test", s.handleTestPrint)

	s.router.GET("/printers", s.handleListPrinters)
	s.router.POST("/printers", s.handleAddPrinter)
	s.router.POST("/printers/:id/name", s.handleRenamePrinter)
	s.router.DELETE("/printers/:id", s.handleRemovePrinter)
	s.router.POST("/printers/:id/print", s.handlePrintToRegistered)

	s.router.GET("/ws", s.handleWebSocket)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":              "Endpoint not found",
			"availableEndpoints": availableEndpoints,
		})
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "ok",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReceipt prints a caller-supplied payload to a caller-supplied
// network target
func (s *Server) handleReceipt(c *gin.Context) {
	var req struct {
		IP      string           `json:"ip"`
		Port    int              `json:"port"`
		Payload *receipt.Payload `json:"payload"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	if req.Port == 0 {
		req.Port = receipt.DefaultPort
	}

	s.respondPrintOutcome(c, req.Payload,
		s.renderAndSend(c.Request.Context(), target{ip: req.IP, port: req.Port}, req.Payload))
}

// handleTestPrint builds the fixed demonstration payload server-side and
// pushes it through the same delivery path as handleReceipt
func (s *Server) handleTestPrint(c *gin.Context) {
	var req struct {
		IP   string `json:"ip"`
		Port int    `json:"port"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	if req.IP == "" {
		c.JSON(400, gin.H{"error": "IP address is required for test print"})
		return
	}
	if req.Port == 0 {
		req.Port = receipt.DefaultPort
	}

	payload := receipt.TestPayload(time.Now().Format("1/2/2006, 3:04:05 PM"))

	s.respondPrintOutcome(c, payload,
		s.renderAndSend(c.Request.Context(), target{ip: req.IP, port: req.Port}, payload))
}

// handlePrintToRegistered prints a payload to an already configured
// printer, network or serial
func (s *Server) handlePrintToRegistered(c *gin.Context) {
	entry := s.registry.Get(c.Param("id"))
	if entry == nil {
		c.JSON(404, gin.H{"error": "printer not found"})
		return
	}

	var req struct {
		Payload *receipt.Payload `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	s.respondPrintOutcome(c, req.Payload,
		s.renderAndSend(c.Request.Context(), target{entry: entry}, req.Payload))
}

// target is one print destination: either a raw ip:port or a registry entry
type target struct {
	ip    string
	port  int
	entry *registry.Entry
}

func (t target) label() string {
	if t.entry != nil {
		return t.entry.Description
	}
	return t.ip
}

// renderAndSend delivers one payload to one target and broadcasts the
// outcome. Both the receipt and test-print routes end up here; the
// test route calls it directly rather than re-dispatching to itself.
func (s *Server) renderAndSend(ctx context.Context, t target, payload *receipt.Payload) error {
	var err error
	switch {
	case t.entry != nil && t.entry.Type == registry.TypeSerial:
		err = s.transport.SendSerial(ctx, t.entry.Device, payload)
	case t.entry != nil:
		err = s.transport.Send(ctx, t.entry.Host, t.entry.Port, payload)
	default:
		err = s.transport.Send(ctx, t.ip, t.port, payload)
	}

	if err != nil {
		s.hub.Broadcast(EventPrintFailed, gin.H{
			"printer": t.label(),
			"error":   err.Error(),
		})
		return err
	}

	data := gin.H{"printer": t.label()}
	if payload != nil && payload.ReceiptNumber != "" {
		data["receipt"] = payload.ReceiptNumber
	}
	s.hub.Broadcast(EventPrintSucceeded, data)

	return nil
}

// respondPrintOutcome maps a delivery outcome onto the HTTP contract:
// caller errors become 400, everything else 500, success 200
func (s *Server) respondPrintOutcome(c *gin.Context, payload *receipt.Payload, err error) {
	switch {
	case err == nil:
		c.JSON(200, gin.H{
			"success": true,
			"message": "Receipt printed successfully",
		})
	case errors.Is(err, printer.ErrInvalidRequest):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": err.Error()})
	}
}

func (s *Server) handleListPrinters(c *gin.Context) {
	c.JSON(200, gin.H{
		"printers": s.registry.List(),
	})
}

func (s *Server) handleAddPrinter(c *gin.Context) {
	var req struct {
		Type        string `json:"type"`
		Host        string `json:"host"`
		Port        int    `json:"port"`
		Device      string `json:"device"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	if req.Type == "" {
		req.Type = registry.TypeNetwork
	}
	if req.Type == registry.TypeNetwork && req.Port == 0 {
		req.Port = receipt.DefaultPort
	}

	entry, err := s.registry.Add(registry.Entry{
		Type:        req.Type,
		Host:        req.Host,
		Port:        req.Port,
		Device:      req.Device,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	s.hub.Broadcast(EventPrinterAdded, gin.H{
		"id":          entry.ID,
		"type":        entry.Type,
		"description": entry.Description,
		"name":        entry.Name,
	})

	c.JSON(200, gin.H{
		"success": true,
		"printer": entry,
	})
}

func (s *Server) handleRenamePrinter(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "name is required"})
		return
	}

	if !s.registry.Rename(c.Param("id"), req.Name) {
		c.JSON(404, gin.H{"error": "printer not found"})
		return
	}

	c.JSON(200, gin.H{"success": true})
}

func (s *Server) handleRemovePrinter(c *gin.Context) {
	id := c.Param("id")

	if !s.registry.Remove(id) {
		c.JSON(404, gin.H{"error": "printer not found"})
		return
	}

	s.hub.Broadcast(EventPrinterRemoved, gin.H{"id": id})

	c.JSON(200, gin.H{"success": true})
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}
