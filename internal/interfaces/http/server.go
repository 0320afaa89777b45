// Package http provides the HTTP server adapter for the application
// layer. It is a thin translation layer: bind, call a service, map the
// result or error to a status code.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/service"
	"github.com/Intelygenai/paycyclexplorer/internal/identity"
)

// HeaderUserID carries the caller's user id. A real deployment would put
// an authenticating proxy in front and have it set this header.
const HeaderUserID = "X-User-ID"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger
}

// NewServer creates a new HTTP server over the given services.
func NewServer(
	config ServerConfig,
	requisitions service.RequisitionService,
	orders service.OrderService,
	vendors service.VendorService,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		logger: logger,
	}

	router.Use(gin.Recovery())
	router.Use(server.loggingMiddleware())
	router.Use(identityMiddleware())

	server.setupRoutes(NewHandlers(requisitions, orders, vendors, logger))

	return server
}

// identityMiddleware copies the caller identity header into the request
// context so services can resolve the current user.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(HeaderUserID); userID != "" {
			ctx := identity.WithUserID(c.Request.Context(), userID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// loggingMiddleware logs every request with latency and status.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("latency", time.Since(start).String()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(h *Handlers) {
	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api/v1")
	{
		api.POST("/requisitions", h.CreateRequisition)
		api.GET("/requisitions", h.ListRequisitions)
		api.GET("/requisitions/:id", h.GetRequisition)
		api.PUT("/requisitions/:id", h.UpdateRequisition)
		api.POST("/requisitions/:id/submit", h.SubmitRequisition)
		api.POST("/requisitions/:id/decision", h.DecideRequisition)
		api.POST("/requisitions/:id/convert", h.ConvertRequisition)

		api.POST("/orders", h.CreateOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:id", h.GetOrder)
		api.POST("/orders/:id/submit", h.SubmitOrder)
		api.POST("/orders/:id/decision", h.DecideOrder)
		api.POST("/orders/:id/send", h.SendOrderToVendor)
		api.POST("/orders/:id/receipts", h.RecordReceipt)
		api.GET("/orders/:id/receipts", h.ListReceipts)
		api.GET("/receipts/:id", h.GetReceipt)

		api.POST("/vendors", h.CreateVendor)
		api.GET("/vendors", h.ListVendors)
		api.GET("/vendors/:id", h.GetVendor)
		api.PUT("/vendors/:id", h.UpdateVendor)

		api.POST("/approvers", h.CreateBinding)
		api.GET("/approvers", h.ListBindings)
		api.PUT("/approvers/:id", h.UpdateBinding)
		api.DELETE("/approvers/:id", h.DeleteBinding)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// server fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
