package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pawmart/pawmart-orders-service/internal/config"
	"github.com/pawmart/pawmart-orders-service/internal/handlers"
	"github.com/pawmart/pawmart-orders-service/internal/metrics"
)

// Server wraps the gin router and the underlying http.Server.
type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	handlers   *handlers.Handlers
}

// New builds the router and wires all routes.
func New(h *handlers.Handlers, m *metrics.Metrics, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	if m != nil {
		router.Use(m.Middleware())
	}

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/orders", s.handlers.CreateOrder)
		v1.GET("/orders/:id", s.handlers.GetOrder)
		v1.PUT("/orders/:id/status", s.handlers.UpdateOrderStatus)
		v1.DELETE("/orders/:id", s.handlers.DeleteOrder)
		v1.GET("/users/:user_id/orders", s.handlers.GetUserOrders)

		v1.POST("/payments/initialize", s.handlers.InitializePayment)
		v1.GET("/payments/verify/:reference", s.handlers.VerifyPayment)
		v1.POST("/payments/webhook", s.handlers.PaymentWebhook)
	}
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
