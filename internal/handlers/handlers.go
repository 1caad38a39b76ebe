package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/config"
	"github.com/pawmart/pawmart-orders-service/internal/errors"
	"github.com/pawmart/pawmart-orders-service/internal/metrics"
	"github.com/pawmart/pawmart-orders-service/internal/service"
)

// Handlers holds all HTTP handlers for the orders service.
type Handlers struct {
	orderService   *service.OrderService
	paymentService *service.PaymentService
	metrics        *metrics.Metrics
	config         *config.Config
	logger         *zap.Logger
}

// NewHandlers creates a new handlers instance. The metrics argument may be
// nil; counters are then skipped.
func NewHandlers(
	orderService *service.OrderService,
	paymentService *service.PaymentService,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		orderService:   orderService,
		paymentService: paymentService,
		metrics:        m,
		config:         cfg,
		logger:         logger.Named("handlers"),
	}
}

func handleError(c *gin.Context, err error) {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.KindSignature:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.KindGateway:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
