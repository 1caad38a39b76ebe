package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/models"
)

// CreateOrder handles POST /api/v1/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.OrdersCreated.Inc()
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	orderID := c.Param("id")

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if _, err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, req.Status); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func (h *Handlers) DeleteOrder(c *gin.Context) {
	orderID := c.Param("id")

	if err := h.orderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetUserOrders handles GET /api/v1/users/:user_id/orders
func (h *Handlers) GetUserOrders(c *gin.Context) {
	userID := c.Param("user_id")

	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil {
			offset = o
		}
	}

	orders, err := h.orderService.GetUserOrders(c.Request.Context(), userID, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
		"limit":  limit,
		"offset": offset,
	})
}
