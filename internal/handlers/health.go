package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pawmart-orders-service",
	})
}

// Ready handles GET /ready
func (h *Handlers) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": "pawmart-orders-service",
	})
}

// Live handles GET /live
func (h *Handlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
