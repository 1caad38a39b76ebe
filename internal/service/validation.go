package service

import (
	"github.com/pawmart/pawmart-orders-service/internal/errors"
	"github.com/pawmart/pawmart-orders-service/internal/models"
)

// ValidateCreateOrderRequest validates an order creation request.
func ValidateCreateOrderRequest(req *models.CreateOrderRequest) error {
	if req.UserID == "" {
		return errors.NewValidationError("user_id", "user ID is required")
	}

	if len(req.Items) == 0 {
		return errors.NewValidationError("items", "at least one item is required")
	}

	for _, item := range req.Items {
		if item.ProductID == "" {
			return errors.NewValidationError("items", "product ID is required for every item")
		}
		if item.Quantity <= 0 {
			return errors.NewValidationError("items", "quantity must be positive")
		}
	}

	if req.ShippingAddress == "" {
		return errors.NewValidationError("shipping_address", "shipping address is required")
	}

	return nil
}
