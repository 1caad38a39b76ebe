package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the closed set of payment states. A payment leaves
// pending exactly once and never returns.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusSuccessful PaymentStatus = "successful"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// Payment records one attempt to collect an order's total through the
// external gateway. Amount is a snapshot of the order total at
// initialization time.
type Payment struct {
	ID              string          `json:"id"`
	Reference       string          `json:"reference"`
	OrderID         string          `json:"order_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          PaymentStatus   `json:"status"`
	GatewayResponse string          `json:"gateway_response,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
}

// InitializePaymentRequest is the payload for payment initialization.
// PayerEmail is optional and forwarded to the gateway's checkout page.
type InitializePaymentRequest struct {
	OrderID    string `json:"order_id"`
	Currency   string `json:"currency"`
	PayerEmail string `json:"payer_email,omitempty"`
}

// InitializePaymentResponse is returned to the caller, who redirects the
// payer to AuthorizationURL.
type InitializePaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	AccessCode       string `json:"access_code"`
}

// VerifyPaymentResult is the reconciled outcome of a payment, identical
// whether it came from a fresh gateway call or the stored record.
type VerifyPaymentResult struct {
	OrderID         string          `json:"order_id"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       string          `json:"reference"`
	GatewayResponse string          `json:"gateway_response,omitempty"`
}
