package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/config"
	"github.com/pawmart/pawmart-orders-service/internal/errors"
)

// PaymentGateway is the contract with the external payment provider.
// Both calls block up to the configured timeout and return a gateway
// error on provider or network failure. Neither is retried here; callers
// decide whether a retry makes sense.
type PaymentGateway interface {
	Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// InitializeRequest asks the provider to open a checkout session.
type InitializeRequest struct {
	Amount      decimal.Decimal
	Currency    string
	PayerEmail  string
	Reference   string
	CallbackURL string
}

// InitializeResult carries where to send the payer.
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
}

// VerifyResult is the provider's view of a transaction. Status is the raw
// remote value; "success" is the only value treated as a successful charge.
type VerifyResult struct {
	Status          string
	GatewayResponse string
}

// Ensure HTTPGatewayClient implements PaymentGateway
var _ PaymentGateway = (*HTTPGatewayClient)(nil)

// HTTPGatewayClient talks to the provider's REST API.
type HTTPGatewayClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPGatewayClient creates a new HTTP-based gateway client.
func NewHTTPGatewayClient(cfg config.GatewayConfig, logger *zap.Logger) *HTTPGatewayClient {
	return &HTTPGatewayClient{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("payment-gateway"),
	}
}

type initializePayload struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url"`
}

type initializeEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Initialize opens a checkout session for the given reference.
func (c *HTTPGatewayClient) Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResult, error) {
	c.logger.Debug("Initializing transaction",
		zap.String("reference", req.Reference),
		zap.String("amount", req.Amount.String()),
		zap.String("currency", req.Currency))

	body, err := json.Marshal(initializePayload{
		Amount:      req.Amount.String(),
		Currency:    req.Currency,
		Email:       req.PayerEmail,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/transaction/initialize", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Initialize request failed",
			zap.String("reference", req.Reference),
			zap.Error(err))
		return nil, errors.NewGatewayError("payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewGatewayError(
			fmt.Sprintf("payment gateway returned status %d", resp.StatusCode), nil)
	}

	var envelope initializeEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.NewGatewayError("invalid gateway response", err)
	}
	if !envelope.Status {
		return nil, errors.NewGatewayError("gateway rejected initialization: "+envelope.Message, nil)
	}

	c.logger.Info("Transaction initialized", zap.String("reference", req.Reference))

	return &InitializeResult{
		AuthorizationURL: envelope.Data.AuthorizationURL,
		AccessCode:       envelope.Data.AccessCode,
	}, nil
}

type verifyEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status          string `json:"status"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

// Verify asks the provider for the outcome of a transaction.
func (c *HTTPGatewayClient) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	c.logger.Debug("Verifying transaction", zap.String("reference", reference))

	url := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, reference)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Verify request failed",
			zap.String("reference", reference),
			zap.Error(err))
		return nil, errors.NewGatewayError("payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewGatewayError(
			fmt.Sprintf("payment gateway returned status %d", resp.StatusCode), nil)
	}

	var envelope verifyEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.NewGatewayError("invalid gateway response", err)
	}
	if !envelope.Status {
		return nil, errors.NewGatewayError("gateway rejected verification: "+envelope.Message, nil)
	}

	c.logger.Info("Transaction verified",
		zap.String("reference", reference),
		zap.String("remote_status", envelope.Data.Status))

	return &VerifyResult{
		Status:          envelope.Data.Status,
		GatewayResponse: envelope.Data.GatewayResponse,
	}, nil
}

func (c *HTTPGatewayClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.secretKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
	}
}
