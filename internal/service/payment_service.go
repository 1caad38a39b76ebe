package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/config"
	"github.com/pawmart/pawmart-orders-service/internal/errors"
	"github.com/pawmart/pawmart-orders-service/internal/gateway"
	"github.com/pawmart/pawmart-orders-service/internal/models"
	"github.com/pawmart/pawmart-orders-service/internal/repository"
)

// webhookEventChargeSuccess is the only provider event that mutates state.
const webhookEventChargeSuccess = "charge.success"

// PaymentService reconciles payment outcomes from two channels: explicit
// verify calls and provider webhooks. Both feed the same code path, so an
// outcome is applied exactly once no matter how many times or through
// which channel it arrives.
type PaymentService struct {
	paymentRepo  repository.PaymentRepository
	orderService *OrderService
	gateway      gateway.PaymentGateway
	config       *config.Config
	logger       *zap.Logger
	clock        Clock

	// refLocks serializes verification per reference. The database's
	// conditional update is the final arbiter; the lock just keeps the
	// loser from spending a gateway call it will throw away.
	refLocks sync.Map
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderService *OrderService,
	gw gateway.PaymentGateway,
	cfg *config.Config,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		orderService: orderService,
		gateway:      gw,
		config:       cfg,
		logger:       logger.Named("payment-service"),
		clock:        systemClock{},
	}
}

// GenerateReference builds a globally unique payment reference from the
// order id, a high-resolution timestamp, and a random suffix. It is a pure
// function of its inputs plus entropy; no shared counter is involved.
func GenerateReference(orderID string, clock Clock) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("PAY-%s-%d-%s", orderID, clock.Now().UnixNano(), suffix)
}

// InitializePayment opens a payment for a pending order. The payment row
// is persisted before the gateway is called: if the gateway fails, the
// pending row stays behind for the caller to retry or abandon.
func (s *PaymentService) InitializePayment(ctx context.Context, req *models.InitializePaymentRequest) (*models.InitializePaymentResponse, error) {
	if req.OrderID == "" {
		return nil, errors.NewValidationError("order_id", "order ID is required")
	}
	if req.Currency == "" {
		return nil, errors.NewValidationError("currency", "currency is required")
	}

	order, err := s.orderService.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		return nil, errors.NewConflictError("payment already initialized")
	}

	payment := &models.Payment{
		ID:        repository.GeneratePaymentID(),
		Reference: GenerateReference(order.ID, s.clock),
		OrderID:   order.ID,
		Amount:    order.Total,
		Currency:  req.Currency,
		Status:    models.PaymentStatusPending,
		CreatedAt: s.clock.Now(),
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	result, err := s.gateway.Initialize(ctx, &gateway.InitializeRequest{
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		PayerEmail:  req.PayerEmail,
		Reference:   payment.Reference,
		CallbackURL: s.config.Gateway.CallbackURL,
	})
	if err != nil {
		// The pending payment row is intentionally left in place.
		s.logger.Error("Gateway initialization failed",
			zap.String("reference", payment.Reference),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Payment initialized",
		zap.String("reference", payment.Reference),
		zap.String("order_id", order.ID),
		zap.String("amount", payment.Amount.String()))

	return &models.InitializePaymentResponse{
		AuthorizationURL: result.AuthorizationURL,
		Reference:        payment.Reference,
		AccessCode:       result.AccessCode,
	}, nil
}

// VerifyPayment resolves a payment's outcome. A payment that already left
// pending returns its stored result without another gateway call; only the
// first verifier of a pending payment reaches the gateway and applies the
// outcome.
func (s *PaymentService) VerifyPayment(ctx context.Context, reference string) (*models.VerifyPaymentResult, error) {
	unlock := s.lockReference(reference)
	defer unlock()

	payment, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if payment.Status != models.PaymentStatusPending {
		s.logger.Debug("Payment already verified, returning stored result",
			zap.String("reference", reference),
			zap.String("status", string(payment.Status)))
		s.forgetReference(reference)
		return resultFromPayment(payment), nil
	}

	verification, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	status := models.PaymentStatusFailed
	if verification.Status == "success" {
		status = models.PaymentStatusSuccessful
	}

	applied, err := s.paymentRepo.MarkVerified(ctx, reference, status, verification.GatewayResponse, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent verifier won between our read and write. Their
		// outcome stands; return it.
		payment, err = s.paymentRepo.GetByReference(ctx, reference)
		if err != nil {
			return nil, err
		}
		s.forgetReference(reference)
		return resultFromPayment(payment), nil
	}

	payment.Status = status
	payment.GatewayResponse = verification.GatewayResponse
	s.forgetReference(reference)

	if status == models.PaymentStatusSuccessful {
		s.moveOrderToProcessing(ctx, payment.OrderID)
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.orderService.publisher.PublishPaymentVerified(ctx, payment); err != nil {
			s.logger.Warn("Failed to publish payment verified event",
				zap.String("reference", reference), zap.Error(err))
		}
	}

	s.logger.Info("Payment reconciled",
		zap.String("reference", reference),
		zap.String("status", string(status)))

	return resultFromPayment(payment), nil
}

// moveOrderToProcessing advances the order after a successful charge. A
// failure here leaves a successful payment against a pending order; that
// inconsistency is surfaced in logs and swept by external reconciliation,
// not retried inline.
func (s *PaymentService) moveOrderToProcessing(ctx context.Context, orderID string) {
	if _, err := s.orderService.UpdateOrderStatus(ctx, orderID, models.OrderStatusProcessing); err != nil {
		s.logger.Error("Payment succeeded but order status update failed",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// HandleWebhook authenticates and applies a provider callback. The
// signature is an HMAC-SHA512 of the exact raw body, hex encoded; anything
// that fails the constant-time comparison is rejected before any state is
// read. Events other than charge.success are acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) error {
	if err := s.verifySignature(rawBody, signatureHeader); err != nil {
		return err
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return errors.NewValidationError("body", "unparsable webhook payload")
	}

	if payload.Event != webhookEventChargeSuccess {
		s.logger.Debug("Ignoring webhook event", zap.String("event", payload.Event))
		return nil
	}

	s.logger.Info("Processing charge.success webhook",
		zap.String("reference", payload.Data.Reference))

	_, err := s.VerifyPayment(ctx, payload.Data.Reference)
	return err
}

func (s *PaymentService) verifySignature(rawBody []byte, signatureHeader string) error {
	secret := s.config.Gateway.WebhookSecret
	if secret == "" {
		s.logger.Error("Webhook received but no webhook secret is configured")
		return errors.NewSignatureError("webhook signature validation unavailable")
	}
	if signatureHeader == "" {
		return errors.NewSignatureError("missing webhook signature")
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signatureHeader)) {
		return errors.NewSignatureError("invalid webhook signature")
	}

	return nil
}

func (s *PaymentService) lockReference(reference string) func() {
	v, _ := s.refLocks.LoadOrStore(reference, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// forgetReference drops the per-reference mutex once the payment has
// reached a terminal state. Later callers short-circuit on the stored row,
// and the database's conditional update still arbitrates any straggler
// racing the removal, so the entry does not need to outlive the pending
// phase.
func (s *PaymentService) forgetReference(reference string) {
	s.refLocks.Delete(reference)
}

func resultFromPayment(p *models.Payment) *models.VerifyPaymentResult {
	return &models.VerifyPaymentResult{
		OrderID:         p.OrderID,
		Status:          string(p.Status),
		Amount:          p.Amount,
		Reference:       p.Reference,
		GatewayResponse: p.GatewayResponse,
	}
}
