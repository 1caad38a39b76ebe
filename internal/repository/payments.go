package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/errors"
	"github.com/pawmart/pawmart-orders-service/internal/models"
)

// PostgresPaymentRepository implements PaymentRepository on PostgreSQL.
type PostgresPaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresPaymentRepository creates a new PostgreSQL payment repository.
func NewPostgresPaymentRepository(db *sql.DB, logger *zap.Logger) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db:     db,
		logger: logger.Named("payment-repository"),
	}
}

// Create persists a new pending payment. The reference column carries a
// unique constraint; a duplicate reference surfaces as a database error
// rather than a silent overwrite.
func (r *PostgresPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	const query = `
		INSERT INTO payments (id, reference, order_id, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.Reference,
		payment.OrderID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert payment",
			zap.String("reference", payment.Reference),
			zap.Error(err))
		return err
	}

	r.logger.Info("Payment created",
		zap.String("payment_id", payment.ID),
		zap.String("reference", payment.Reference),
		zap.String("order_id", payment.OrderID))

	return nil
}

// GetByReference retrieves a payment by its gateway reference.
func (r *PostgresPaymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	const query = `
		SELECT id, reference, order_id, amount, currency, status, gateway_response, created_at, verified_at
		FROM payments
		WHERE reference = $1
	`

	var payment models.Payment
	var gatewayResponse sql.NullString
	var verifiedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, reference).Scan(
		&payment.ID,
		&payment.Reference,
		&payment.OrderID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&gatewayResponse,
		&payment.CreatedAt,
		&verifiedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("payment", reference)
	}
	if err != nil {
		r.logger.Error("Failed to fetch payment", zap.String("reference", reference), zap.Error(err))
		return nil, err
	}

	if gatewayResponse.Valid {
		payment.GatewayResponse = gatewayResponse.String
	}
	if verifiedAt.Valid {
		payment.VerifiedAt = &verifiedAt.Time
	}

	return &payment, nil
}

// MarkVerified moves a payment out of pending. The WHERE clause is the
// race arbiter: of two concurrent verifiers, only one UPDATE matches the
// pending row, and the other learns it lost from the zero row count.
func (r *PostgresPaymentRepository) MarkVerified(ctx context.Context, reference string, status models.PaymentStatus, gatewayResponse string, verifiedAt time.Time) (bool, error) {
	const query = `
		UPDATE payments
		SET status = $2, gateway_response = $3, verified_at = $4
		WHERE reference = $1 AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, reference, status, gatewayResponse, verifiedAt)
	if err != nil {
		r.logger.Error("Failed to mark payment verified",
			zap.String("reference", reference),
			zap.Error(err))
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		r.logger.Info("Payment already verified by a concurrent caller",
			zap.String("reference", reference))
		return false, nil
	}

	r.logger.Info("Payment verified",
		zap.String("reference", reference),
		zap.String("status", string(status)))

	return true, nil
}

// GeneratePaymentID returns a new unique payment identifier.
func GeneratePaymentID() string {
	return "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
