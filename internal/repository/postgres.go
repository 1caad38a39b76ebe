package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/errors"
	"github.com/pawmart/pawmart-orders-service/internal/models"
)

// PostgresOrderRepository implements OrderRepository on PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *zap.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger.Named("order-repository"),
	}
}

// Create writes the order row, its items, and the stock decrements in one
// transaction. The decrement is conditional on remaining stock, so two
// concurrent orders for the same product cannot both take the last unit:
// the loser's UPDATE matches no row and the whole transaction rolls back.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	const insertOrder = `
		INSERT INTO orders (id, user_id, status, items, shipping_address, total_amount, order_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, insertOrder,
		order.ID,
		order.UserID,
		order.Status,
		itemsJSON,
		order.ShippingAddress,
		order.Total,
		order.OrderDate,
		order.UpdatedAt,
	); err != nil {
		r.logger.Error("Failed to insert order",
			zap.String("order_id", order.ID),
			zap.Error(err))
		return err
	}

	const decrementStock = `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`
	for _, item := range order.Items {
		result, err := tx.ExecContext(ctx, decrementStock, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			// Stock moved between validation and commit. Re-read the current
			// level so the error carries accurate numbers.
			var available int
			if err := tx.QueryRowContext(ctx,
				`SELECT stock FROM products WHERE id = $1`, item.ProductID).Scan(&available); err != nil {
				if err == sql.ErrNoRows {
					return errors.NewNotFoundError("product", item.ProductID)
				}
				return err
			}
			return errors.NewInsufficientStockError(item.ProductID, available, item.Quantity)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("total", order.Total.String()))

	return nil
}

// GetByID retrieves an order by its unique identifier.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	const query = `
		SELECT id, user_id, status, items, shipping_address, total_amount, order_date, updated_at
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("order", id)
	}
	if err != nil {
		r.logger.Error("Failed to fetch order", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}

	return order, nil
}

// UpdateStatus persists a new status for the order.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	const query = `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.String("order_id", id), zap.Error(err))
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NewNotFoundError("order", id)
	}

	r.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("status", string(status)))

	return nil
}

// Delete removes an order. Status rules are enforced by the service layer.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete order", zap.String("order_id", id), zap.Error(err))
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NewNotFoundError("order", id)
	}

	r.logger.Info("Order deleted", zap.String("order_id", id))
	return nil
}

// GetByUserID retrieves orders for a user, newest first.
func (r *PostgresOrderRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	const query = `
		SELECT id, user_id, status, items, shipping_address, total_amount, order_date, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var itemsJSON []byte

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&itemsJSON,
		&order.ShippingAddress,
		&order.Total,
		&order.OrderDate,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, err
	}

	return &order, nil
}

// GenerateOrderID returns a new unique order identifier.
func GenerateOrderID() string {
	return "ord_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
