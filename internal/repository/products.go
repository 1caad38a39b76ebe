package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/errors"
	"github.com/pawmart/pawmart-orders-service/internal/models"
)

// PostgresProductCatalog is a read-only view over the catalog's products
// table. The orders service never writes prices or names; stock is only
// touched inside the order-creation transaction.
type PostgresProductCatalog struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresProductCatalog creates a new catalog reader.
func NewPostgresProductCatalog(db *sql.DB, logger *zap.Logger) *PostgresProductCatalog {
	return &PostgresProductCatalog{
		db:     db,
		logger: logger.Named("product-catalog"),
	}
}

// GetByID retrieves a product with its current price and stock level.
func (c *PostgresProductCatalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	const query = `
		SELECT id, name, original_price, discounted_price, stock
		FROM products
		WHERE id = $1
	`

	var product models.Product
	var discounted decimal.NullDecimal
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.OriginalPrice,
		&discounted,
		&product.Stock,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("product", id)
	}
	if err != nil {
		c.logger.Error("Failed to fetch product", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}

	if discounted.Valid {
		product.DiscountedPrice = &discounted.Decimal
	}

	return &product, nil
}
