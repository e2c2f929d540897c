package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"onlinestore/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Create writes the order and its lines in one transaction.
func (r *postgresRepo) Create(ctx context.Context, order domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO orders (id, total, total_label, created_at)
VALUES ($1::uuid, $2::numeric, $3, $4)
`, order.ID, order.Total.String(), order.TotalLabel, order.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i, line := range order.Lines {
		batch.Queue(`
INSERT INTO order_lines (order_id, position, product_id, title, unit_price, quantity, line_total)
VALUES ($1::uuid, $2, $3, $4, $5::numeric, $6, $7::numeric)
`, order.ID, i, line.ProductID, line.Title, line.UnitPrice.String(), line.Quantity, line.Total.String())
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("order repo: created",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Lines)),
		zap.String("total", order.TotalLabel),
	)
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var (
		order domain.Order
		total string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id::text, total::text, total_label, created_at
FROM orders
WHERE id = $1::uuid
`, id).Scan(&order.ID, &total, &order.TotalLabel, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if order.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order %s: parse total: %w", id, err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT product_id, title, unit_price::text, quantity, line_total::text
FROM order_lines
WHERE order_id = $1::uuid
ORDER BY position ASC
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line             domain.OrderLine
			unitPrice, lineT string
		)
		if err := rows.Scan(&line.ProductID, &line.Title, &unitPrice, &line.Quantity, &lineT); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("order %s: parse unit price: %w", id, err)
		}
		if line.Total, err = decimal.NewFromString(lineT); err != nil {
			return nil, fmt.Errorf("order %s: parse line total: %w", id, err)
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &order, nil
}
