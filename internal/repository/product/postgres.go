package product

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

const selectColumns = `id, title, price::text, description, category, image_url, discount::text`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + selectColumns + `
FROM products
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("product repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("product repo: list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	q := `SELECT ` + selectColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("product repo: get not found", zap.Int64("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("product repo: get", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, title, price, description, category, image_url, discount)
VALUES ($1, $2, $3::numeric, $4, $5, $6, $7::numeric)
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    price = EXCLUDED.price,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    image_url = EXCLUDED.image_url,
    discount = EXCLUDED.discount
RETURNING ` + selectColumns

	var discount *string
	if product.Discount != nil {
		s := product.Discount.String()
		discount = &s
	}
	saved, err := scanProduct(r.pool.QueryRow(ctx, q,
		product.ID,
		product.Title,
		product.Price.String(),
		product.Description,
		product.Category,
		product.ImageURL,
		discount,
	))
	if err != nil {
		r.logger.Error("product repo: upsert", zap.Int64("id", product.ID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: upserted", zap.Int64("id", saved.ID), zap.String("title", saved.Title))
	return &saved, nil
}

// scanProduct reads one row and re-validates it so a malformed catalog row
// never reaches a cart.
func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		in       domain.ProductInput
		price    string
		discount *string
	)
	if err := row.Scan(&in.ID, &in.Title, &price, &in.Description, &in.Category, &in.ImageURL, &discount); err != nil {
		return domain.Product{}, err
	}
	var err error
	in.Price, err = decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %d: parse price %q: %w", in.ID, price, err)
	}
	if discount != nil {
		d, err := decimal.NewFromString(*discount)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %d: parse discount %q: %w", in.ID, *discount, err)
		}
		in.Discount = &d
	}
	p, err := domain.NewProduct(in)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %d: %w", in.ID, err)
	}
	return p, nil
}
