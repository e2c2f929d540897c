package order

import (
	"context"

	"onlinestore/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}
