package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"onlinestore/internal/cart"
	"onlinestore/internal/domain"
)

type Service struct {
	repo   orderRepo
	symbol string
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

type orderRepo interface {
	Create(ctx context.Context, order domain.Order) error
}

func New(repo orderRepo, currencySymbol string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		symbol: currencySymbol,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// BuildRequest turns a cart snapshot into an order. Unit prices are the
// discounted prices; totals are carried unrounded and labelled with the
// cart's formatting rule.
func BuildRequest(snap cart.Snapshot, symbol string, id string, at time.Time) (domain.Order, error) {
	if len(snap.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	lines := make([]domain.OrderLine, 0, len(snap.Items))
	for _, item := range snap.Items {
		lines = append(lines, domain.OrderLine{
			ProductID: item.Product.ID,
			Title:     item.Product.Title,
			UnitPrice: item.Product.DiscountedPrice(),
			Quantity:  item.Quantity,
			Total:     item.Subtotal(),
		})
	}
	return domain.Order{
		ID:         id,
		Lines:      lines,
		Total:      snap.TotalAmount,
		TotalLabel: cart.FormatAmount(symbol, snap.TotalAmount),
		CreatedAt:  at.UTC(),
	}, nil
}

// Submit records the order for snap. The cart itself is left untouched;
// clearing it after success is the caller's decision.
func (s *Service) Submit(ctx context.Context, snap cart.Snapshot) (*domain.Order, error) {
	order, err := BuildRequest(snap, s.symbol, s.newID(), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error("order: submit failed", zap.String("order_id", order.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("order: submitted",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Lines)),
		zap.String("total", order.TotalLabel),
	)
	return &order, nil
}
