package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"onlinestore/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	ID          int64
	Title       string
	Price       string
	Description string
	Category    string
	ImageURL    string
	Discount    string
}

var demoProducts = []productSeed{
	{
		ID:          1,
		Title:       "Demo T-Shirt",
		Price:       "19.99",
		Description: "Soft cotton tee for demo purposes",
		Category:    "clothing",
		ImageURL:    "https://example.com/images/tshirt.jpg",
	},
	{
		ID:          2,
		Title:       "Demo Mug",
		Price:       "12.99",
		Description: "Ceramic mug with demo logo",
		Category:    "kitchen",
		ImageURL:    "https://example.com/images/mug.jpg",
	},
	{
		ID:          3,
		Title:       "Demo Backpack",
		Price:       "109.95",
		Description: "Fits 15 inch laptops",
		Category:    "accessories",
		ImageURL:    "https://example.com/images/backpack.jpg",
	},
	{
		ID:          4,
		Title:       "Demo Headphones",
		Price:       "100.00",
		Description: "Wireless, on sale",
		Category:    "electronics",
		ImageURL:    "https://example.com/images/headphones.jpg",
		Discount:    "0.20",
	},
}

// Apply upserts the demo catalog for manual testing. It is idempotent.
func Apply(ctx context.Context, repo ProductWriter) (int, error) {
	for i, s := range demoProducts {
		p, err := s.product()
		if err != nil {
			return i, fmt.Errorf("seed product %d: %w", s.ID, err)
		}
		if _, err := repo.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("upsert product %d: %w", s.ID, err)
		}
	}
	return len(demoProducts), nil
}

func (s productSeed) product() (domain.Product, error) {
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return domain.Product{}, err
	}
	in := domain.ProductInput{
		ID:          s.ID,
		Title:       s.Title,
		Price:       price,
		Description: s.Description,
		Category:    s.Category,
		ImageURL:    s.ImageURL,
	}
	if s.Discount != "" {
		d, err := decimal.NewFromString(s.Discount)
		if err != nil {
			return domain.Product{}, err
		}
		in.Discount = &d
	}
	return domain.NewProduct(in)
}
