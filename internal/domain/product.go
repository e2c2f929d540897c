package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is an immutable catalog entry. Build it with NewProduct so that
// price and discount are validated once, at the boundary.
type Product struct {
	ID          int64
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	ImageURL    string
	// Discount is a fraction in [0,1); nil means the product has no discount.
	Discount *decimal.Decimal
}

// ProductInput carries decoded catalog fields before validation.
type ProductInput struct {
	ID          int64
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	ImageURL    string
	Discount    *decimal.Decimal
}

var discountCeiling = decimal.NewFromInt(1)

// NewProduct validates in and returns the product. Out-of-range values are
// rejected, never clamped. Text fields are trimmed of surrounding space.
func NewProduct(in ProductInput) (Product, error) {
	if in.Price.IsNegative() {
		return Product{}, &ValidationError{Field: "price", Err: ErrInvalidPrice}
	}
	var discount *decimal.Decimal
	if in.Discount != nil {
		d := *in.Discount
		if d.IsNegative() || d.GreaterThanOrEqual(discountCeiling) {
			return Product{}, &ValidationError{Field: "discount", Err: ErrInvalidDiscount}
		}
		discount = &d
	}
	return Product{
		ID:          in.ID,
		Title:       strings.TrimSpace(in.Title),
		Price:       in.Price,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Discount:    discount,
	}, nil
}

// HasDiscount reports whether a discount is present, including a zero one.
func (p Product) HasDiscount() bool {
	return p.Discount != nil
}

// DiscountedPrice is Price × (1 − Discount), or Price when there is no discount.
func (p Product) DiscountedPrice() decimal.Decimal {
	if p.Discount == nil {
		return p.Price
	}
	return p.Price.Mul(discountCeiling.Sub(*p.Discount))
}

// Equal compares every field. Products sharing an ID but differing anywhere
// else are different products.
func (p Product) Equal(other Product) bool {
	if p.ID != other.ID ||
		p.Title != other.Title ||
		p.Description != other.Description ||
		p.Category != other.Category ||
		p.ImageURL != other.ImageURL {
		return false
	}
	if !p.Price.Equal(other.Price) {
		return false
	}
	switch {
	case p.Discount == nil && other.Discount == nil:
		return true
	case p.Discount == nil || other.Discount == nil:
		return false
	default:
		return p.Discount.Equal(*other.Discount)
	}
}
