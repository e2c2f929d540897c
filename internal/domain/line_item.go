package domain

import "github.com/shopspring/decimal"

// LineItem associates a product with a quantity of at least one.
type LineItem struct {
	Product  Product
	Quantity int
}

// Subtotal is the discounted unit price times the quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Product.DiscountedPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}
