package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the purchase request built from a cart snapshot.
type Order struct {
	ID         string          `json:"id"`
	Lines      []OrderLine     `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	TotalLabel string          `json:"totalLabel"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type OrderLine struct {
	ProductID int64           `json:"productId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}
