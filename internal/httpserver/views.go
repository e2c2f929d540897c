package httpserver

import (
	"github.com/shopspring/decimal"

	"onlinestore/internal/cart"
	"onlinestore/internal/domain"
)

type productView struct {
	ID              int64            `json:"id"`
	Title           string           `json:"title"`
	Price           decimal.Decimal  `json:"price"`
	PriceLabel      string           `json:"priceLabel"`
	Description     string           `json:"description,omitempty"`
	Category        string           `json:"category,omitempty"`
	Image           string           `json:"image,omitempty"`
	Discount        *decimal.Decimal `json:"discount,omitempty"`
	HasDiscount     bool             `json:"hasDiscount"`
	DiscountedPrice decimal.Decimal  `json:"discountedPrice"`
	DiscountedLabel string           `json:"discountedPriceLabel"`
}

type lineItemView struct {
	Product       productView     `json:"product"`
	Quantity      int             `json:"quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	SubtotalLabel string          `json:"subtotalLabel"`
}

type cartView struct {
	SessionID     string          `json:"sessionId,omitempty"`
	Version       uint64          `json:"version"`
	LineItems     []lineItemView  `json:"lineItems"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalPrice    string          `json:"totalPrice"`
	TotalQuantity int             `json:"totalQuantity"`
	IsEmpty       bool            `json:"isEmpty"`
}

type quantityView struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type productListView struct {
	Count   int           `json:"count"`
	Results []productView `json:"results"`
}

func toProductView(p domain.Product, symbol string) productView {
	return productView{
		ID:              p.ID,
		Title:           p.Title,
		Price:           p.Price,
		PriceLabel:      cart.FormatAmount(symbol, p.Price),
		Description:     p.Description,
		Category:        p.Category,
		Image:           p.ImageURL,
		Discount:        p.Discount,
		HasDiscount:     p.HasDiscount(),
		DiscountedPrice: p.DiscountedPrice(),
		DiscountedLabel: cart.FormatAmount(symbol, p.DiscountedPrice()),
	}
}

func toCartView(sessionID string, snap cart.Snapshot, symbol string) cartView {
	items := make([]lineItemView, 0, len(snap.Items))
	for _, item := range snap.Items {
		subtotal := item.Subtotal()
		items = append(items, lineItemView{
			Product:       toProductView(item.Product, symbol),
			Quantity:      item.Quantity,
			Subtotal:      subtotal,
			SubtotalLabel: cart.FormatAmount(symbol, subtotal),
		})
	}
	return cartView{
		SessionID:     sessionID,
		Version:       snap.Version,
		LineItems:     items,
		TotalAmount:   snap.TotalAmount,
		TotalPrice:    snap.TotalPrice,
		TotalQuantity: snap.TotalQuantity,
		IsEmpty:       len(items) == 0,
	}
}
