package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type cartResponse struct {
	SessionID     string `json:"sessionId"`
	Version       uint64 `json:"version"`
	TotalAmount   string `json:"totalAmount"`
	TotalPrice    string `json:"totalPrice"`
	TotalQuantity int    `json:"totalQuantity"`
	IsEmpty       bool   `json:"isEmpty"`
	LineItems     []struct {
		Product struct {
			ID int64 `json:"id"`
		} `json:"product"`
		Quantity      int    `json:"quantity"`
		SubtotalLabel string `json:"subtotalLabel"`
	} `json:"lineItems"`
}

func do(t *testing.T, router *gin.Engine, method, path, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var out cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode cart: %v body=%s", err, rec.Body.String())
	}
	return out
}

func newSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	id := rec.Header().Get(sessionHeader)
	if id == "" {
		t.Fatalf("expected session header")
	}
	body := decodeCart(t, rec)
	if body.SessionID != id || !body.IsEmpty || body.TotalPrice != "$0.00" {
		t.Fatalf("unexpected new session body %+v", body)
	}
	return id
}

func TestCartFlow(t *testing.T) {
	router := testRouter(t, Deps{})
	sid := newSession(t, router)

	for _, path := range []string{
		"/cart/items/1", "/cart/items/1", "/cart/items/1",
		"/cart/items/2",
		"/cart/items/3", "/cart/items/3",
	} {
		if rec := do(t, router, http.MethodPost, path, sid); rec.Code != http.StatusOK {
			t.Fatalf("add %s: expected 200, got %d", path, rec.Code)
		}
	}

	rec := do(t, router, http.MethodGet, "/cart", sid)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeCart(t, rec)
	if body.TotalPrice != "$628.92" || body.TotalAmount != "628.92" || body.TotalQuantity != 6 {
		t.Fatalf("unexpected totals %+v", body)
	}
	if len(body.LineItems) != 3 || body.LineItems[0].Product.ID != 1 || body.LineItems[0].SubtotalLabel != "$369.36" {
		t.Fatalf("unexpected line items %+v", body.LineItems)
	}

	do(t, router, http.MethodDelete, "/cart/items/1/all", sid)
	rec = do(t, router, http.MethodDelete, "/cart/items/3/all", sid)
	body = decodeCart(t, rec)
	if len(body.LineItems) != 1 || body.LineItems[0].Product.ID != 2 || body.TotalQuantity != 1 {
		t.Fatalf("unexpected cart after remove all %+v", body)
	}

	rec = do(t, router, http.MethodDelete, "/cart/items/2", sid)
	body = decodeCart(t, rec)
	if !body.IsEmpty {
		t.Fatalf("expected empty cart, got %+v", body)
	}

	rec = do(t, router, http.MethodDelete, "/cart/items/2", sid)
	if rec.Code != http.StatusOK {
		t.Fatalf("removing absent item must be a no-op, got %d", rec.Code)
	}
}

func TestItemQuantity(t *testing.T) {
	router := testRouter(t, Deps{})
	sid := newSession(t, router)

	do(t, router, http.MethodPost, "/cart/items/4", sid)
	do(t, router, http.MethodPost, "/cart/items/4", sid)

	rec := do(t, router, http.MethodGet, "/cart/items/4/quantity", sid)
	var q quantityView
	if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.ProductID != 4 || q.Quantity != 2 {
		t.Fatalf("unexpected quantity %+v", q)
	}

	rec = do(t, router, http.MethodGet, "/cart/items/1/quantity", sid)
	if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Quantity != 0 {
		t.Fatalf("expected 0 for product not in cart, got %d", q.Quantity)
	}

	body := decodeCart(t, do(t, router, http.MethodGet, "/cart", sid))
	if body.TotalPrice != "$160.00" {
		t.Fatalf("expected discounted total, got %s", body.TotalPrice)
	}
}

func TestCartItemErrors(t *testing.T) {
	router := testRouter(t, Deps{})
	sid := newSession(t, router)

	if rec := do(t, router, http.MethodPost, "/cart/items/abc", sid); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/cart/items/999", sid); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	failing := testRouter(t, Deps{Catalog: &stubCatalog{err: errors.New("db down")}})
	sid = newSession(t, failing)
	if rec := do(t, failing, http.MethodPost, "/cart/items/1", sid); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestClearCart(t *testing.T) {
	router := testRouter(t, Deps{})
	sid := newSession(t, router)
	do(t, router, http.MethodPost, "/cart/items/1", sid)
	do(t, router, http.MethodPost, "/cart/items/2", sid)

	body := decodeCart(t, do(t, router, http.MethodDelete, "/cart", sid))
	if !body.IsEmpty || body.TotalAmount != "0" || body.TotalPrice != "$0.00" {
		t.Fatalf("unexpected cleared cart %+v", body)
	}
}

func TestCheckout(t *testing.T) {
	orders := &stubOrders{}
	router := testRouter(t, Deps{Orders: orders})
	sid := newSession(t, router)

	if rec := do(t, router, http.MethodPost, "/cart/checkout", sid); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty cart, got %d", rec.Code)
	}

	do(t, router, http.MethodPost, "/cart/items/2", sid)
	rec := do(t, router, http.MethodPost, "/cart/checkout", sid)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(orders.submitted) != 1 || orders.submitted[0].TotalPrice != "$77.56" {
		t.Fatalf("unexpected submissions %+v", orders.submitted)
	}

	body := decodeCart(t, do(t, router, http.MethodGet, "/cart", sid))
	if body.TotalQuantity != 1 {
		t.Fatalf("checkout must not clear the cart, got %+v", body)
	}
}

func TestCheckoutFailure(t *testing.T) {
	router := testRouter(t, Deps{Orders: &stubOrders{err: errors.New("boom")}})
	sid := newSession(t, router)
	do(t, router, http.MethodPost, "/cart/items/2", sid)

	if rec := do(t, router, http.MethodPost, "/cart/checkout", sid); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	router := testRouter(t, Deps{})
	sid := newSession(t, router)

	if rec := do(t, router, http.MethodDelete, "/sessions", sid); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/cart", sid); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestListProducts(t *testing.T) {
	router := testRouter(t, Deps{CurrencySymbol: "€"})

	rec := do(t, router, http.MethodGet, "/products", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		Count   int `json:"count"`
		Results []struct {
			ID              int64  `json:"id"`
			HasDiscount     bool   `json:"hasDiscount"`
			DiscountedLabel string `json:"discountedPriceLabel"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 4 || !out.Results[3].HasDiscount || out.Results[3].DiscountedLabel != "€80.00" {
		t.Fatalf("unexpected products %+v", out)
	}

	if rec := do(t, router, http.MethodGet, "/products/404", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRemoveAfterCatalogChange(t *testing.T) {
	catalog := testCatalog(t)
	router := testRouter(t, Deps{Catalog: catalog})
	sid := newSession(t, router)

	do(t, router, http.MethodPost, "/cart/items/1", sid)
	do(t, router, http.MethodPost, "/cart/items/1", sid)
	do(t, router, http.MethodPost, "/cart/items/2", sid)

	catalog.products[1] = mustProduct(t, 1, "test1 renamed", "130.00", "")
	delete(catalog.products, 2)

	rec := do(t, router, http.MethodDelete, "/cart/items/1", sid)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeCart(t, rec)
	if body.TotalQuantity != 2 || body.LineItems[0].Quantity != 1 {
		t.Fatalf("expected held product decremented, got %+v", body)
	}

	do(t, router, http.MethodDelete, "/cart/items/2/all", sid)
	body = decodeCart(t, do(t, router, http.MethodDelete, "/cart/items/1/all", sid))
	if !body.IsEmpty {
		t.Fatalf("expected lines for changed and deleted products removed, got %+v", body)
	}

	if rec := do(t, router, http.MethodDelete, "/cart/items/2", sid); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for id neither in cart nor catalog, got %d", rec.Code)
	}
}
