package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"onlinestore/internal/cart"
	"onlinestore/internal/domain"
)

type handlers struct {
	logger   *zap.Logger
	symbol   string
	catalog  catalogService
	sessions sessionStore
	orders   orderSubmitter
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list products", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to list products")
		return
	}
	results := make([]productView, 0, len(products))
	for _, p := range products {
		results = append(results, toProductView(p, h.symbol))
	}
	c.JSON(http.StatusOK, productListView{Count: len(results), Results: results})
}

func (h *handlers) getProduct(c *gin.Context) {
	product, ok := h.lookupProduct(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toProductView(*product, h.symbol))
}

func (h *handlers) createSession(c *gin.Context) {
	id, engine, err := h.sessions.Create()
	if err != nil {
		h.logger.Error("create session", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	c.Header(sessionHeader, id)
	c.JSON(http.StatusCreated, toCartView(id, engine.Snapshot(), engine.CurrencySymbol()))
}

func (h *handlers) deleteSession(c *gin.Context) {
	id, _ := sessionFromContext(c.Request.Context())
	h.sessions.Delete(id)
	c.Status(http.StatusNoContent)
}

func (h *handlers) getCart(c *gin.Context) {
	id, engine := sessionFromContext(c.Request.Context())
	c.JSON(http.StatusOK, toCartView(id, engine.Snapshot(), engine.CurrencySymbol()))
}

func (h *handlers) clearCart(c *gin.Context) {
	id, engine := sessionFromContext(c.Request.Context())
	engine.RemoveAllItems()
	c.JSON(http.StatusOK, toCartView(id, engine.Snapshot(), engine.CurrencySymbol()))
}

func (h *handlers) addItem(c *gin.Context) {
	h.mutate(c, (*cart.Engine).AddToCart)
}

func (h *handlers) removeItem(c *gin.Context) {
	h.mutateHeld(c, (*cart.Engine).RemoveFromCart)
}

func (h *handlers) removeAllOfItem(c *gin.Context) {
	h.mutateHeld(c, (*cart.Engine).RemoveAllFromCart)
}

func (h *handlers) itemQuantity(c *gin.Context) {
	product, ok := h.lookupProduct(c)
	if !ok {
		return
	}
	_, engine := sessionFromContext(c.Request.Context())
	c.JSON(http.StatusOK, quantityView{ProductID: product.ID, Quantity: engine.Quantity(*product)})
}

func (h *handlers) checkout(c *gin.Context) {
	id, engine := sessionFromContext(c.Request.Context())
	order, err := h.orders.Submit(c.Request.Context(), engine.Snapshot())
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			writeError(c, http.StatusUnprocessableEntity, "cart is empty")
			return
		}
		h.logger.Error("checkout", zap.String("session_id", id), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "unable to send order, try again later")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// mutate resolves the catalog product named in the path and applies op to
// the session's cart.
func (h *handlers) mutate(c *gin.Context, op func(*cart.Engine, domain.Product)) {
	product, ok := h.lookupProduct(c)
	if !ok {
		return
	}
	id, engine := sessionFromContext(c.Request.Context())
	op(engine, *product)
	c.JSON(http.StatusOK, toCartView(id, engine.Snapshot(), engine.CurrencySymbol()))
}

// mutateHeld applies op to the product the cart already holds under the
// path id, so lines stay removable after their catalog row changes. Ids not
// in the cart fall back to the catalog.
func (h *handlers) mutateHeld(c *gin.Context, op func(*cart.Engine, domain.Product)) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid product id")
		return
	}
	id, engine := sessionFromContext(c.Request.Context())
	for _, item := range engine.Items() {
		if item.Product.ID == productID {
			op(engine, item.Product)
			c.JSON(http.StatusOK, toCartView(id, engine.Snapshot(), engine.CurrencySymbol()))
			return
		}
	}
	h.mutate(c, op)
}

func (h *handlers) lookupProduct(c *gin.Context) (*domain.Product, bool) {
	raw := c.Param("productId")
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid product id")
		return nil, false
	}
	product, err := h.catalog.Get(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, "product not found")
			return nil, false
		}
		h.logger.Error("get product", zap.Int64("product_id", productID), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to load product")
		return nil, false
	}
	return product, true
}
