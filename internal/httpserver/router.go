package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"onlinestore/internal/cart"
	"onlinestore/internal/domain"
)

const sessionHeader = "X-Session-ID"

type catalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

type sessionStore interface {
	Create() (string, *cart.Engine, error)
	Get(id string) (*cart.Engine, error)
	Delete(id string)
}

type orderSubmitter interface {
	Submit(ctx context.Context, snap cart.Snapshot) (*domain.Order, error)
}

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Catalog        catalogService
	Sessions       sessionStore
	Orders         orderSubmitter
	CurrencySymbol string
	AllowOrigins   []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Catalog == nil || deps.Sessions == nil || deps.Orders == nil {
		return nil, errors.New("httpserver: catalog, sessions and orders are required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), cors.New(corsConfig(deps.AllowOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	symbol := deps.CurrencySymbol
	if symbol == "" {
		symbol = cart.DefaultCurrencySymbol
	}
	h := &handlers{logger: logger, symbol: symbol, catalog: deps.Catalog, sessions: deps.Sessions, orders: deps.Orders}

	router.GET("/products", h.listProducts)
	router.GET("/products/:productId", h.getProduct)

	router.POST("/sessions", h.createSession)
	router.DELETE("/sessions", sessionMiddleware(deps.Sessions), h.deleteSession)

	cartGroup := router.Group("/cart", sessionMiddleware(deps.Sessions))
	cartGroup.GET("", h.getCart)
	cartGroup.DELETE("", h.clearCart)
	cartGroup.POST("/items/:productId", h.addItem)
	cartGroup.DELETE("/items/:productId", h.removeItem)
	cartGroup.DELETE("/items/:productId/all", h.removeAllOfItem)
	cartGroup.GET("/items/:productId/quantity", h.itemQuantity)
	cartGroup.POST("/checkout", h.checkout)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", sessionHeader},
		ExposeHeaders: []string{sessionHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
