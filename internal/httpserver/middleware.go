package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"onlinestore/internal/cart"
	"onlinestore/internal/session"
)

type ctxKey string

const (
	sessionCtxKey ctxKey = "session"
	engineCtxKey  ctxKey = "cart"
)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// sessionMiddleware resolves the X-Session-ID header to the session's cart engine.
func sessionMiddleware(store sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(sessionHeader))
		if id == "" {
			writeError(c, http.StatusBadRequest, "missing "+sessionHeader+" header")
			c.Abort()
			return
		}
		engine, err := store.Get(id)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				writeError(c, http.StatusNotFound, "session not found")
			} else {
				writeError(c, http.StatusInternalServerError, "session lookup failed")
			}
			c.Abort()
			return
		}
		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, id)
		ctx = context.WithValue(ctx, engineCtxKey, engine)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionFromContext(ctx context.Context) (string, *cart.Engine) {
	id, _ := ctx.Value(sessionCtxKey).(string)
	engine, _ := ctx.Value(engineCtxKey).(*cart.Engine)
	return id, engine
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"statusCode": status, "message": message})
}
