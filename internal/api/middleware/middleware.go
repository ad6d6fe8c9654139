// Package middleware — общие обработчики цепочки gin: идентификатор запроса,
// журнал, метрики, перехват паник и проверка токена.
package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	v1 "github.com/Spok95/practice-fund/internal/api/handler/v1"
	"github.com/Spok95/practice-fund/internal/api/handler/v1/response"
	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/ctxutil"
	"github.com/Spok95/practice-fund/internal/metrics"
	"github.com/Spok95/practice-fund/internal/observability"
)

// RequestID выдаёт X-Request-ID (или принимает клиентский) и кладёт его в context запроса.
func RequestID() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		requestid.New(requestid.WithGenerator(uuid.NewString)),
		func(c *gin.Context) {
			id := requestid.Get(c)
			c.Set(response.RequestIDKey, id)
			c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), id))
			c.Next()
		},
	}
}

// AccessLog пишет строку на запрос и считает запросы по маршруту и коду.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestid.Get(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}

// Recovery превращает панику обработчика в 500 и отправляет её в Sentry.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		err := fmt.Errorf("panic: %v", rec)
		observability.CaptureErrCtx(c.Request.Context(), err)
		log.Error("handler panic", zap.Any("recovered", rec), zap.String("request_id", requestid.Get(c)))
		response.RenderErr(c, response.ErrInternalServerError(err))
	})
}

// Verifier проверяет токен и возвращает записанное в нём право.
type Verifier interface {
	Verify(token string) (auth.Capability, error)
}

var errNoToken = errors.New("missing bearer token")

// RequireCapability пропускает запрос только с действующим токеном; право уходит в обработчик.
func RequireCapability(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(h, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			response.RenderErr(c, response.ErrUnauthorized(errNoToken))
			return
		}
		cp, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			response.RenderErr(c, response.FromError(err))
			return
		}
		c.Set(v1.CapabilityKey, &cp)
		c.Request = c.Request.WithContext(ctxutil.WithActor(c.Request.Context(), cp.Subject))
		c.Next()
	}
}
