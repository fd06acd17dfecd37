// Package http exposes the order, payment, catalog, and user workflows over
// a JSON API under /api.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	catalogapp "github.com/Zhima-Mochi/shopcore/internal/application/catalog"
	orderapp "github.com/Zhima-Mochi/shopcore/internal/application/order"
	paymentapp "github.com/Zhima-Mochi/shopcore/internal/application/payment"
	userapp "github.com/Zhima-Mochi/shopcore/internal/application/user"
	"github.com/Zhima-Mochi/shopcore/internal/observability"
)

type RouterConfig struct {
	ServiceName string
	Orders      *orderapp.Service
	Payments    *paymentapp.Service
	Products    *catalogapp.Service
	Users       *userapp.Service
	Telemetry   observability.Observability
}

// NewRouter builds the gin engine with tracing and observability middleware
// and every API route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(cfg.ServiceName))
	engine.Use(ObservabilityMiddleware(cfg.Telemetry))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	api := engine.Group("/api")
	NewOrderHandler(cfg.Orders).Register(api)
	NewPaymentHandler(cfg.Payments).Register(api)
	NewProductHandler(cfg.Products).Register(api)
	NewUserHandler(cfg.Users).Register(api)

	return engine
}
