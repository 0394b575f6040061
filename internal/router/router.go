package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/telemetry"
)

// SetupRouter configures the global middleware chain and the application routes
func SetupRouter(cfg *config.Config, deps api.Dependencies) *gin.Engine {
	gin.SetMode(cfg.Env.GinMode())

	router := gin.New()

	router.Use(
		middleware.Recovery(deps.Logger),
		telemetry.SentryMiddleware(),
		telemetry.TracingMiddleware(),
		metrics.Middleware(),
		middleware.RequestLogger(deps.Logger),
		middleware.CORS(cfg.CORSOrigins),
		gzip.Gzip(gzip.DefaultCompression),
	)

	router.GET("/metrics", metrics.Handler())
	api.RegisterRoutes(router, deps)
	router.NoRoute(middleware.NotFound)

	return router
}
