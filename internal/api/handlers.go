package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Dependencies are the services behind the HTTP API.
type Dependencies struct {
	DB          *gorm.DB
	Auth        service.IAuthService
	Recipes     service.IRecipeService
	Tags        service.ITagService
	Ingredients service.IIngredientService
	Favourites  service.IFavouriteService
	Follows     service.IFollowService
	Cart        service.ICartService
	Images      service.IImageService
	Limiter     middleware.Limiter
	Logger      *zap.Logger
}

// guards are the per-route middlewares shared by every handler.
type guards struct {
	auth     gin.HandlerFunc
	optional gin.HandlerFunc
	limit    gin.HandlerFunc
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", healthCheck(deps.DB))

	g := guards{
		auth:     middleware.AuthMiddleware(deps.Auth),
		optional: middleware.OptionalAuth(deps.Auth),
		limit:    middleware.RateLimit(deps.Limiter, deps.Logger),
	}

	v1 := router.Group("/api/v1")
	NewRecipeHandler(deps.Recipes, deps.Images, deps.Logger).RegisterRoutes(v1, g)
	NewFavouriteHandler(deps.Recipes, deps.Favourites, deps.Logger).RegisterRoutes(v1, g)
	NewSubscriptionHandler(deps.Auth, deps.Recipes, deps.Follows, deps.Logger).RegisterRoutes(v1, g)
	NewPurchaseHandler(deps.Recipes, deps.Cart, deps.Logger).RegisterRoutes(v1, g)
	NewCatalogueHandler(deps.Tags, deps.Ingredients, deps.Logger).RegisterRoutes(v1)
}

// healthCheck returns the health status of the API
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
	}
}
