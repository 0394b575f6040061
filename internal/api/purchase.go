package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type PurchaseHandler struct {
	recipes service.IRecipeService
	cart    service.ICartService
	log     *zap.Logger
}

func NewPurchaseHandler(recipes service.IRecipeService, cart service.ICartService, log *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{recipes: recipes, cart: cart, log: log}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup, g guards) {
	purchases := router.Group("/purchases", g.auth)
	{
		purchases.GET("", h.ListCart)
		purchases.GET("/count", h.Count)
		purchases.GET("/download", h.Download)
		purchases.POST("", g.limit, h.AddToCart)
		purchases.DELETE("/:id", g.limit, h.RemoveFromCart)
	}
}

func (h *PurchaseHandler) ListCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var params types.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.cart.GetOrCreate(ctx, userID); err != nil {
		respondError(c, h.log, err)
		return
	}

	page, err := h.recipes.ListCart(ctx, userID, params.Page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PurchaseHandler) Count(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.cart.Count(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Download sends the aggregated shopping list as a text attachment.
func (h *PurchaseHandler) Download(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.cart.PurchaseList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	metrics.PurchaseListDownloads.Inc()
	metrics.PurchaseListItems.Observe(float64(len(items)))

	filename := service.PurchaseFileName(middleware.Username(c))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", service.RenderPurchaseList(items))
}

func (h *PurchaseHandler) AddToCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := bindToggle(c)
	if !ok {
		return
	}

	err := h.cart.Add(c.Request.Context(), userID, req.ID)
	toggleAdded(c, h.log, "purchase", err)
}

func (h *PurchaseHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	removed, err := h.cart.Remove(c.Request.Context(), userID, id)
	toggleRemoved(c, h.log, "purchase", removed, err)
}
