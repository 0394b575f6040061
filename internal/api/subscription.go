package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type SubscriptionHandler struct {
	auth    service.IAuthService
	recipes service.IRecipeService
	follows service.IFollowService
	log     *zap.Logger
}

func NewSubscriptionHandler(auth service.IAuthService, recipes service.IRecipeService, follows service.IFollowService, log *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{auth: auth, recipes: recipes, follows: follows, log: log}
}

func (h *SubscriptionHandler) RegisterRoutes(router *gin.RouterGroup, g guards) {
	subscriptions := router.Group("/subscriptions", g.auth)
	{
		subscriptions.GET("", h.ListSubscriptions)
		subscriptions.POST("", g.limit, h.Follow)
		subscriptions.DELETE("/:id", g.limit, h.Unfollow)
	}

	router.GET("/profiles/:username", g.optional, h.GetProfile)
}

func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var params types.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.follows.ListSubscriptions(c.Request.Context(), userID, params.Page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *SubscriptionHandler) Follow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := bindToggle(c)
	if !ok {
		return
	}

	err := h.follows.Follow(c.Request.Context(), userID, req.ID)
	toggleAdded(c, h.log, "subscription", err)
}

func (h *SubscriptionHandler) Unfollow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	removed, err := h.follows.Unfollow(c.Request.Context(), userID, id)
	toggleRemoved(c, h.log, "subscription", removed, err)
}

// GetProfile renders an author's page with their recipes, newest first.
func (h *SubscriptionHandler) GetProfile(c *gin.Context) {
	var params types.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	owner, err := h.auth.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	v := viewer(c)
	recipes, err := h.recipes.ListByAuthor(ctx, v, owner.ID, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	following := false
	if v != nil && *v != owner.ID {
		if following, err = h.follows.IsFollowing(ctx, *v, owner.ID); err != nil {
			respondError(c, h.log, err)
			return
		}
	}

	c.JSON(http.StatusOK, types.ProfileResponse{
		Owner:     service.AuthorSummary(owner),
		Following: following,
		Recipes:   recipes,
	})
}
