package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type FavouriteHandler struct {
	recipes    service.IRecipeService
	favourites service.IFavouriteService
	log        *zap.Logger
}

func NewFavouriteHandler(recipes service.IRecipeService, favourites service.IFavouriteService, log *zap.Logger) *FavouriteHandler {
	return &FavouriteHandler{recipes: recipes, favourites: favourites, log: log}
}

func (h *FavouriteHandler) RegisterRoutes(router *gin.RouterGroup, g guards) {
	favourites := router.Group("/favourites", g.auth)
	{
		favourites.GET("", h.ListFavourites)
		favourites.POST("", g.limit, h.AddFavourite)
		favourites.DELETE("/:id", g.limit, h.RemoveFavourite)
	}
}

func (h *FavouriteHandler) ListFavourites(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var params types.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.recipes.ListFavourites(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *FavouriteHandler) AddFavourite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := bindToggle(c)
	if !ok {
		return
	}

	err := h.favourites.Add(c.Request.Context(), userID, req.ID)
	toggleAdded(c, h.log, "favourite", err)
}

func (h *FavouriteHandler) RemoveFavourite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	removed, err := h.favourites.Remove(c.Request.Context(), userID, id)
	toggleRemoved(c, h.log, "favourite", removed, err)
}
