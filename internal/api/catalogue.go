package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogueHandler serves the read-only tag and ingredient catalogues.
type CatalogueHandler struct {
	tags        service.ITagService
	ingredients service.IIngredientService
	log         *zap.Logger
}

func NewCatalogueHandler(tags service.ITagService, ingredients service.IIngredientService, log *zap.Logger) *CatalogueHandler {
	return &CatalogueHandler{tags: tags, ingredients: ingredients, log: log}
}

func (h *CatalogueHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags", h.ListTags)
	router.GET("/ingredients", h.SearchIngredients)
}

func (h *CatalogueHandler) ListTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]types.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, types.TagResponse{Name: t.Name, Color: t.Color, Slug: t.Slug})
	}
	c.JSON(http.StatusOK, out)
}

// SearchIngredients answers the recipe form autocomplete.
func (h *CatalogueHandler) SearchIngredients(c *gin.Context) {
	ingredients, err := h.ingredients.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]types.IngredientSuggestion, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, types.IngredientSuggestion{Title: i.Name, Dimension: i.Unit})
	}
	c.JSON(http.StatusOK, out)
}
