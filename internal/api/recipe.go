package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes service.IRecipeService
	images  service.IImageService
	log     *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, images service.IImageService, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, images: images, log: log}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, g guards) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", g.optional, h.ListRecipes)
		recipes.GET("/:id", g.optional, h.GetRecipe)
		recipes.POST("", g.auth, g.limit, h.CreateRecipe)
		recipes.PUT("/:id", g.auth, g.limit, h.UpdateRecipe)
		recipes.DELETE("/:id", g.auth, g.limit, h.DeleteRecipe)
		recipes.POST("/:id/image", g.auth, g.limit, h.UploadImage)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var params types.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.recipes.List(c.Request.Context(), viewer(c), params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id, viewer(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	metrics.RecipeWrites.WithLabelValues("create").Inc()
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), id, userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	metrics.RecipeWrites.WithLabelValues("update").Inc()
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	metrics.RecipeWrites.WithLabelValues("delete").Inc()
	c.Status(http.StatusNoContent)
}

// UploadImage stores the multipart "image" field as the recipe picture.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if !h.images.Enabled() {
		respondError(c, h.log, service.ErrStorageDisabled)
		return
	}
	if err := h.recipes.CheckAuthor(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.log, err)
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"image is required"}})
		return
	}
	if header.Size > service.MaxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"image must be at most 5 MiB"}})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageSize+1))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	url, err := h.images.UploadRecipeImage(c.Request.Context(), data)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	recipe, err := h.recipes.SetImage(c.Request.Context(), id, userID, url)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
