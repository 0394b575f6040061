package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type stack struct {
	db     *gorm.DB
	auth   *service.AuthService
	router *gin.Engine
}

func setup(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupPostgres(t)
	_, cache := testhelpers.NewRedis(t)
	log := zap.NewNop()

	auth := service.NewAuthService(db, "integration-secret", time.Hour)
	tags := service.NewTagService(db, cache, log)
	ingredients := service.NewIngredientService(db, log)
	recipes := service.NewRecipeService(db, tags, ingredients, log)

	ctx := context.Background()
	require.NoError(t, tags.SeedTags(ctx))
	_, err := ingredients.LoadCSV(ctx, strings.NewReader("flour,g\nmilk,ml\neggs,pcs\nrice,g\n"))
	require.NoError(t, err)

	r := router.SetupRouter(&config.Config{Env: config.Test}, api.Dependencies{
		DB:          db,
		Auth:        auth,
		Recipes:     recipes,
		Tags:        tags,
		Ingredients: ingredients,
		Favourites:  service.NewFavouriteService(db, log),
		Follows:     service.NewFollowService(db, recipes, log),
		Cart:        service.NewCartService(db, log),
		Images:      service.NewImageService(nil, log),
		Limiter: middleware.NewLimiter(cache, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     1000,
			KeyPrefix: "rate_limit:test",
		}),
		Logger: log,
	})

	return &stack{db: db, auth: auth, router: r}
}

func (s *stack) user(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	user, err := s.auth.CreateUser(context.Background(), service.CreateUserParams{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	token, err := s.auth.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func (s *stack) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func createRecipe(t *testing.T, s *stack, token, name, tag string, ingredients ...types.IngredientRequest) types.RecipeResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/recipes", token, types.RecipeRequest{
		Name:        name,
		Description: name + " instructions",
		CookTime:    15,
		Tags:        []string{tag},
		Ingredients: ingredients,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var recipe types.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	return recipe
}

func TestRecipeLifecycle(t *testing.T) {
	s := setup(t)
	_, aliceToken := s.user(t, "alice")
	_, bobToken := s.user(t, "bob")

	pancakes := createRecipe(t, s, aliceToken, "Pancakes", "breakfast",
		types.IngredientRequest{Name: "flour", Amount: 200},
		types.IngredientRequest{Name: "milk", Amount: 300},
		types.IngredientRequest{Name: "flour", Amount: 250})
	pilaf := createRecipe(t, s, aliceToken, "Pilaf", "dinner",
		types.IngredientRequest{Name: "rice", Amount: 400},
		types.IngredientRequest{Name: "flour", Amount: 50})

	require.Len(t, pancakes.Ingredients, 2)
	assert.Equal(t, 250, pancakes.Ingredients[0].Amount)

	t.Run("tag filter", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/recipes?tags=dinner", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page types.Page[types.RecipeResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.Len(t, page.Results, 1)
		assert.Equal(t, pilaf.ID, page.Results[0].ID)

		w = s.do(t, http.MethodGet, "/api/v1/recipes", "", nil)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("shopping list", func(t *testing.T) {
		for _, id := range []string{pancakes.ID.String(), pilaf.ID.String()} {
			w := s.do(t, http.MethodPost, "/api/v1/purchases", bobToken, map[string]string{"id": id})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		}

		w := s.do(t, http.MethodGet, "/api/v1/purchases/download", bobToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "flour, g - 300\nmilk, ml - 300\nrice, g - 400\n", w.Body.String())
	})

	t.Run("delete cascades", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/favourites", bobToken, map[string]string{"id": pancakes.ID.String()})
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodDelete, "/api/v1/recipes/"+pancakes.ID.String(), aliceToken, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/purchases/count", bobToken, nil)
		assert.JSONEq(t, `{"count":1}`, w.Body.String())

		var favourites int64
		require.NoError(t, s.db.Model(&models.Favourite{}).Count(&favourites).Error)
		assert.Zero(t, favourites)
	})
}

func TestConcurrentToggles(t *testing.T) {
	s := setup(t)
	alice, aliceToken := s.user(t, "alice")
	_, bobToken := s.user(t, "bob")
	recipe := createRecipe(t, s, aliceToken, "Omelette", "breakfast",
		types.IngredientRequest{Name: "eggs", Amount: 3})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			s.do(t, http.MethodPost, "/api/v1/favourites", bobToken, map[string]string{"id": recipe.ID.String()})
		}()
		go func() {
			defer wg.Done()
			s.do(t, http.MethodPost, "/api/v1/purchases", bobToken, map[string]string{"id": recipe.ID.String()})
		}()
		go func() {
			defer wg.Done()
			s.do(t, http.MethodPost, "/api/v1/subscriptions", bobToken, map[string]string{"id": alice.ID.String()})
		}()
	}
	wg.Wait()

	for model, want := range map[any]int64{
		&models.Favourite{}:  1,
		&models.CartRecipe{}: 1,
		&models.Cart{}:       1,
		&models.Follow{}:     1,
	} {
		var count int64
		require.NoError(t, s.db.Model(model).Count(&count).Error)
		assert.Equal(t, want, count, "%T", model)
	}
}
