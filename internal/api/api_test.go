package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	db     *gorm.DB
	auth   *service.AuthService
	images *mocks.MockImageService
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	log := zap.NewNop()
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	tags := service.NewTagService(db, nil, log)
	ingredients := service.NewIngredientService(db, log)
	recipes := service.NewRecipeService(db, tags, ingredients, log)
	images := new(mocks.MockImageService)

	router := gin.New()
	RegisterRoutes(router, Dependencies{
		DB:          db,
		Auth:        auth,
		Recipes:     recipes,
		Tags:        tags,
		Ingredients: ingredients,
		Favourites:  service.NewFavouriteService(db, log),
		Follows:     service.NewFollowService(db, recipes, log),
		Cart:        service.NewCartService(db, log),
		Images:      images,
		Limiter:     middleware.NewMemoryLimiter(middleware.RateLimitConfig{Window: time.Minute, Limit: 1000}),
		Logger:      log,
	})

	return &testServer{db: db, auth: auth, images: images, router: router}
}

type jsonBody = map[string]any

func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := s.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

// do sends body as JSON; a nil user makes an anonymous request.
func (s *testServer) do(t *testing.T, method, path string, user *models.User, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(t, user))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
