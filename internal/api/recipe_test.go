package api

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func recipeBody() types.RecipeRequest {
	return types.RecipeRequest{
		Name:        "Pancakes",
		Description: "Fluffy",
		CookTime:    20,
		Tags:        []string{"breakfast"},
		Ingredients: []types.IngredientRequest{
			{Name: "flour", Amount: 200},
			{Name: "milk", Amount: 300},
		},
	}
}

func TestRecipeHandler_Create(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	testhelpers.CreateTag(t, s.db, "breakfast")
	testhelpers.CreateIngredient(t, s.db, "flour", "g")
	testhelpers.CreateIngredient(t, s.db, "milk", "ml")

	w := s.do(t, http.MethodPost, "/api/v1/recipes", alice, recipeBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	recipe := decode[types.RecipeResponse](t, w)
	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, "alice", recipe.Author.Username)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, types.RecipeIngredientResponse{Name: "flour", Unit: "g", Amount: 200}, recipe.Ingredients[0])
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "breakfast", recipe.Tags[0].Slug)
	assert.False(t, recipe.IsFavourite)
}

func TestRecipeHandler_CreateValidation(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	testhelpers.CreateIngredient(t, s.db, "flour", "g")

	body := recipeBody()
	body.CookTime = 0
	body.Tags = []string{"supper"}
	body.Ingredients = []types.IngredientRequest{{Name: "flour", Amount: 0}, {Name: "unobtainium", Amount: 1}}

	w := s.do(t, http.MethodPost, "/api/v1/recipes", alice, body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[struct {
		Errors []string `json:"errors"`
	}](t, w)
	assert.Contains(t, resp.Errors, "cook time must be greater than 0")
	assert.Contains(t, resp.Errors, "amount must be greater than 0")
	assert.Contains(t, resp.Errors, "ingredient unobtainium does not exist")
	assert.Contains(t, resp.Errors, "tag supper does not exist")

	var count int64
	require.NoError(t, s.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecipeHandler_CreateMalformedJSON(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token(t, alice))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipeHandler_ListAndGet(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	bob := testhelpers.CreateUser(t, s.db, "bob")
	breakfast := testhelpers.CreateTag(t, s.db, "breakfast")
	dinner := testhelpers.CreateTag(t, s.db, "dinner")
	eggs := testhelpers.CreateRecipe(t, s.db, alice, "Eggs", []*models.Tag{breakfast})
	stew := testhelpers.CreateRecipe(t, s.db, alice, "Stew", []*models.Tag{dinner})
	require.NoError(t, s.db.Create(&models.Favourite{UserID: bob.ID, RecipeID: eggs.ID}).Error)

	t.Run("anonymous index is newest first", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/recipes", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		page := decode[types.Page[types.RecipeResponse]](t, w)
		assert.Equal(t, int64(2), page.Total)
		require.Len(t, page.Results, 2)
		assert.Equal(t, stew.ID, page.Results[0].ID)
		assert.False(t, page.Results[1].IsFavourite)
	})

	t.Run("tag filter", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/recipes?tags=breakfast", bob, nil)
		require.Equal(t, http.StatusOK, w.Code)

		page := decode[types.Page[types.RecipeResponse]](t, w)
		require.Len(t, page.Results, 1)
		assert.Equal(t, eggs.ID, page.Results[0].ID)
		assert.True(t, page.Results[0].IsFavourite)
	})

	t.Run("detail", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/recipes/"+eggs.ID.String(), bob, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[types.RecipeResponse](t, w).IsFavourite)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/recipes/not-a-uuid", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad page", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/recipes?page=abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRecipeHandler_UpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	bob := testhelpers.CreateUser(t, s.db, "bob")
	breakfast := testhelpers.CreateTag(t, s.db, "breakfast")
	testhelpers.CreateIngredient(t, s.db, "flour", "g")
	testhelpers.CreateIngredient(t, s.db, "milk", "ml")
	recipe := testhelpers.CreateRecipe(t, s.db, alice, "Draft", []*models.Tag{breakfast})
	path := "/api/v1/recipes/" + recipe.ID.String()

	w := s.do(t, http.MethodPut, path, bob, recipeBody())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, path, alice, recipeBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Pancakes", decode[types.RecipeResponse](t, w).Name)

	w = s.do(t, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func imageRequest(t *testing.T, path, token string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "picture.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRecipeHandler_UploadImage(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	bob := testhelpers.CreateUser(t, s.db, "bob")
	recipe := testhelpers.CreateRecipe(t, s.db, alice, "Toast", nil)
	path := "/api/v1/recipes/" + recipe.ID.String() + "/image"
	png := []byte("\x89PNG\r\n\x1a\n")

	s.images.On("Enabled").Return(true)
	s.images.On("UploadRecipeImage", mock.Anything, png).
		Return("https://bucket.test/recipe_pictures/toast.png", nil).Once()

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, imageRequest(t, path, s.token(t, bob), png))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, imageRequest(t, path, s.token(t, alice), png))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "https://bucket.test/recipe_pictures/toast.png", decode[types.RecipeResponse](t, w).ImageURL)

	s.images.AssertExpectations(t)
}

func TestRecipeHandler_UploadImageErrors(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	recipe := testhelpers.CreateRecipe(t, s.db, alice, "Toast", nil)
	path := "/api/v1/recipes/" + recipe.ID.String() + "/image"

	t.Run("storage disabled", func(t *testing.T) {
		s.images.On("Enabled").Return(false).Once()

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, imageRequest(t, path, s.token(t, alice), []byte("x")))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("upload fails", func(t *testing.T) {
		s.images.On("Enabled").Return(true).Once()
		s.images.On("UploadRecipeImage", mock.Anything, mock.Anything).Return("", errors.New("s3 down")).Once()

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, imageRequest(t, path, s.token(t, alice), []byte("x")))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
