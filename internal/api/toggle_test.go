package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestFavouriteHandler(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	bob := testhelpers.CreateUser(t, s.db, "bob")
	tag := testhelpers.CreateTag(t, s.db, "lunch")
	recipe := testhelpers.CreateRecipe(t, s.db, alice, "Soup", []*models.Tag{tag})

	w := s.do(t, http.MethodPost, "/api/v1/favourites", bob, jsonBody{"id": recipe.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	// adding twice is a no-op
	w = s.do(t, http.MethodPost, "/api/v1/favourites", bob, jsonBody{"id": recipe.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/favourites", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.RecipeResponse]](t, w)
	require.Len(t, page.Results, 1)
	assert.True(t, page.Results[0].IsFavourite)

	w = s.do(t, http.MethodDelete, "/api/v1/favourites/"+recipe.ID.String(), bob, nil)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	// removing twice is a no-op
	w = s.do(t, http.MethodDelete, "/api/v1/favourites/"+recipe.ID.String(), bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/v1/favourites/"+uuid.NewString(), bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/favourites", bob, jsonBody{"id": uuid.New()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/favourites", bob, jsonBody{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionHandler(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	bob := testhelpers.CreateUser(t, s.db, "bob")
	tag := testhelpers.CreateTag(t, s.db, "dinner")
	for _, name := range []string{"One", "Two", "Three", "Four"} {
		testhelpers.CreateRecipe(t, s.db, alice, name, []*models.Tag{tag})
	}

	w := s.do(t, http.MethodPost, "/api/v1/subscriptions", bob, jsonBody{"id": bob.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/subscriptions", bob, jsonBody{"id": alice.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/subscriptions", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.SubscriptionResponse]](t, w)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "alice", page.Results[0].Author.Username)
	assert.Equal(t, int64(4), page.Results[0].RecipesCount)
	require.Len(t, page.Results[0].Recipes, 3)
	assert.Equal(t, "Four", page.Results[0].Recipes[0].Name)

	t.Run("profile", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/profiles/alice", bob, nil)
		require.Equal(t, http.StatusOK, w.Code)

		profile := decode[types.ProfileResponse](t, w)
		assert.Equal(t, alice.ID, profile.Owner.ID)
		assert.True(t, profile.Following)
		assert.Equal(t, int64(4), profile.Recipes.Total)

		w = s.do(t, http.MethodGet, "/api/v1/profiles/alice", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, decode[types.ProfileResponse](t, w).Following)

		w = s.do(t, http.MethodGet, "/api/v1/profiles/nobody", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	w = s.do(t, http.MethodDelete, "/api/v1/subscriptions/"+alice.ID.String(), bob, nil)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/v1/subscriptions/"+alice.ID.String(), bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	// unknown authors are still an error
	w = s.do(t, http.MethodDelete, "/api/v1/subscriptions/"+uuid.NewString(), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
