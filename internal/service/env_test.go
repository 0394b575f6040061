package service

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

type testEnv struct {
	db          *gorm.DB
	tags        *TagService
	ingredients *IngredientService
	recipes     *RecipeService
	favourites  *FavouriteService
	follows     *FollowService
	cart        *CartService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithCache(t, nil)
}

func newTestEnvWithCache(t *testing.T, cache *redis.Client) *testEnv {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	log := zap.NewNop()
	tags := NewTagService(db, cache, log)
	ingredients := NewIngredientService(db, log)
	recipes := NewRecipeService(db, tags, ingredients, log)

	return &testEnv{
		db:          db,
		tags:        tags,
		ingredients: ingredients,
		recipes:     recipes,
		favourites:  NewFavouriteService(db, log),
		follows:     NewFollowService(db, recipes, log),
		cart:        NewCartService(db, log),
	}
}
