package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestSeeder_FillDB(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		testhelpers.CreateUser(t, env.db, fmt.Sprintf("user%d", i))
	}
	require.NoError(t, env.tags.SeedTags(ctx))
	for i := 0; i < 8; i++ {
		testhelpers.CreateIngredient(t, env.db, fmt.Sprintf("ingredient%d", i), "g")
	}

	seeder := NewSeeder(env.db, rand.New(rand.NewSource(42)), zap.NewNop())
	result, err := seeder.FillDB(ctx)
	require.NoError(t, err)

	var recipes []models.Recipe
	require.NoError(t, env.db.Preload("Ingredients").Preload("Tags").Find(&recipes).Error)
	assert.Len(t, recipes, result.Recipes)
	assert.LessOrEqual(t, result.Recipes, 4*maxSeedRecipes)
	for _, r := range recipes {
		assert.Len(t, r.Ingredients, seedIngredientCount)
		assert.Len(t, r.Tags, 1)
		assert.GreaterOrEqual(t, r.CookTime, 10)
		assert.LessOrEqual(t, r.CookTime, 120)
		for _, line := range r.Ingredients {
			assert.GreaterOrEqual(t, line.Amount, 50)
			assert.LessOrEqual(t, line.Amount, 500)
		}
	}

	var ownFavourites int64
	require.NoError(t, env.db.Model(&models.Favourite{}).
		Joins("JOIN recipes ON recipes.id = favourites.recipe_id").
		Where("recipes.author_id = favourites.user_id").
		Count(&ownFavourites).Error)
	assert.Zero(t, ownFavourites)

	var favourites int64
	require.NoError(t, env.db.Model(&models.Favourite{}).Count(&favourites).Error)
	assert.Equal(t, int64(result.Favourites), favourites)
}

func TestSeeder_RequiresCatalogue(t *testing.T) {
	env := newTestEnv(t)
	testhelpers.CreateUser(t, env.db, "user")

	_, err := NewSeeder(env.db, rand.New(rand.NewSource(1)), zap.NewNop()).FillDB(context.Background())
	assert.ErrorIs(t, err, ErrNothingToSeed)
}
