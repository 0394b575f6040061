package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestIngredientService_LoadCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	csv := "salt,g\nsugar, g\n\nmilk,ml\n"
	result, err := env.ingredients.LoadCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, LoadResult{Created: 3}, result)

	result, err = env.ingredients.LoadCSV(ctx, strings.NewReader("salt,g\nflour,g\n"))
	require.NoError(t, err)
	assert.Equal(t, LoadResult{Created: 1, Existing: 1}, result)

	var count int64
	require.NoError(t, env.db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestIngredientService_LoadCSVMalformed(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ingredients.LoadCSV(context.Background(), strings.NewReader("salt,g\nbroken\nmilk,ml\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	var count int64
	require.NoError(t, env.db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIngredientService_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testhelpers.CreateIngredient(t, env.db, "sugar", "g")
	testhelpers.CreateIngredient(t, env.db, "salt", "g")
	testhelpers.CreateIngredient(t, env.db, "milk", "ml")
	testhelpers.CreateIngredient(t, env.db, "50%_cream", "ml")

	found, err := env.ingredients.Search(ctx, "s")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "salt", found[0].Name)
	assert.Equal(t, "sugar", found[1].Name)

	found, err = env.ingredients.Search(ctx, "mil/")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ml", found[0].Unit)

	found, err = env.ingredients.Search(ctx, "50%_")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = env.ingredients.Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, found)

	all, err := env.ingredients.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
