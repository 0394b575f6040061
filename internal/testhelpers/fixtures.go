package testhelpers

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Line is one ingredient of a fixture recipe.
type Line struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateUser creates a user called username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: "hashed_password",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateTag creates a tag whose name is the slug.
func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: slug, Color: "gray", Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, Unit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

var pubSeq atomic.Int64

// CreateRecipe stores a recipe by author with the given tags and lines. Each
// call gets a later pub date than the previous one.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, lines ...Line) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Name:        name,
		AuthorID:    author.ID,
		CookTime:    30,
		Description: name + " description",
		PubDate:     time.Now().UTC().Add(time.Duration(pubSeq.Add(1)) * time.Second),
	}
	if err := db.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}

	for _, line := range lines {
		ri := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: line.Ingredient.ID, Amount: line.Amount}
		if err := db.Omit("Ingredient").Create(ri).Error; err != nil {
			t.Fatalf("failed to add ingredient to %s: %v", name, err)
		}
	}
	for _, tag := range tags {
		if err := db.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
			t.Fatalf("failed to tag %s: %v", name, err)
		}
	}
	return recipe
}

// NewRedis starts an in-process Redis and a client connected to it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// MockTokenValidator returns fixed claims for any token.
type MockTokenValidator struct {
	Claims *types.TokenClaims
	Error  error
}

func (m *MockTokenValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Claims, nil
}

// ClaimsFor builds token claims for user.
func ClaimsFor(user *models.User) *types.TokenClaims {
	return &types.TokenClaims{UserID: user.ID, Username: user.Username}
}

// IDPtr returns a pointer to id.
func IDPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
