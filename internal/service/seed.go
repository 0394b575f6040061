package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/pageza/foodgram/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxSeedRecipes      = 10
	seedIngredientCount = 5
	maxSeedFavourites   = 20
)

var (
	ErrNothingToSeed = errors.New("tags and ingredients must be loaded before filling the database")

	seedDishes = []string{"Soup", "Salad", "Pie", "Stew", "Omelette", "Pasta", "Curry", "Pancakes", "Risotto", "Tart"}
	seedStyles = []string{"Grandma's", "Quick", "Spicy", "Rustic", "Summer", "Winter", "Hearty", "Light", "Smoky", "Creamy"}
)

// SeedResult reports what FillDB created.
type SeedResult struct {
	Recipes    int
	Favourites int
}

// Seeder fills a development database with random recipes and favourites.
type Seeder struct {
	db  *gorm.DB
	rnd *rand.Rand
	log *zap.Logger
}

func NewSeeder(db *gorm.DB, rnd *rand.Rand, log *zap.Logger) *Seeder {
	return &Seeder{db: db, rnd: rnd, log: log.Named("seed")}
}

// FillDB gives every user 0..10 recipes and then 1..20 favourites among the
// recipes of other users.
func (s *Seeder) FillDB(ctx context.Context) (SeedResult, error) {
	var (
		users       []models.User
		tags        []models.Tag
		ingredients []models.Ingredient
		result      SeedResult
	)
	db := s.db.WithContext(ctx)
	if err := db.Order("username").Find(&users).Error; err != nil {
		return result, fmt.Errorf("load users: %w", err)
	}
	if err := db.Find(&tags).Error; err != nil {
		return result, fmt.Errorf("load tags: %w", err)
	}
	if err := db.Find(&ingredients).Error; err != nil {
		return result, fmt.Errorf("load ingredients: %w", err)
	}
	if len(tags) == 0 || len(ingredients) < seedIngredientCount {
		return result, ErrNothingToSeed
	}

	for _, user := range users {
		n := s.rnd.Intn(maxSeedRecipes + 1)
		for i := 0; i < n; i++ {
			if err := s.createRecipe(ctx, user, tags, ingredients); err != nil {
				return result, err
			}
			result.Recipes++
		}
	}

	for _, user := range users {
		var candidates []models.Recipe
		if err := db.Select("id").Where("author_id <> ?", user.ID).Find(&candidates).Error; err != nil {
			return result, fmt.Errorf("load recipes: %w", err)
		}
		if len(candidates) == 0 {
			continue
		}

		n := 1 + s.rnd.Intn(maxSeedFavourites)
		if n > len(candidates) {
			n = len(candidates)
		}
		for _, idx := range s.rnd.Perm(len(candidates))[:n] {
			fav := models.Favourite{UserID: user.ID, RecipeID: candidates[idx].ID}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav)
			if res.Error != nil {
				return result, fmt.Errorf("add favourite: %w", res.Error)
			}
			result.Favourites += int(res.RowsAffected)
		}
	}

	s.log.Info("database filled",
		zap.Int("users", len(users)),
		zap.Int("recipes", result.Recipes),
		zap.Int("favourites", result.Favourites))
	return result, nil
}

func (s *Seeder) createRecipe(ctx context.Context, author models.User, tags []models.Tag, ingredients []models.Ingredient) error {
	name := seedStyles[s.rnd.Intn(len(seedStyles))] + " " + seedDishes[s.rnd.Intn(len(seedDishes))]
	recipe := models.Recipe{
		Name:        name,
		AuthorID:    author.ID,
		CookTime:    10 + s.rnd.Intn(111),
		Description: fmt.Sprintf("%s by %s.", name, author.FullName()),
	}

	lines := make([]models.RecipeIngredient, 0, seedIngredientCount)
	for _, idx := range s.rnd.Perm(len(ingredients))[:seedIngredientCount] {
		lines = append(lines, models.RecipeIngredient{
			IngredientID: ingredients[idx].ID,
			Amount:       50 + s.rnd.Intn(451),
		})
	}
	tag := tags[s.rnd.Intn(len(tags))]

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		return replaceComponents(tx, recipe.ID, lines, []models.Tag{tag})
	})
}
