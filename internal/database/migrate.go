package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Recipe{}, "Tags", &models.RecipeTag{}); err != nil {
		return fmt.Errorf("setup recipe_tags join table: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeTag{},
		&models.Follow{},
		&models.Favourite{},
		&models.Cart{},
		&models.CartRecipe{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	return nil
}
