package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavouriteService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewFavouriteService(db *gorm.DB, log *zap.Logger) *FavouriteService {
	return &FavouriteService{db: db, log: log.Named("favourites")}
}

// Add marks recipeID as a favourite of userID. Adding twice is a no-op.
func (s *FavouriteService) Add(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := recipeExists(ctx, s.db, recipeID); err != nil {
		return err
	}

	fav := models.Favourite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
		return fmt.Errorf("add favourite: %w", err)
	}
	return nil
}

// Remove reports whether a favourite was deleted.
func (s *FavouriteService) Remove(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favourite{})
	if res.Error != nil {
		return false, fmt.Errorf("remove favourite: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func recipeExists(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	var recipe models.Recipe
	if err := db.WithContext(ctx).Select("id").First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get recipe: %w", err)
	}
	return nil
}

func userExists(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	var user models.User
	if err := db.WithContext(ctx).Select("id").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	return nil
}
