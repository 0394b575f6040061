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

// CartService manages each user's shopping cart.
type CartService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCartService(db *gorm.DB, log *zap.Logger) *CartService {
	return &CartService{db: db, log: log.Named("cart")}
}

// GetOrCreate returns owner's cart, creating it on first use.
func (s *CartService) GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	cart := models.Cart{OwnerID: ownerID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	var stored models.Cart
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &stored, nil
}

// Add puts recipeID into the owner's cart. Adding twice is a no-op.
func (s *CartService) Add(ctx context.Context, ownerID, recipeID uuid.UUID) error {
	if err := recipeExists(ctx, s.db, recipeID); err != nil {
		return err
	}

	cart, err := s.GetOrCreate(ctx, ownerID)
	if err != nil {
		return err
	}

	link := models.CartRecipe{CartID: cart.ID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

// Remove reports whether recipeID was in the cart.
func (s *CartService) Remove(ctx context.Context, ownerID, recipeID uuid.UUID) (bool, error) {
	cart, err := s.find(ctx, ownerID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	res := s.db.WithContext(ctx).
		Where("cart_id = ? AND recipe_id = ?", cart.ID, recipeID).
		Delete(&models.CartRecipe{})
	if res.Error != nil {
		return false, fmt.Errorf("remove from cart: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Count returns how many recipes are in the owner's cart.
func (s *CartService) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CartRecipe{}).
		Joins("JOIN carts ON carts.id = cart_recipes.cart_id").
		Where("carts.owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count cart: %w", err)
	}
	return count, nil
}

// PurchaseList sums the ingredients of every recipe in the owner's cart.
func (s *CartService) PurchaseList(ctx context.Context, ownerID uuid.UUID) ([]PurchaseItem, error) {
	var rows []PurchaseRow
	err := s.db.WithContext(ctx).
		Table("cart_recipes").
		Select("ingredients.name AS name, ingredients.unit AS unit, recipe_ingredients.amount AS amount").
		Joins("JOIN carts ON carts.id = cart_recipes.cart_id").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = cart_recipes.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("carts.owner_id = ?", ownerID).
		Order("cart_recipes.id").
		Order("recipe_ingredients.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load purchase rows: %w", err)
	}

	items := AggregateIngredients(rows)
	s.log.Debug("purchase list built", zap.String("owner_id", ownerID.String()), zap.Int("rows", len(rows)), zap.Int("items", len(items)))
	return items, nil
}

func (s *CartService) find(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &cart, nil
}
