package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowService manages subscriptions between users and authors.
type FollowService struct {
	db      *gorm.DB
	recipes *RecipeService
	log     *zap.Logger
}

func NewFollowService(db *gorm.DB, recipes *RecipeService, log *zap.Logger) *FollowService {
	return &FollowService{db: db, recipes: recipes, log: log.Named("follows")}
}

// Follow subscribes userID to authorID. Following twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, userID, authorID uuid.UUID) error {
	if userID == authorID {
		return ErrFollowSelf
	}
	if err := userExists(ctx, s.db, authorID); err != nil {
		return err
	}

	follow := models.Follow{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error; err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	return nil
}

// Unfollow reports whether a subscription was deleted.
func (s *FollowService) Unfollow(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	if err := userExists(ctx, s.db, authorID); err != nil {
		return false, err
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, fmt.Errorf("unfollow: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return count > 0, nil
}

// ListSubscriptions pages through the authors userID follows, each with a
// recipe count and their latest recipes.
func (s *FollowService) ListSubscriptions(ctx context.Context, userID uuid.UUID, page int) (types.Page[types.SubscriptionResponse], error) {
	page = clampPage(page)

	query := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return types.Page[types.SubscriptionResponse]{}, fmt.Errorf("count subscriptions: %w", err)
	}

	var authors []models.User
	if err := query.
		Select("users.*").
		Order("follows.id").
		Offset((page - 1) * SubscriptionsPageSize).
		Limit(SubscriptionsPageSize).
		Find(&authors).Error; err != nil {
		return types.Page[types.SubscriptionResponse]{}, fmt.Errorf("list subscriptions: %w", err)
	}

	results := make([]types.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		count, latest, err := s.recipes.latestByAuthor(ctx, userID, authors[i].ID, SubscriptionPreview)
		if err != nil {
			return types.Page[types.SubscriptionResponse]{}, err
		}
		results = append(results, types.SubscriptionResponse{
			Author:       AuthorSummary(&authors[i]),
			RecipesCount: count,
			Recipes:      latest,
		})
	}

	return types.NewPage(results, page, SubscriptionsPageSize, total), nil
}
