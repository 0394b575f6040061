package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	tagsCacheKey = "tags:all"
	tagsCacheTTL = 10 * time.Minute
)

// DefaultTags are created by SeedTags.
var DefaultTags = []models.Tag{
	{Name: "Breakfast", Color: "orange", Slug: "breakfast"},
	{Name: "Lunch", Color: "green", Slug: "lunch"},
	{Name: "Dinner", Color: "purple", Slug: "dinner"},
}

// TagService reads tags through an optional Redis cache.
type TagService struct {
	db    *gorm.DB
	cache *redis.Client
	log   *zap.Logger
}

func NewTagService(db *gorm.DB, cache *redis.Client, log *zap.Logger) *TagService {
	return &TagService{db: db, cache: cache, log: log.Named("tags")}
}

// List returns every tag ordered by slug.
func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	if tags, ok := s.cached(ctx); ok {
		return tags, nil
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("slug").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	// An empty table is never cached so a later seed shows up immediately.
	if s.cache != nil && len(tags) > 0 {
		payload, err := json.Marshal(tags)
		if err == nil {
			err = s.cache.Set(ctx, tagsCacheKey, payload, tagsCacheTTL).Err()
		}
		if err != nil {
			s.log.Warn("failed to cache tags", zap.Error(err))
		}
	}
	return tags, nil
}

func (s *TagService) cached(ctx context.Context) ([]models.Tag, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, tagsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("tag cache unavailable", zap.Error(err))
		}
		return nil, false
	}

	var tags []models.Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		s.log.Warn("discarding corrupt tag cache", zap.Error(err))
		return nil, false
	}
	return tags, true
}

// Invalidate drops the cached tag list.
func (s *TagService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, tagsCacheKey).Err(); err != nil {
		s.log.Warn("failed to invalidate tag cache", zap.Error(err))
	}
}

// ResolveFilter returns the slugs a listing should filter by. No slugs means
// every known slug, read from the database so the filter never lags the
// tag cache.
func (s *TagService) ResolveFilter(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return uniqueStrings(requested), nil
	}

	var slugs []string
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Order("slug").Pluck("slug", &slugs).Error; err != nil {
		return nil, fmt.Errorf("resolve tag filter: %w", err)
	}
	return slugs, nil
}

// FindBySlugs loads the tags named by slugs and reports the ones that do not exist.
func (s *TagService) FindBySlugs(ctx context.Context, slugs []string) ([]models.Tag, []string, error) {
	slugs = uniqueStrings(slugs)
	if len(slugs) == 0 {
		return nil, nil, nil
	}

	var found []models.Tag
	if err := s.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&found).Error; err != nil {
		return nil, nil, fmt.Errorf("find tags: %w", err)
	}

	bySlug := make(map[string]models.Tag, len(found))
	for _, tag := range found {
		bySlug[tag.Slug] = tag
	}

	tags := make([]models.Tag, 0, len(slugs))
	var missing []string
	for _, slug := range slugs {
		tag, ok := bySlug[slug]
		if !ok {
			missing = append(missing, slug)
			continue
		}
		tags = append(tags, tag)
	}
	return tags, missing, nil
}

// SeedTags upserts DefaultTags by slug.
func (s *TagService) SeedTags(ctx context.Context) error {
	for _, tag := range DefaultTags {
		tag := tag
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "color"}),
		}).Create(&tag).Error
		if err != nil {
			return fmt.Errorf("seed tag %s: %w", tag.Slug, err)
		}
	}

	s.Invalidate(ctx)
	s.log.Info("default tags seeded", zap.Int("count", len(DefaultTags)))
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
