package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	RecipesPageSize       = 6
	SubscriptionsPageSize = 3
	SubscriptionPreview   = 3

	// maxPage keeps (page-1)*pageSize well inside int range.
	maxPage = 1 << 20
)

// clampPage bounds a requested page number to [1, maxPage].
func clampPage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > maxPage:
		return maxPage
	}
	return page
}

// RecipeService handles recipe listings and authoring
type RecipeService struct {
	db          *gorm.DB
	tags        *TagService
	ingredients *IngredientService
	log         *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, tags *TagService, ingredients *IngredientService, log *zap.Logger) *RecipeService {
	return &RecipeService{
		db:          db,
		tags:        tags,
		ingredients: ingredients,
		log:         log.Named("recipes"),
	}
}

type listQuery struct {
	viewer     *uuid.UUID
	scope      func(*gorm.DB) *gorm.DB
	tags       []string
	filterTags bool
	page       int
	pageSize   int
}

// List returns the index page filtered by tag slugs.
func (s *RecipeService) List(ctx context.Context, viewer *uuid.UUID, params types.ListParams) (types.Page[types.RecipeResponse], error) {
	return s.list(ctx, listQuery{
		viewer:     viewer,
		tags:       params.Tags,
		filterTags: true,
		page:       params.Page,
		pageSize:   RecipesPageSize,
	})
}

// ListFavourites returns recipes the viewer has favourited.
func (s *RecipeService) ListFavourites(ctx context.Context, viewer uuid.UUID, params types.ListParams) (types.Page[types.RecipeResponse], error) {
	return s.list(ctx, listQuery{
		viewer: &viewer,
		scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("recipes.id IN (?)", s.db.WithContext(ctx).
				Model(&models.Favourite{}).
				Select("recipe_id").
				Where("user_id = ?", viewer))
		},
		tags:       params.Tags,
		filterTags: true,
		page:       params.Page,
		pageSize:   RecipesPageSize,
	})
}

// ListByAuthor returns recipes written by authorID.
func (s *RecipeService) ListByAuthor(ctx context.Context, viewer *uuid.UUID, authorID uuid.UUID, params types.ListParams) (types.Page[types.RecipeResponse], error) {
	return s.list(ctx, listQuery{
		viewer: viewer,
		scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("recipes.author_id = ?", authorID)
		},
		tags:       params.Tags,
		filterTags: true,
		page:       params.Page,
		pageSize:   RecipesPageSize,
	})
}

// ListCart returns the recipes in owner's cart. Tags do not filter the cart.
func (s *RecipeService) ListCart(ctx context.Context, owner uuid.UUID, page int) (types.Page[types.RecipeResponse], error) {
	return s.list(ctx, listQuery{
		viewer: &owner,
		scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("recipes.id IN (?)", s.cartRecipeIDs(ctx, owner))
		},
		page:     page,
		pageSize: RecipesPageSize,
	})
}

func (s *RecipeService) list(ctx context.Context, q listQuery) (types.Page[types.RecipeResponse], error) {
	page := clampPage(q.page)

	query := s.db.WithContext(ctx).Model(&models.Recipe{})
	if q.scope != nil {
		query = q.scope(query)
	}
	if q.filterTags {
		slugs, err := s.tags.ResolveFilter(ctx, q.tags)
		if err != nil {
			return types.Page[types.RecipeResponse]{}, err
		}
		query = query.Where("recipes.id IN (?)", s.db.WithContext(ctx).
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", slugs))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return types.Page[types.RecipeResponse]{}, fmt.Errorf("count recipes: %w", err)
	}

	var recipes []models.Recipe
	if err := withDetails(query).
		Order("recipes.pub_date DESC").
		Order("recipes.id").
		Offset((page - 1) * q.pageSize).
		Limit(q.pageSize).
		Find(&recipes).Error; err != nil {
		return types.Page[types.RecipeResponse]{}, fmt.Errorf("list recipes: %w", err)
	}

	results, err := s.present(ctx, q.viewer, recipes)
	if err != nil {
		return types.Page[types.RecipeResponse]{}, err
	}

	out := types.NewPage(results, page, q.pageSize, total)
	out.Tags = q.tags
	return out, nil
}

// latestByAuthor returns the author's recipe count and newest recipes.
func (s *RecipeService) latestByAuthor(ctx context.Context, viewer uuid.UUID, authorID uuid.UUID, limit int) (int64, []types.RecipeResponse, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("recipes.author_id = ?", authorID).
		Session(&gorm.Session{})

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, nil, fmt.Errorf("count author recipes: %w", err)
	}

	var recipes []models.Recipe
	if err := withDetails(query).
		Order("recipes.pub_date DESC").
		Order("recipes.id").
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return 0, nil, fmt.Errorf("latest author recipes: %w", err)
	}

	results, err := s.present(ctx, &viewer, recipes)
	if err != nil {
		return 0, nil, err
	}
	return count, results, nil
}

// Get returns one recipe as seen by viewer.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := withDetails(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	results, err := s.present(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// Create stores a new recipe written by author.
func (s *RecipeService) Create(ctx context.Context, author uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	lines, tags, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        req.Name,
		AuthorID:    author,
		CookTime:    req.CookTime,
		Description: req.Description,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		return replaceComponents(tx, recipe.ID, lines, tags)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("recipe created", zap.String("recipe_id", recipe.ID.String()), zap.String("author_id", author.String()))
	return s.Get(ctx, recipe.ID, &author)
}

// Update rewrites a recipe, replacing its ingredient lines and tags.
func (s *RecipeService) Update(ctx context.Context, id, editor uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	if err := s.CheckAuthor(ctx, id, editor); err != nil {
		return nil, err
	}

	lines, tags, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":        req.Name,
			"description": req.Description,
			"cook_time":   req.CookTime,
		}).Error; err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		return replaceComponents(tx, id, lines, tags)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("recipe updated", zap.String("recipe_id", id.String()))
	return s.Get(ctx, id, &editor)
}

// Delete removes a recipe together with everything that points at it.
func (s *RecipeService) Delete(ctx context.Context, id, editor uuid.UUID) error {
	if err := s.CheckAuthor(ctx, id, editor); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Favourite{},
			&models.CartRecipe{},
			&models.RecipeIngredient{},
			&models.RecipeTag{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Recipe{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	s.log.Info("recipe deleted", zap.String("recipe_id", id.String()))
	return nil
}

// CheckAuthor returns ErrNotFound or ErrForbidden unless editor wrote the recipe.
func (s *RecipeService) CheckAuthor(ctx context.Context, id, editor uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("id", "author_id").First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get recipe: %w", err)
	}
	if recipe.AuthorID != editor {
		return ErrForbidden
	}
	return nil
}

// SetImage records the stored picture URL on the recipe.
func (s *RecipeService) SetImage(ctx context.Context, id, editor uuid.UUID, imageURL string) (*types.RecipeResponse, error) {
	if err := s.CheckAuthor(ctx, id, editor); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Update("image_url", imageURL).Error; err != nil {
		return nil, fmt.Errorf("set recipe image: %w", err)
	}
	return s.Get(ctx, id, &editor)
}

// validate trims the request text, then checks it against the struct rules
// and the catalogue. Repeated ingredients keep their first position and
// their last amount.
func (s *RecipeService) validate(ctx context.Context, req *types.RecipeRequest) ([]models.RecipeIngredient, []models.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	verr := &ValidationError{}
	if err := getValidator().Struct(req); err != nil {
		verr.Errors = append(verr.Errors, fieldErrors(err)...)
	}

	if len(req.Ingredients) == 0 {
		verr.add("recipe must contain ingredients")
	}

	var (
		order       []uuid.UUID
		amounts     = make(map[uuid.UUID]int, len(req.Ingredients))
		badAmount   bool
		missingName bool
	)
	for _, item := range req.Ingredients {
		if item.Amount < 1 && !badAmount {
			verr.add("amount must be greater than 0")
			badAmount = true
		}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			if !missingName {
				verr.add("ingredient name is required")
				missingName = true
			}
			continue
		}

		ingredient, err := s.ingredients.Resolve(ctx, name, strings.TrimSpace(item.Unit))
		if errors.Is(err, ErrNotFound) {
			verr.add(fmt.Sprintf("ingredient %s does not exist", name))
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		if _, seen := amounts[ingredient.ID]; !seen {
			order = append(order, ingredient.ID)
		}
		amounts[ingredient.ID] = item.Amount
	}

	tags, missing, err := s.tags.FindBySlugs(ctx, req.Tags)
	if err != nil {
		return nil, nil, err
	}
	for _, slug := range missing {
		verr.add(fmt.Sprintf("tag %s does not exist", slug))
	}

	if err := verr.orNil(); err != nil {
		return nil, nil, err
	}

	lines := make([]models.RecipeIngredient, len(order))
	for i, id := range order {
		lines[i] = models.RecipeIngredient{IngredientID: id, Amount: amounts[id]}
	}
	return lines, tags, nil
}

func replaceComponents(tx *gorm.DB, recipeID uuid.UUID, lines []models.RecipeIngredient, tags []models.Tag) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("clear ingredients: %w", err)
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}

	for i := range lines {
		lines[i].RecipeID = recipeID
	}
	if len(lines) > 0 {
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return fmt.Errorf("add ingredients: %w", err)
		}
	}

	if len(tags) > 0 {
		links := make([]models.RecipeTag, len(tags))
		for i, tag := range tags {
			links[i] = models.RecipeTag{RecipeID: recipeID, TagID: tag.ID}
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("add tags: %w", err)
		}
	}
	return nil
}

func (s *RecipeService) cartRecipeIDs(ctx context.Context, owner uuid.UUID) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("cart_recipes").
		Select("cart_recipes.recipe_id").
		Joins("JOIN carts ON carts.id = cart_recipes.cart_id").
		Where("carts.owner_id = ?", owner)
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.slug")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id")
		}).
		Preload("Ingredients.Ingredient")
}

// present converts recipes and marks the viewer's favourites and cart entries.
func (s *RecipeService) present(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	favourites := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}

	if viewer != nil && len(recipes) > 0 {
		ids := make([]uuid.UUID, len(recipes))
		for i, r := range recipes {
			ids[i] = r.ID
		}

		var favIDs []uuid.UUID
		if err := s.db.WithContext(ctx).Model(&models.Favourite{}).
			Where("user_id = ? AND recipe_id IN ?", *viewer, ids).
			Pluck("recipe_id", &favIDs).Error; err != nil {
			return nil, fmt.Errorf("load favourites: %w", err)
		}
		for _, id := range favIDs {
			favourites[id] = true
		}

		var cartIDs []uuid.UUID
		if err := s.cartRecipeIDs(ctx, *viewer).
			Where("cart_recipes.recipe_id IN ?", ids).
			Pluck("cart_recipes.recipe_id", &cartIDs).Error; err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		for _, id := range cartIDs {
			inCart[id] = true
		}
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		out[i] = toRecipeResponse(&recipes[i])
		out[i].IsFavourite = favourites[recipes[i].ID]
		out[i].InCart = inCart[recipes[i].ID]
	}
	return out, nil
}

func toRecipeResponse(r *models.Recipe) types.RecipeResponse {
	tags := make([]types.TagResponse, len(r.Tags))
	for i, tag := range r.Tags {
		tags[i] = types.TagResponse{Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
	}

	ingredients := make([]types.RecipeIngredientResponse, len(r.Ingredients))
	for i, line := range r.Ingredients {
		ingredients[i] = types.RecipeIngredientResponse{
			Name:   line.Ingredient.Name,
			Unit:   line.Ingredient.Unit,
			Amount: line.Amount,
		}
	}

	return types.RecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Author:      AuthorSummary(&r.Author),
		CookTime:    r.CookTime,
		Description: r.Description,
		PubDate:     r.PubDate,
		ImageURL:    r.ImageURL,
		Tags:        tags,
		Ingredients: ingredients,
	}
}

// AuthorSummary is the public view of u.
func AuthorSummary(u *models.User) types.AuthorSummary {
	return types.AuthorSummary{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName(),
	}
}
