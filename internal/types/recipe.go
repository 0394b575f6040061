package types

import (
	"time"

	"github.com/google/uuid"
)

// AuthorSummary is the public view of a user.
type AuthorSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

type TagResponse struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type RecipeIngredientResponse struct {
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Amount int    `json:"amount"`
}

// RecipeResponse is a recipe as seen by a particular viewer.
type RecipeResponse struct {
	ID          uuid.UUID                  `json:"id"`
	Name        string                     `json:"name"`
	Author      AuthorSummary              `json:"author"`
	CookTime    int                        `json:"cook_time"`
	Description string                     `json:"description"`
	PubDate     time.Time                  `json:"pub_date"`
	ImageURL    string                     `json:"image_url,omitempty"`
	Tags        []TagResponse              `json:"tags"`
	Ingredients []RecipeIngredientResponse `json:"ingredients"`
	IsFavourite bool                       `json:"is_favourite"`
	InCart      bool                       `json:"in_cart"`
}

// IngredientSuggestion is the autocomplete shape expected by the recipe form.
type IngredientSuggestion struct {
	Title     string `json:"title"`
	Dimension string `json:"dimension"`
}

// SubscriptionResponse is a followed author with a preview of their recipes.
type SubscriptionResponse struct {
	Author       AuthorSummary    `json:"author"`
	RecipesCount int64            `json:"recipes_count"`
	Recipes      []RecipeResponse `json:"recipes"`
}

// ProfileResponse is an author's page as seen by a viewer.
type ProfileResponse struct {
	Owner     AuthorSummary        `json:"owner"`
	Following bool                 `json:"following"`
	Recipes   Page[RecipeResponse] `json:"recipes"`
}

// Page wraps one page of a listing.
type Page[T any] struct {
	Results    []T      `json:"results"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	Total      int64    `json:"total"`
	TotalPages int      `json:"total_pages"`
	Tags       []string `json:"tags,omitempty"`
}

// NewPage fills in the derived totals.
func NewPage[T any](results []T, page, pageSize int, total int64) Page[T] {
	if results == nil {
		results = []T{}
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Page[T]{
		Results:    results,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
