package types

import "github.com/google/uuid"

// RecipeRequest is the body of recipe create and update calls.
type RecipeRequest struct {
	Name        string              `json:"name" validate:"required,max=60"`
	Description string              `json:"description" validate:"required"`
	CookTime    int                 `json:"cook_time" validate:"gte=1"`
	Tags        []string            `json:"tags" validate:"dive,required,max=20"`
	Ingredients []IngredientRequest `json:"ingredients"`
}

// IngredientRequest references a catalogue ingredient by name, and by unit
// when the name alone is ambiguous.
type IngredientRequest struct {
	Name   string `json:"name"`
	Unit   string `json:"unit,omitempty"`
	Amount int    `json:"amount"`
}

// ToggleRequest is the body of the favourite, subscription and purchase add calls.
type ToggleRequest struct {
	ID uuid.UUID `json:"id" binding:"required"`
}

// ListParams are the common query parameters of paginated listings.
type ListParams struct {
	Tags []string `form:"tags"`
	Page int      `form:"page"`
}
