package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID          uuid.UUID          `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Name        string             `gorm:"size:60;not null" json:"name"`
	AuthorID    uuid.UUID          `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	CookTime    int                `gorm:"not null" json:"cook_time"`
	Description string             `gorm:"type:text;not null" json:"description"`
	PubDate     time.Time          `gorm:"not null;index" json:"pub_date"`
	ImageURL    string             `gorm:"size:255" json:"image_url"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.PubDate.IsZero() {
		r.PubDate = time.Now().UTC()
	}
	return nil
}

// RecipeIngredient is one line of a recipe: a catalogue ingredient and its amount.
type RecipeIngredient struct {
	ID           uint       `gorm:"primarykey" json:"-"`
	RecipeID     uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"-"`
	IngredientID uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"-"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredient"`
	Amount       int        `gorm:"not null" json:"amount"`
}

// RecipeTag is the join row between recipes and tags.
type RecipeTag struct {
	RecipeID uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	TagID    uuid.UUID `gorm:"type:varchar(36);primaryKey;index"`
}
