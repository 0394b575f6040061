package models

import (
	"time"

	"github.com/google/uuid"
)

type Favourite struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index;uniqueIndex:unique_favourite_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;index;uniqueIndex:unique_favourite_user_recipe" json:"recipe_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
