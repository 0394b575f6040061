package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is a user's shopping list of recipes. Every user has at most one.
type Cart struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	OwnerID   uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"owner_id"`
	Owner     User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartRecipe links a recipe into a cart; the autoincrement ID records insertion order.
type CartRecipe struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	CartID    uuid.UUID `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_cart_recipe" json:"cart_id"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_cart_recipe" json:"recipe_id"`
	Cart      Cart      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
