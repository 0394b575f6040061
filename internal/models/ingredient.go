package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is a catalogue entry shared by every recipe.
type Ingredient struct {
	ID   uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name string    `gorm:"size:60;not null;index:idx_ingredient_name_unit" json:"name"`
	Unit string    `gorm:"size:20;not null;index:idx_ingredient_name_unit" json:"unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i Ingredient) String() string {
	return i.Name + ", " + i.Unit
}
