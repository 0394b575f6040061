package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID    uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name  string    `gorm:"size:20;not null" json:"name"`
	Color string    `gorm:"size:20" json:"color"`
	Slug  string    `gorm:"size:20;not null;uniqueIndex" json:"slug"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
