package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow means UserID subscribes to AuthorID's recipes.
type Follow struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_follow_pair" json:"user_id"`
	AuthorID  uuid.UUID `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_follow_pair" json:"author_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
