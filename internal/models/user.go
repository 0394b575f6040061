package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a recipe author and the owner of favourites, follows and a cart.
type User struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName returns "first last", falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
