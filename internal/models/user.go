package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName    string         `gorm:"size:150;not null" json:"first_name"`
	LastName     string         `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string         `gorm:"not null" json:"-"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Follow records a subscription of one user to an author's recipes.
// A user cannot follow the same author twice, and cannot follow themselves;
// the self-follow rule is enforced in the service layer.
type Follow struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_follow_user_author" json:"user_id"`
	AuthorID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_follow_user_author" json:"author_id"`
}

func (f *Follow) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
