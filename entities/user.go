package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns the patient records created from its uploads.
type User struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string `gorm:"type:varchar(100)" json:"name"`
	Email        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    string `gorm:"type:varchar(64)" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return
}
