package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a chat user. ExternalID is the id assigned by the chat front end.
type User struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ExternalID *string   `gorm:"column:external_id;uniqueIndex:users_external_id_key"`
	Email      *string   `gorm:"column:email;type:text;index:users_email_idx"`
	Name       *string   `gorm:"column:name"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
