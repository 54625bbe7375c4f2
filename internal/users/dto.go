package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/mia-backend/pkg/db/models"
	"github.com/google/uuid"
)

// RegisterUserDTO identifies a chat user by external id, email or both.
type RegisterUserDTO struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email" validate:"omitempty,email"`
	Name       string `json:"name"`
}

// Normalize trims fields and lower-cases the email.
func (d RegisterUserDTO) Normalize() RegisterUserDTO {
	return RegisterUserDTO{
		ExternalID: strings.TrimSpace(d.ExternalID),
		Email:      strings.ToLower(strings.TrimSpace(d.Email)),
		Name:       strings.TrimSpace(d.Name),
	}
}

// ToModel maps the DTO into a user row; blank fields stay NULL.
func (d RegisterUserDTO) ToModel() *models.User {
	return &models.User{
		ExternalID: nonEmpty(d.ExternalID),
		Email:      nonEmpty(d.Email),
		Name:       nonEmpty(d.Name),
	}
}

// UserDTO is the API view of a user.
type UserDTO struct {
	ID         uuid.UUID `json:"id"`
	ExternalID *string   `json:"external_id"`
	Email      *string   `json:"email"`
	Name       *string   `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// RegisterResult reports how the user was resolved.
type RegisterResult struct {
	User UserDTO `json:"user"`
	Note string  `json:"note"`
}

const (
	NoteFoundByExternalID = "found_by_external_id"
	NoteFoundByEmail      = "found_by_email"
	NoteCreated           = "created"
)

// FromModel maps a user row to its API view.
func FromModel(user *models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		ExternalID: user.ExternalID,
		Email:      user.Email,
		Name:       user.Name,
		CreatedAt:  user.CreatedAt,
	}
}

func nonEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
