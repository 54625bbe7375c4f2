package users

import (
	"context"
	"errors"

	"github.com/angelmondragon/mia-backend/internal/repo"
	"github.com/angelmondragon/mia-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists chat users.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Create(user).Error
}

// Lookup resolves a user by external id first and email second, returning
// the note naming the key that matched. A miss on both yields a nil user.
func (r *Repository) Lookup(ctx context.Context, externalID, email string) (*models.User, string, error) {
	if externalID != "" {
		user, err := r.first(ctx, "external_id", externalID)
		if err != nil || user != nil {
			return user, NoteFoundByExternalID, err
		}
	}
	if email != "" {
		user, err := r.first(ctx, "email", email)
		if err != nil || user != nil {
			return user, NoteFoundByEmail, err
		}
	}
	return nil, "", nil
}

// first returns the oldest row where column equals value, or nil.
func (r *Repository) first(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).
		Where(column+" = ?", value).
		Order("created_at ASC").
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
