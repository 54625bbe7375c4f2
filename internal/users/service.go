package users

import (
	"context"

	"github.com/angelmondragon/mia-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
)

// Service registers chat users.
type Service interface {
	Register(ctx context.Context, input RegisterUserDTO) (RegisterResult, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repository is required")
	}
	return &service{repo: repo}, nil
}

// Register returns the user matching the external id, then the email, and
// creates one when neither matches. Losing an insert race to a concurrent
// registration resolves to the row that won.
func (s *service) Register(ctx context.Context, input RegisterUserDTO) (RegisterResult, error) {
	dto := input.Normalize()
	if dto.ExternalID == "" && dto.Email == "" {
		return RegisterResult{}, pkgerrors.New(pkgerrors.CodeValidation, "email or external_id is required")
	}

	if found, err := s.lookup(ctx, dto); found != nil || err != nil {
		return derefResult(found), err
	}

	user := dto.ToModel()
	err := s.repo.Create(ctx, user)
	switch {
	case err == nil:
		return RegisterResult{User: FromModel(user), Note: NoteCreated}, nil
	case db.IsUniqueViolation(err, ""):
		found, lookupErr := s.lookup(ctx, dto)
		if lookupErr != nil || found != nil {
			return derefResult(found), lookupErr
		}
		return RegisterResult{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user already registered")
	default:
		return RegisterResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create user")
	}
}

func (s *service) lookup(ctx context.Context, dto RegisterUserDTO) (*RegisterResult, error) {
	user, note, err := s.repo.Lookup(ctx, dto.ExternalID, dto.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up user")
	}
	if user == nil {
		return nil, nil
	}
	return &RegisterResult{User: FromModel(user), Note: note}, nil
}

func derefResult(r *RegisterResult) RegisterResult {
	if r == nil {
		return RegisterResult{}
	}
	return *r
}
