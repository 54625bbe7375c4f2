package controllers

import (
	"net/http"

	"github.com/angelmondragon/mia-backend/api/responses"
	"github.com/angelmondragon/mia-backend/api/validators"
	"github.com/angelmondragon/mia-backend/internal/users"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/logger"
)

// UserRegister finds a user by external id or email and creates one when
// neither matches. New users answer 201, existing ones 200.
func UserRegister(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var body users.RegisterUserDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Register(ctx, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Note == users.NoteCreated {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
