package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/mia-backend/api/responses"
	"github.com/angelmondragon/mia-backend/api/validators"
	"github.com/angelmondragon/mia-backend/internal/pricing"
	"github.com/angelmondragon/mia-backend/internal/wishlist"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/logger"
)

const maxProductNameLength = 255

type createWishRequest struct {
	UserID      string        `json:"user_id" validate:"required,uuid"`
	ProductName string        `json:"product_name" validate:"required,max=255"`
	ProductURL  string        `json:"product_url" validate:"omitempty,url"`
	Query       string        `json:"query" validate:"max=200"`
	Price       pricing.Price `json:"price"`
}

// WishCreate stores a new watched product.
func WishCreate(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var body createWishRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		userID, err := validators.ParseUUID(body.UserID, "user_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		wish, err := svc.CreateWish(ctx, wishlist.CreateWishInput{
			UserID:      userID,
			ProductName: validators.SanitizeString(body.ProductName, maxProductNameLength),
			ProductURL:  strings.TrimSpace(body.ProductURL),
			Query:       validators.SanitizeString(body.Query, maxQueryLength),
			Price:       body.Price,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, wish)
	}
}

// WishList returns the user's wishes, newest first.
func WishList(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		userID, err := validators.QueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseLimit(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.ListWishes(ctx, userID, strings.TrimSpace(r.URL.Query().Get("cursor")), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// WishDelete removes one wish and its history.
func WishDelete(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		wishID, err := validators.ParseUUID(chi.URLParam(r, "wishId"), "wish_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			ctx = logg.WithWishID(ctx, wishID.String())
		}

		if err := svc.DeleteWish(ctx, wishID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted_id": wishID})
	}
}

// WishDeleteByName removes every wish of a user with the given product name.
func WishDeleteByName(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		userID, err := validators.QueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		name, err := validators.RequiredQueryString(r, "product_name", maxProductNameLength)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		deleted, err := svc.DeleteWishByName(ctx, userID, name)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"deleted": deleted,
			"deleted_by": map[string]any{
				"user_id":      userID,
				"product_name": name,
			},
		})
	}
}

// WishHistory returns recorded prices for one wish, newest first.
func WishHistory(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		wishID, err := validators.ParseUUID(chi.URLParam(r, "wishId"), "wish_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseLimit(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entries, err := svc.ListHistory(ctx, wishID, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"wish_id": wishID, "history": entries})
	}
}
