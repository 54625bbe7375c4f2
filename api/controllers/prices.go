package controllers

import (
	"net/http"

	"github.com/angelmondragon/mia-backend/api/responses"
	"github.com/angelmondragon/mia-backend/api/validators"
	"github.com/angelmondragon/mia-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/logger"
)

const maxQueryLength = 200

type finalPriceRequest struct {
	Items  []pricing.RequestedItem `json:"items" validate:"max=50"`
	Query  string                  `json:"query" validate:"max=200"`
	CEP    string                  `json:"cep" validate:"omitempty,cep"`
	UserID string                  `json:"user_id"`
}

// FinalPrice quotes a basket, or a free-text query, across every marketplace.
func FinalPrice(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var body finalPriceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil && body.UserID != "" {
			ctx = logg.WithUserID(ctx, body.UserID)
		}

		result, err := svc.Quote(ctx, pricing.QuoteRequest{
			Items:      body.Items,
			Query:      validators.SanitizeString(body.Query, maxQueryLength),
			PostalCode: validators.SanitizeString(body.CEP, 16),
			UserID:     body.UserID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
