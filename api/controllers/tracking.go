package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/mia-backend/api/responses"
	"github.com/angelmondragon/mia-backend/internal/tracking"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/logger"
)

// CycleRunner runs one tracking batch.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*tracking.CycleResult, error)
}

type checkPricesResponse struct {
	Success bool                   `json:"success"`
	Checked int                    `json:"checked"`
	Results []tracking.CheckResult `json:"results"`
}

// CheckPrices runs one tracking cycle on demand. Per-wish failures are
// reported inside results and never fail the request.
func CheckPrices(tracker CycleRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if tracker == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracker unavailable"))
			return
		}

		result, err := tracker.RunCycle(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		results := result.Results
		if results == nil {
			results = []tracking.CheckResult{}
		}
		responses.WriteJSON(w, http.StatusOK, checkPricesResponse{
			Success: true,
			Checked: result.Checked,
			Results: results,
		})
	}
}
