package tracking

import (
	"context"
	"time"

	"github.com/angelmondragon/mia-backend/pkg/db/models"
	"github.com/angelmondragon/mia-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WishStore is the persistence the tracker needs.
type WishStore interface {
	ListWishesBatch(ctx context.Context, limit int) ([]models.Wish, error)
	UpdateWish(ctx context.Context, id uuid.UUID, update WishUpdate) error
	InsertHistory(ctx context.Context, entry *models.PriceHistory) error
	// FindUserEmail returns "" when the user has no email on file.
	FindUserEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

// Notifier delivers price-drop alerts.
type Notifier interface {
	NotifyPriceDrop(ctx context.Context, email string, drop PriceDrop) error
}

// WishUpdate lists the columns a check writes back. Nil fields are left
// untouched.
type WishUpdate struct {
	LastCheckedAt time.Time
	LastPrice     *decimal.Decimal
	ProductURL    *string
	ProductName   *string
}

type PriceDrop struct {
	WishID      uuid.UUID
	ProductName string
	OldPrice    decimal.Decimal
	NewPrice    decimal.Decimal
	Link        string
}

// CheckResult is the outcome for one wish.
type CheckResult struct {
	WishID   uuid.UUID         `json:"wish_id"`
	Status   enums.TrackStatus `json:"status"`
	OldPrice *decimal.Decimal  `json:"old_price,omitempty"`
	NewPrice *decimal.Decimal  `json:"new_price,omitempty"`
	Price    *decimal.Decimal  `json:"price,omitempty"`
	Link     string            `json:"link,omitempty"`
	Error    string            `json:"error,omitempty"`

	err error
}

// Err returns the failure behind an error status.
func (r CheckResult) Err() error {
	return r.err
}

// CycleResult holds one entry per wish, in batch order.
type CycleResult struct {
	Checked int           `json:"checked"`
	Results []CheckResult `json:"results"`
}

// Failures collects the per-wish errors of the cycle.
func (c CycleResult) Failures() []error {
	var errs []error
	for _, result := range c.Results {
		if result.err != nil {
			errs = append(errs, result.err)
		}
	}
	return errs
}
