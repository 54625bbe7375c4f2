package wishlist

import (
	"time"

	"github.com/angelmondragon/mia-backend/internal/pricing"
	"github.com/angelmondragon/mia-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CreateWishInput carries a new watch request. Price seeds the last known
// price so the first tracking cycle can already detect a drop.
type CreateWishInput struct {
	UserID      uuid.UUID
	ProductName string
	ProductURL  string
	Query       string
	Price       pricing.Price
}

// WishDTO is the API view of a wish.
type WishDTO struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	ProductName   string        `json:"product_name"`
	ProductURL    *string       `json:"product_url"`
	Query         *string       `json:"query"`
	LastPrice     pricing.Price `json:"last_price"`
	LastCheckedAt *time.Time    `json:"last_checked_at"`
	CreatedAt     time.Time     `json:"created_at"`
}

// PageInfo carries cursor metadata for list responses.
type PageInfo struct {
	Limit   int    `json:"limit"`
	Current string `json:"current,omitempty"`
	Next    string `json:"next,omitempty"`
}

// WishPageDTO returns a cursor-paginated list of wishes, newest first.
type WishPageDTO struct {
	Items      []WishDTO `json:"items"`
	Pagination PageInfo  `json:"pagination"`
}

// HistoryEntryDTO is one recorded observation.
type HistoryEntryDTO struct {
	ID         uuid.UUID     `json:"id"`
	Price      pricing.Price `json:"price"`
	Source     string        `json:"source"`
	ProductURL *string       `json:"product_url"`
	RecordedAt time.Time     `json:"recorded_at"`
}

func toWishDTO(wish models.Wish) WishDTO {
	return WishDTO{
		ID:            wish.ID,
		UserID:        wish.UserID,
		ProductName:   wish.ProductName,
		ProductURL:    wish.ProductURL,
		Query:         wish.Query,
		LastPrice:     pricing.PriceFromNull(wish.LastPrice),
		LastCheckedAt: wish.LastCheckedAt,
		CreatedAt:     wish.CreatedAt,
	}
}

func toHistoryDTO(entry models.PriceHistory) HistoryEntryDTO {
	return HistoryEntryDTO{
		ID:         entry.ID,
		Price:      pricing.PriceOf(entry.Price),
		Source:     entry.Source,
		ProductURL: entry.ProductURL,
		RecordedAt: entry.RecordedAt,
	}
}
