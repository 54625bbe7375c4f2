package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wish is a product a user asked MIA to watch for price drops.
type Wish struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index:wishes_user_id_idx"`
	ProductName   string              `gorm:"column:product_name;not null"`
	ProductURL    *string             `gorm:"column:product_url"`
	Query         *string             `gorm:"column:query"`
	LastPrice     decimal.NullDecimal `gorm:"column:last_price;type:numeric(12,2)"`
	LastCheckedAt *time.Time          `gorm:"column:last_checked_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (w *Wish) BeforeCreate(*gorm.DB) error {
	ensureID(&w.ID)
	return nil
}

// PriceHistory is an append-only observation of a wish's best price.
type PriceHistory struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	WishID     uuid.UUID       `gorm:"column:wish_id;type:uuid;not null;index:price_history_wish_id_idx"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Source     string          `gorm:"column:source;not null"`
	ProductURL *string         `gorm:"column:product_url"`
	RecordedAt time.Time       `gorm:"column:recorded_at;not null"`
}

func (PriceHistory) TableName() string { return "price_history" }

func (h *PriceHistory) BeforeCreate(*gorm.DB) error {
	ensureID(&h.ID)
	return nil
}
