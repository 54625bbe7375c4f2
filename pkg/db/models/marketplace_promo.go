package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/mia-backend/pkg/enums"
)

// MarketplaceCoupon is a discount code; at most one per marketplace is active.
type MarketplaceCoupon struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	MarketplaceID uuid.UUID        `gorm:"column:marketplace_id;type:uuid;not null;index:marketplace_coupons_marketplace_id_idx"`
	Code          string           `gorm:"column:code;not null"`
	Type          enums.CouponType `gorm:"column:type;type:text;not null"`
	Value         decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null"`
	Active        bool             `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (c *MarketplaceCoupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// MarketplaceCashback stores the cashback percentage paid back by a marketplace.
type MarketplaceCashback struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	MarketplaceID uuid.UUID       `gorm:"column:marketplace_id;type:uuid;not null;index:marketplace_cashbacks_marketplace_id_idx"`
	Percent       decimal.Decimal `gorm:"column:percent;type:numeric(5,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (c *MarketplaceCashback) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
