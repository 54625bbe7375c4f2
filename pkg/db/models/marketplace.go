package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Marketplace holds the freight rules for one storefront.
type Marketplace struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name            string              `gorm:"column:name;not null"`
	Slug            string              `gorm:"column:slug;not null;uniqueIndex:marketplaces_slug_key"`
	FreeShippingMin decimal.NullDecimal `gorm:"column:free_shipping_min;type:numeric(12,2)"`
	DefaultFreight  decimal.Decimal     `gorm:"column:default_freight;type:numeric(12,2);not null;default:0"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Marketplace) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// MarketProduct is a catalog record priced for a single marketplace.
type MarketProduct struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	MarketplaceID  uuid.UUID       `gorm:"column:marketplace_id;type:uuid;not null;index:market_products_marketplace_id_idx"`
	Name           string          `gorm:"column:name;not null"`
	NormalizedName string          `gorm:"column:normalized_name;not null;index:market_products_normalized_name_idx"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ProductURL     *string         `gorm:"column:product_url"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *MarketProduct) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
