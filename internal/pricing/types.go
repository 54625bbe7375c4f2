package pricing

import (
	"github.com/angelmondragon/mia-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NoteNotFound marks a line no tier could price.
const NoteNotFound = "not found"

type Coupon struct {
	Code  string
	Type  enums.CouponType
	Value decimal.Decimal
}

type CashbackRate struct {
	Percent decimal.Decimal
}

// MarketplaceRule carries the commercial terms of one marketplace. Coupon and
// Cashback are nil when the marketplace has none active.
type MarketplaceRule struct {
	ID              uuid.UUID
	Name            string
	Slug            string
	FreeShippingMin *decimal.Decimal
	DefaultFreight  decimal.Decimal
	Coupon          *Coupon
	Cashback        *CashbackRate
}

// CatalogProduct is a curated product entry for one marketplace.
type CatalogProduct struct {
	ID             uuid.UUID
	Name           string
	NormalizedName string
	Price          decimal.Decimal
	ProductURL     string
}

// ItemLine is one requested basket item.
type ItemLine struct {
	Name           string `json:"name"`
	NormalizedName string `json:"-"`
	Quantity       int    `json:"quantity"`
	CallerPrice    Price  `json:"price"`
}

// NewItemLine trims the name, derives its normalized form and defaults the
// quantity to 1.
func NewItemLine(name string, quantity int, callerPrice Price) ItemLine {
	if quantity < 1 {
		quantity = 1
	}
	return ItemLine{
		Name:           name,
		NormalizedName: NormalizeName(name),
		Quantity:       quantity,
		CallerPrice:    callerPrice,
	}
}

// ResolvedLine is an ItemLine after source resolution for one marketplace.
type ResolvedLine struct {
	ItemLine
	UnitPrice  Price
	Source     enums.PriceSource
	SourceName string
	Link       string
	Note       string
}

type BreakdownLine struct {
	Item       string            `json:"item"`
	Quantity   int               `json:"quantity"`
	UnitPrice  Price             `json:"unit_price"`
	Subtotal   Price             `json:"subtotal"`
	Source     enums.PriceSource `json:"source"`
	SourceName string            `json:"source_name,omitempty"`
	Link       string            `json:"link,omitempty"`
	Note       string            `json:"note,omitempty"`
}

// MarketplaceQuote is the composed cost of the basket at one marketplace.
type MarketplaceQuote struct {
	MarketplaceID   uuid.UUID       `json:"marketplace_id"`
	Marketplace     string          `json:"marketplace"`
	MarketplaceSlug string          `json:"marketplace_slug"`
	BaseTotal       Price           `json:"base_total"`
	Freight         decimal.Decimal `json:"freight"`
	CouponCode      *string         `json:"coupon"`
	Discount        decimal.Decimal `json:"discount"`
	Cashback        decimal.Decimal `json:"cashback"`
	FinalTotal      Price           `json:"final_total"`
	Breakdown       []BreakdownLine `json:"breakdown"`
}

type RequestedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"qty"`
	Price    Price  `json:"price"`
}

// QuoteRequest is a basket to price. Items wins over Query when both are set.
type QuoteRequest struct {
	Items      []RequestedItem
	Query      string
	PostalCode string
	UserID     string
}

type QuoteResult struct {
	Items  []ItemLine         `json:"items"`
	Quotes []MarketplaceQuote `json:"results"`
}
