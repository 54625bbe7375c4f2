package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/mia-backend/internal/pricing"
	"github.com/angelmondragon/mia-backend/internal/repo"
	"github.com/angelmondragon/mia-backend/pkg/db/models"
	"github.com/angelmondragon/mia-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxProductMatches bounds how many substring matches are read per lookup.
const maxProductMatches = 5

// Repository reads the curated marketplace catalog.
type Repository struct {
	repo.Base
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListMarketplaces returns every marketplace with its freight rules, ordered
// by name.
func (r *Repository) ListMarketplaces(ctx context.Context) ([]pricing.MarketplaceRule, error) {
	var rows []models.Marketplace
	if err := r.DB(ctx).
		Order("name ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	rules := make([]pricing.MarketplaceRule, 0, len(rows))
	for _, row := range rows {
		rule := pricing.MarketplaceRule{
			ID:             row.ID,
			Name:           row.Name,
			Slug:           row.Slug,
			DefaultFreight: row.DefaultFreight,
		}
		if row.FreeShippingMin.Valid {
			threshold := row.FreeShippingMin.Decimal
			rule.FreeShippingMin = &threshold
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// FindProducts returns catalog entries whose normalized name contains the
// given normalized text. The closest match comes first: shortest name, then
// cheapest, then id.
func (r *Repository) FindProducts(ctx context.Context, marketplaceID uuid.UUID, normalizedSubstring string) ([]pricing.CatalogProduct, error) {
	needle := strings.TrimSpace(normalizedSubstring)
	if needle == "" {
		return nil, nil
	}

	var rows []models.MarketProduct
	if err := r.DB(ctx).
		Where("marketplace_id = ?", marketplaceID).
		Where("normalized_name LIKE ? "+repo.EscapeClause, repo.ContainsPattern(needle)).
		Order("length(normalized_name) ASC").
		Order("price ASC").
		Order("id ASC").
		Limit(maxProductMatches).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]pricing.CatalogProduct, 0, len(rows))
	for _, row := range rows {
		product := pricing.CatalogProduct{
			ID:             row.ID,
			Name:           row.Name,
			NormalizedName: row.NormalizedName,
			Price:          row.Price,
		}
		if row.ProductURL != nil {
			product.ProductURL = *row.ProductURL
		}
		products = append(products, product)
	}
	return products, nil
}

// FindActiveCoupon returns the newest active coupon or nil when none exists.
func (r *Repository) FindActiveCoupon(ctx context.Context, marketplaceID uuid.UUID) (*pricing.Coupon, error) {
	var row models.MarketplaceCoupon
	err := r.DB(ctx).
		Where("marketplace_id = ? AND active = ?", marketplaceID, true).
		Order("created_at DESC").
		Order("id ASC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	couponType, err := enums.ParseCouponType(string(row.Type))
	if err != nil {
		return nil, err
	}
	return &pricing.Coupon{
		Code:  row.Code,
		Type:  couponType,
		Value: row.Value,
	}, nil
}

// FindCashbackRate returns the newest cashback rate or nil when none exists.
func (r *Repository) FindCashbackRate(ctx context.Context, marketplaceID uuid.UUID) (*pricing.CashbackRate, error) {
	var row models.MarketplaceCashback
	err := r.DB(ctx).
		Where("marketplace_id = ?", marketplaceID).
		Order("created_at DESC").
		Order("id ASC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pricing.CashbackRate{Percent: row.Percent}, nil
}

// UpsertProduct stores a catalog entry and keeps its normalized name in sync
// with the display name.
func (r *Repository) UpsertProduct(ctx context.Context, product *models.MarketProduct) error {
	if product == nil || product.MarketplaceID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	product.NormalizedName = pricing.NormalizeName(product.Name)
	return r.DB(ctx).Save(product).Error
}

var _ pricing.CatalogStore = (*Repository)(nil)
