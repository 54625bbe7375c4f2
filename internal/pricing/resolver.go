package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/mia-backend/pkg/enums"
	"github.com/angelmondragon/mia-backend/pkg/logger"
	"github.com/angelmondragon/mia-backend/pkg/search"
	"github.com/google/uuid"
)

// CatalogStore reads curated marketplace data.
type CatalogStore interface {
	ListMarketplaces(ctx context.Context) ([]MarketplaceRule, error)
	FindProducts(ctx context.Context, marketplaceID uuid.UUID, normalizedSubstring string) ([]CatalogProduct, error)
	FindActiveCoupon(ctx context.Context, marketplaceID uuid.UUID) (*Coupon, error)
	FindCashbackRate(ctx context.Context, marketplaceID uuid.UUID) (*CashbackRate, error)
}

// Resolver picks a unit price for a line at one marketplace: curated catalog
// first, then the caller's price, then a live search.
type Resolver struct {
	catalog  CatalogStore
	searcher search.Searcher
	logg     *logger.Logger
	timeout  time.Duration
}

// NewResolver builds a resolver. A nil searcher disables the live tier.
func NewResolver(catalog CatalogStore, searcher search.Searcher, logg *logger.Logger, timeout time.Duration) *Resolver {
	return &Resolver{
		catalog:  catalog,
		searcher: searcher,
		logg:     logg,
		timeout:  timeout,
	}
}

// Resolve never fails; collaborator errors are logged and the next tier runs.
func (r *Resolver) Resolve(ctx context.Context, rule MarketplaceRule, line ItemLine) ResolvedLine {
	if resolved, ok := r.fromCatalog(ctx, rule, line); ok {
		return resolved
	}

	if !line.CallerPrice.IsAbsent() {
		return ResolvedLine{
			ItemLine:  line,
			UnitPrice: line.CallerPrice,
			Source:    enums.PriceSourceCaller,
		}
	}

	if resolved, ok := r.fromSearch(ctx, rule, line); ok {
		return resolved
	}

	return ResolvedLine{
		ItemLine: line,
		Source:   enums.PriceSourceNone,
		Note:     NoteNotFound,
	}
}

func (r *Resolver) fromCatalog(ctx context.Context, rule MarketplaceRule, line ItemLine) (ResolvedLine, bool) {
	if r.catalog == nil || line.NormalizedName == "" {
		return ResolvedLine{}, false
	}

	callCtx, cancel := r.callContext(ctx)
	products, err := r.catalog.FindProducts(callCtx, rule.ID, line.NormalizedName)
	cancel()
	if err != nil {
		r.warn(ctx, "pricing.catalog_lookup_failed", err)
		return ResolvedLine{}, false
	}
	if len(products) == 0 {
		return ResolvedLine{}, false
	}

	product := products[0]
	price := PriceOf(product.Price)
	if price.IsAbsent() {
		return ResolvedLine{}, false
	}
	return ResolvedLine{
		ItemLine:   line,
		UnitPrice:  price,
		Source:     enums.PriceSourceCatalog,
		SourceName: product.Name,
		Link:       product.ProductURL,
	}, true
}

func (r *Resolver) fromSearch(ctx context.Context, rule MarketplaceRule, line ItemLine) (ResolvedLine, bool) {
	if r.searcher == nil || line.Name == "" {
		return ResolvedLine{}, false
	}

	callCtx, cancel := r.callContext(ctx)
	candidates, err := r.searcher.Search(callCtx, line.Name)
	cancel()
	if err != nil {
		r.warn(ctx, "pricing.search_failed", err)
		return ResolvedLine{}, false
	}

	candidate, price, ok := pickCandidate(candidates, rule.Name)
	if !ok {
		return ResolvedLine{}, false
	}
	sourceName := candidate.Source
	if sourceName == "" {
		sourceName = candidate.Title
	}
	return ResolvedLine{
		ItemLine:   line,
		UnitPrice:  price,
		Source:     enums.PriceSourceSearch,
		SourceName: sourceName,
		Link:       candidate.Link,
	}, true
}

// pickCandidate prefers the first priced candidate sold by the marketplace
// itself and falls back to the first priced candidate overall.
func pickCandidate(candidates []search.Candidate, marketplaceName string) (search.Candidate, Price, bool) {
	needle := NormalizeName(marketplaceName)
	if needle != "" {
		for _, candidate := range candidates {
			if !containsFold(candidate.Source, needle) {
				continue
			}
			if price := ParsePrice(candidate.PriceRaw); !price.IsAbsent() {
				return candidate, price, true
			}
		}
	}
	for _, candidate := range candidates {
		if price := ParsePrice(candidate.PriceRaw); !price.IsAbsent() {
			return candidate, price, true
		}
	}
	return search.Candidate{}, Absent(), false
}

func containsFold(haystack, normalizedNeedle string) bool {
	return normalizedNeedle != "" && strings.Contains(NormalizeName(haystack), normalizedNeedle)
}

func (r *Resolver) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Resolver) warn(ctx context.Context, msg string, err error) {
	if r.logg == nil {
		return
	}
	r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), msg)
}
