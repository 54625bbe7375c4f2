package pricing

import (
	"context"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/logger"
	"github.com/angelmondragon/mia-backend/pkg/search"
)

// ServiceParams groups dependencies for the pricing service.
type ServiceParams struct {
	Catalog     CatalogStore
	Searcher    search.Searcher
	Logger      *logger.Logger
	CallTimeout time.Duration
}

// Service prices a basket across every configured marketplace.
type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error)
}

type service struct {
	catalog  CatalogStore
	searcher search.Searcher
	logg     *logger.Logger
	timeout  time.Duration
}

// NewService builds a pricing service. Searcher is optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		catalog:  params.Catalog,
		searcher: params.Searcher,
		logg:     params.Logger,
		timeout:  params.CallTimeout,
	}, nil
}

// Quote resolves every line per marketplace, composes each quote and returns
// them ranked cheapest first.
func (s *service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	var searcher search.Searcher
	if s.searcher != nil {
		searcher = newMemoSearcher(s.searcher)
	}

	lines, err := s.buildLines(ctx, searcher, req)
	if err != nil {
		return nil, err
	}

	listCtx, cancel := s.callContext(ctx)
	rules, err := s.catalog.ListMarketplaces(listCtx)
	cancel()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list marketplaces")
	}

	resolver := NewResolver(s.catalog, searcher, s.logg, s.timeout)
	quotes := make([]MarketplaceQuote, 0, len(rules))
	for _, rule := range rules {
		marketCtx := s.logg.WithMarketplace(ctx, rule.Slug)
		rule.Coupon = s.loadCoupon(marketCtx, rule)
		rule.Cashback = s.loadCashback(marketCtx, rule)

		resolved := make([]ResolvedLine, len(lines))
		unresolved := 0
		for i, line := range lines {
			resolved[i] = resolver.Resolve(marketCtx, rule, line)
			if !resolved[i].Source.Resolved() {
				unresolved++
			}
		}
		if unresolved > 0 {
			s.logg.Debug(s.logg.WithField(marketCtx, "unresolved_lines", unresolved), "pricing.quote_incomplete")
		}
		quotes = append(quotes, ComposeQuote(rule, resolved))
	}
	RankQuotes(quotes)

	return &QuoteResult{Items: lines, Quotes: quotes}, nil
}

func (s *service) buildLines(ctx context.Context, searcher search.Searcher, req QuoteRequest) ([]ItemLine, error) {
	if len(req.Items) > 0 {
		lines := make([]ItemLine, 0, len(req.Items))
		for _, item := range req.Items {
			name := strings.TrimSpace(item.Name)
			if name == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
			}
			lines = append(lines, NewItemLine(name, item.Quantity, item.Price))
		}
		return lines, nil
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items or query is required")
	}
	if searcher == nil {
		return []ItemLine{NewItemLine(query, 1, Absent())}, nil
	}

	callCtx, cancel := s.callContext(ctx)
	candidates, err := searcher.Search(callCtx, query)
	cancel()
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "pricing.query_search_failed")
	}
	if len(candidates) == 0 {
		return []ItemLine{NewItemLine(query, 1, Absent())}, nil
	}

	first := candidates[0]
	name := strings.TrimSpace(first.Title)
	if name == "" {
		name = query
	}
	return []ItemLine{NewItemLine(name, 1, ParsePrice(first.PriceRaw))}, nil
}

func (s *service) loadCoupon(ctx context.Context, rule MarketplaceRule) *Coupon {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	coupon, err := s.catalog.FindActiveCoupon(callCtx, rule.ID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "pricing.coupon_lookup_failed")
		return nil
	}
	return coupon
}

func (s *service) loadCashback(ctx context.Context, rule MarketplaceRule) *CashbackRate {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	rate, err := s.catalog.FindCashbackRate(callCtx, rule.ID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "pricing.cashback_lookup_failed")
		return nil
	}
	return rate
}

func (s *service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
