package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/mia-backend/internal/pricing"
	"github.com/angelmondragon/mia-backend/pkg/db/models"
	"github.com/angelmondragon/mia-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/logger"
	"github.com/angelmondragon/mia-backend/pkg/metrics"
	"github.com/angelmondragon/mia-backend/pkg/search"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize = 15
	defaultSource    = "google_shopping"
)

// TrackerParams groups dependencies for the price tracker.
type TrackerParams struct {
	Store       WishStore
	Searcher    search.Searcher
	Notifier    Notifier
	Logger      *logger.Logger
	Metrics     *metrics.TrackingMetrics
	BatchSize   int
	Concurrency int
	CallTimeout time.Duration
	Source      string
	Now         func() time.Time
}

// Tracker re-checks watched products and records their price history.
type Tracker struct {
	store       WishStore
	searcher    search.Searcher
	notifier    Notifier
	logg        *logger.Logger
	metrics     *metrics.TrackingMetrics
	batchSize   int
	concurrency int
	timeout     time.Duration
	source      string
	now         func() time.Time
}

// NewTracker builds a tracker. Notifier and Metrics are optional.
func NewTracker(params TrackerParams) (*Tracker, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("wish store required")
	}
	if params.Searcher == nil {
		return nil, fmt.Errorf("searcher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	source := strings.TrimSpace(params.Source)
	if source == "" {
		source = defaultSource
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &Tracker{
		store:       params.Store,
		searcher:    params.Searcher,
		notifier:    params.Notifier,
		logg:        params.Logger,
		metrics:     params.Metrics,
		batchSize:   batchSize,
		concurrency: concurrency,
		timeout:     params.CallTimeout,
		source:      source,
		now:         now,
	}, nil
}

// RunCycle checks one batch of wishes. Only a failure to list the batch is
// returned as an error; per-wish failures land in their result entry.
func (t *Tracker) RunCycle(ctx context.Context) (*CycleResult, error) {
	listCtx, cancel := t.callContext(ctx)
	wishes, err := t.store.ListWishesBatch(listCtx, t.batchSize)
	cancel()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list wishes")
	}

	results := make([]CheckResult, len(wishes))
	var group errgroup.Group
	group.SetLimit(t.concurrency)
	for i := range wishes {
		group.Go(func() error {
			results[i] = t.CheckWish(ctx, wishes[i])
			return nil
		})
	}
	_ = group.Wait()

	t.logg.Info(t.logg.WithFields(ctx, map[string]any{
		"checked": len(results),
	}), "tracking.cycle_complete")

	return &CycleResult{Checked: len(results), Results: results}, nil
}

// CheckWish searches for the wish's product, records the best price found and
// reports whether it dropped.
func (t *Tracker) CheckWish(ctx context.Context, wish models.Wish) CheckResult {
	ctx = t.logg.WithWishID(ctx, wish.ID.String())
	result := t.checkWish(ctx, wish)
	if result.err != nil {
		result.Status = enums.TrackStatusError
		result.Error = result.err.Error()
		t.logg.Error(ctx, "tracking.check_failed", result.err)
	}
	t.metrics.IncStatus(result.Status.String())
	return result
}

func (t *Tracker) checkWish(ctx context.Context, wish models.Wish) CheckResult {
	result := CheckResult{WishID: wish.ID}

	query := searchQuery(wish)
	if query == "" {
		result.err = fmt.Errorf("wish %s has no query, product name or url", wish.ID)
		return result
	}

	searchCtx, cancel := t.callContext(ctx)
	candidates, err := t.searcher.Search(searchCtx, query)
	cancel()
	if err != nil {
		result.err = fmt.Errorf("search %q: %w", query, err)
		return result
	}

	checkedAt := t.now().UTC()
	best, price, found := bestCandidate(candidates)
	if !found {
		if err := t.updateWish(ctx, wish, WishUpdate{LastCheckedAt: checkedAt}); err != nil {
			result.err = err
			return result
		}
		result.Status = enums.TrackStatusNotFound
		return result
	}

	link := strings.TrimSpace(best.Link)
	var linkPtr *string
	if link != "" {
		linkPtr = &link
	}

	entry := &models.PriceHistory{
		WishID:     wish.ID,
		Price:      price,
		Source:     t.source,
		ProductURL: linkPtr,
		RecordedAt: checkedAt,
	}
	historyCtx, cancel := t.callContext(ctx)
	err = t.store.InsertHistory(historyCtx, entry)
	cancel()
	if err != nil {
		result.err = fmt.Errorf("insert price history: %w", err)
		return result
	}

	update := WishUpdate{
		LastCheckedAt: checkedAt,
		LastPrice:     &price,
		ProductURL:    linkPtr,
	}
	if strings.TrimSpace(wish.ProductName) == "" {
		if title := strings.TrimSpace(best.Title); title != "" {
			update.ProductName = &title
		}
	}
	if err := t.updateWish(ctx, wish, update); err != nil {
		result.err = err
		return result
	}

	if link == "" && wish.ProductURL != nil {
		link = *wish.ProductURL
	}
	result.Link = link
	result.Price = &price

	if !wish.LastPrice.Valid || !price.LessThan(wish.LastPrice.Decimal) {
		result.Status = enums.TrackStatusNoChange
		return result
	}

	oldPrice := wish.LastPrice.Decimal
	result.Status = enums.TrackStatusPriceDrop
	result.OldPrice = &oldPrice
	result.NewPrice = &price

	productName := wish.ProductName
	if update.ProductName != nil {
		productName = *update.ProductName
	}
	t.notify(ctx, wish, PriceDrop{
		WishID:      wish.ID,
		ProductName: productName,
		OldPrice:    oldPrice,
		NewPrice:    price,
		Link:        link,
	})
	return result
}

func (t *Tracker) updateWish(ctx context.Context, wish models.Wish, update WishUpdate) error {
	callCtx, cancel := t.callContext(ctx)
	defer cancel()
	if err := t.store.UpdateWish(callCtx, wish.ID, update); err != nil {
		return fmt.Errorf("update wish: %w", err)
	}
	return nil
}

// notify is best effort; failures are logged and never change the status.
func (t *Tracker) notify(ctx context.Context, wish models.Wish, drop PriceDrop) {
	if t.notifier == nil {
		return
	}

	// an unknown owner still reaches the operations channels; the mailer
	// skips blank recipients
	lookupCtx, cancel := t.callContext(ctx)
	email, err := t.store.FindUserEmail(lookupCtx, wish.UserID)
	cancel()
	if err != nil {
		t.logg.Warn(t.logg.WithField(ctx, "error", err.Error()), "tracking.user_email_lookup_failed")
		email = ""
	}

	notifyCtx, cancel := t.callContext(ctx)
	defer cancel()
	if err := t.notifier.NotifyPriceDrop(notifyCtx, email, drop); err != nil {
		t.logg.Warn(t.logg.WithField(ctx, "error", err.Error()), "tracking.notify_failed")
	}
}

func (t *Tracker) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func searchQuery(wish models.Wish) string {
	if wish.Query != nil {
		if q := strings.TrimSpace(*wish.Query); q != "" {
			return q
		}
	}
	if name := strings.TrimSpace(wish.ProductName); name != "" {
		return name
	}
	if wish.ProductURL != nil {
		return strings.TrimSpace(*wish.ProductURL)
	}
	return ""
}

// bestCandidate returns the cheapest candidate with a readable price, rounded
// to centavos; the first one wins ties.
func bestCandidate(candidates []search.Candidate) (search.Candidate, decimal.Decimal, bool) {
	var (
		best      search.Candidate
		bestPrice decimal.Decimal
		found     bool
	)
	for _, candidate := range candidates {
		amount, ok := pricing.ParsePrice(candidate.PriceRaw).Amount()
		if !ok {
			continue
		}
		// stored at numeric(12,2); compare at the same scale
		amount = amount.Round(2)
		if !found || amount.LessThan(bestPrice) {
			best, bestPrice, found = candidate, amount, true
		}
	}
	return best, bestPrice, found
}
