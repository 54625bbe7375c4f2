package tracking

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/mia-backend/pkg/db/models"
	"github.com/angelmondragon/mia-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/logger"
	"github.com/angelmondragon/mia-backend/pkg/metrics"
	"github.com/angelmondragon/mia-backend/pkg/search"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	wishes    []models.Wish
	listErr   error
	listLimit int
	updates   map[uuid.UUID][]WishUpdate
	history   []models.PriceHistory
	emails    map[uuid.UUID]string
	emailErr  error
}

func newFakeStore(wishes ...models.Wish) *fakeStore {
	return &fakeStore{
		wishes:  wishes,
		updates: map[uuid.UUID][]WishUpdate{},
		emails:  map[uuid.UUID]string{},
	}
}

func (f *fakeStore) ListWishesBatch(ctx context.Context, limit int) ([]models.Wish, error) {
	f.listLimit = limit
	return f.wishes, f.listErr
}

func (f *fakeStore) UpdateWish(ctx context.Context, id uuid.UUID, update WishUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = append(f.updates[id], update)
	return nil
}

func (f *fakeStore) InsertHistory(ctx context.Context, entry *models.PriceHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeStore) FindUserEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	return f.emails[userID], f.emailErr
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []PriceDrop
	to   []string
	err  error
}

func (f *fakeNotifier) NotifyPriceDrop(ctx context.Context, email string, drop PriceDrop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, email)
	f.sent = append(f.sent, drop)
	return f.err
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func strPtr(value string) *string {
	return &value
}

func newTestTracker(t *testing.T, store WishStore, searcher search.Searcher, notifier Notifier, reg *prometheus.Registry) *Tracker {
	t.Helper()
	params := TrackerParams{
		Store:    store,
		Searcher: searcher,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:      func() time.Time { return fixedNow },
	}
	if notifier != nil {
		params.Notifier = notifier
	}
	if reg != nil {
		params.Metrics = metrics.NewTrackingMetrics(reg)
	}
	tracker, err := NewTracker(params)
	require.NoError(t, err)
	return tracker
}

func staticSearch(candidates ...search.Candidate) search.Searcher {
	return search.SearcherFunc(func(ctx context.Context, query string) ([]search.Candidate, error) {
		return candidates, nil
	})
}

func TestCheckWish_PriceDrop(t *testing.T) {
	userID := uuid.New()
	wish := models.Wish{
		ID:          uuid.New(),
		UserID:      userID,
		ProductName: "Ração Premium",
		LastPrice:   decimal.NewNullDecimal(dec("100")),
	}
	store := newFakeStore(wish)
	store.emails[userID] = "tutor@example.com"
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, store, staticSearch(
		search.Candidate{Title: "A", PriceRaw: "R$ 95,00", Link: "https://a"},
		search.Candidate{Title: "B", PriceRaw: "R$ 90,00", Link: "https://b"},
		search.Candidate{Title: "C", PriceRaw: "esgotado"},
	), notifier, nil)

	result := tracker.CheckWish(context.Background(), wish)

	assert.Equal(t, enums.TrackStatusPriceDrop, result.Status)
	require.NotNil(t, result.OldPrice)
	require.NotNil(t, result.NewPrice)
	assert.True(t, result.OldPrice.Equal(dec("100")))
	assert.True(t, result.NewPrice.Equal(dec("90")))
	assert.Equal(t, "https://b", result.Link)

	require.Len(t, store.history, 1)
	assert.True(t, store.history[0].Price.Equal(dec("90")))
	assert.Equal(t, "google_shopping", store.history[0].Source)
	assert.Equal(t, fixedNow, store.history[0].RecordedAt)

	updates := store.updates[wish.ID]
	require.Len(t, updates, 1)
	require.NotNil(t, updates[0].LastPrice)
	assert.True(t, updates[0].LastPrice.Equal(dec("90")))
	assert.Equal(t, "https://b", *updates[0].ProductURL)
	assert.Nil(t, updates[0].ProductName)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "tutor@example.com", notifier.to[0])
	assert.Equal(t, "Ração Premium", notifier.sent[0].ProductName)
}

func TestCheckWish_NotFound(t *testing.T) {
	wish := models.Wish{ID: uuid.New(), ProductName: "Brinquedo raro"}
	store := newFakeStore(wish)
	tracker := newTestTracker(t, store, staticSearch(search.Candidate{Title: "x", PriceRaw: "indisponível"}), nil, nil)

	result := tracker.CheckWish(context.Background(), wish)

	assert.Equal(t, enums.TrackStatusNotFound, result.Status)
	assert.Empty(t, store.history)
	updates := store.updates[wish.ID]
	require.Len(t, updates, 1)
	assert.Equal(t, fixedNow, updates[0].LastCheckedAt)
	assert.Nil(t, updates[0].LastPrice)
}

func TestCheckWish_NoChangeWithoutPriorPrice(t *testing.T) {
	wish := models.Wish{ID: uuid.New(), ProductURL: strPtr("https://old"), Query: strPtr("coleira couro")}
	store := newFakeStore(wish)
	var gotQuery string
	searcher := search.SearcherFunc(func(ctx context.Context, query string) ([]search.Candidate, error) {
		gotQuery = query
		return []search.Candidate{{Title: "Coleira de Couro", PriceRaw: "49,90"}}, nil
	})
	tracker := newTestTracker(t, store, searcher, &fakeNotifier{}, nil)

	result := tracker.CheckWish(context.Background(), wish)

	assert.Equal(t, "coleira couro", gotQuery)
	assert.Equal(t, enums.TrackStatusNoChange, result.Status)
	assert.Equal(t, "https://old", result.Link)
	update := store.updates[wish.ID][0]
	assert.Nil(t, update.ProductURL)
	require.NotNil(t, update.ProductName)
	assert.Equal(t, "Coleira de Couro", *update.ProductName)
	require.Len(t, store.history, 1)
}

func TestCheckWish_HigherPriceIsNoChange(t *testing.T) {
	wish := models.Wish{ID: uuid.New(), ProductName: "Areia", LastPrice: decimal.NewNullDecimal(dec("30"))}
	store := newFakeStore(wish)
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, store, staticSearch(search.Candidate{Title: "Areia", PriceRaw: "R$ 30,00"}), notifier, nil)

	result := tracker.CheckWish(context.Background(), wish)

	assert.Equal(t, enums.TrackStatusNoChange, result.Status)
	assert.Nil(t, result.OldPrice)
	assert.Empty(t, notifier.sent)
}

func TestCheckWish_NotifierFailureKeepsDrop(t *testing.T) {
	userID := uuid.New()
	wish := models.Wish{ID: uuid.New(), UserID: userID, ProductName: "Areia", LastPrice: decimal.NewNullDecimal(dec("30"))}
	store := newFakeStore(wish)
	store.emails[userID] = "tutor@example.com"
	tracker := newTestTracker(t, store, staticSearch(search.Candidate{Title: "Areia", PriceRaw: "R$ 25,00"}),
		&fakeNotifier{err: errors.New("smtp down")}, nil)

	result := tracker.CheckWish(context.Background(), wish)

	assert.Equal(t, enums.TrackStatusPriceDrop, result.Status)
	assert.NoError(t, result.Err())
}

func TestCheckWish_EmptyQueryIsError(t *testing.T) {
	wish := models.Wish{ID: uuid.New()}
	tracker := newTestTracker(t, newFakeStore(wish), staticSearch(), nil, nil)

	result := tracker.CheckWish(context.Background(), wish)

	assert.Equal(t, enums.TrackStatusError, result.Status)
	assert.NotEmpty(t, result.Error)
	assert.Error(t, result.Err())
}

func TestRunCycle_ErroringWishDoesNotAbortBatch(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		wishes := make([]models.Wish, 6)
		for i := range wishes {
			wishes[i] = models.Wish{ID: uuid.New(), ProductName: "produto " + string(rune('a'+i))}
		}
		store := newFakeStore(wishes...)
		searcher := search.SearcherFunc(func(ctx context.Context, query string) ([]search.Candidate, error) {
			if query == "produto c" {
				return nil, errors.New("upstream 500")
			}
			return []search.Candidate{{Title: query, PriceRaw: "10,00"}}, nil
		})
		reg := prometheus.NewRegistry()
		tracker := newTestTracker(t, store, searcher, nil, reg)
		tracker.concurrency = concurrency

		cycle, err := tracker.RunCycle(context.Background())
		require.NoError(t, err)

		require.Equal(t, 6, cycle.Checked)
		require.Len(t, cycle.Results, 6)
		for i, result := range cycle.Results {
			assert.Equal(t, wishes[i].ID, result.WishID)
			if i == 2 {
				assert.Equal(t, enums.TrackStatusError, result.Status)
				continue
			}
			assert.Equal(t, enums.TrackStatusNoChange, result.Status)
		}
		assert.Len(t, cycle.Failures(), 1)
		assert.Len(t, store.history, 5)
		assert.Equal(t, defaultBatchSize, store.listLimit)

		assert.Equal(t, float64(5), checksCounter(t, reg, "no_change"))
		assert.Equal(t, float64(1), checksCounter(t, reg, "error"))
	}
}

func TestRunCycle_ListFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("db down")
	tracker := newTestTracker(t, store, staticSearch(), nil, nil)

	_, err := tracker.RunCycle(context.Background())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestNewTrackerValidation(t *testing.T) {
	_, err := NewTracker(TrackerParams{})
	assert.Error(t, err)
}

func TestBestCandidateKeepsFirstOnTie(t *testing.T) {
	best, price, ok := bestCandidate([]search.Candidate{
		{Title: "first", PriceRaw: "20"},
		{Title: "second", PriceRaw: "R$ 20,00"},
		{Title: "expensive", PriceRaw: "30"},
	})
	require.True(t, ok)
	assert.Equal(t, "first", best.Title)
	assert.True(t, price.Equal(dec("20")))
}

func checksCounter(t *testing.T, reg *prometheus.Registry, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "tracking_checks_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			if hasLabel(metric, "status", status) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

func TestCheckWish_SubCentavoPriceMatchesStoredScale(t *testing.T) {
	userID := uuid.New()
	wish := models.Wish{ID: uuid.New(), UserID: userID, ProductName: "Petisco", LastPrice: decimal.NewNullDecimal(dec("1.30"))}
	store := newFakeStore(wish)
	store.emails[userID] = "tutor@example.com"
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, store, staticSearch(search.Candidate{Title: "Petisco", PriceRaw: "R$ 1.299"}), notifier, nil)

	result := tracker.CheckWish(context.Background(), wish)

	assert.Equal(t, enums.TrackStatusNoChange, result.Status)
	assert.Empty(t, notifier.sent)
	require.Len(t, store.history, 1)
	assert.True(t, store.history[0].Price.Equal(dec("1.30")), store.history[0].Price.String())
	require.NotNil(t, store.updates[wish.ID][0].LastPrice)
	assert.True(t, store.updates[wish.ID][0].LastPrice.Equal(dec("1.30")))
}

func TestCheckWish_FollowsLivePriceBetweenChecks(t *testing.T) {
	userID := uuid.New()
	wish := models.Wish{ID: uuid.New(), UserID: userID, ProductName: "Ração Premium"}
	store := newFakeStore(wish)
	store.emails[userID] = "tutor@example.com"
	notifier := &fakeNotifier{}

	prices := []string{"R$ 100,00", "R$ 90,00"}
	calls := 0
	searcher := search.SearcherFunc(func(ctx context.Context, query string) ([]search.Candidate, error) {
		price := prices[min(calls, len(prices)-1)]
		calls++
		return []search.Candidate{{Title: query, PriceRaw: price}}, nil
	})
	tracker := newTestTracker(t, store, searcher, notifier, nil)

	first := tracker.CheckWish(context.Background(), wish)
	require.Equal(t, enums.TrackStatusNoChange, first.Status)
	wish.LastPrice = decimal.NewNullDecimal(*store.updates[wish.ID][0].LastPrice)

	second := tracker.CheckWish(context.Background(), wish)

	assert.Equal(t, enums.TrackStatusPriceDrop, second.Status)
	require.NotNil(t, second.NewPrice)
	assert.True(t, second.NewPrice.Equal(dec("90")))
	assert.Len(t, notifier.sent, 1)
}

func TestCheckWish_DropReachesNotifierWhenOwnerEmailUnknown(t *testing.T) {
	wish := models.Wish{ID: uuid.New(), UserID: uuid.New(), ProductName: "Areia", LastPrice: decimal.NewNullDecimal(dec("30"))}
	store := newFakeStore(wish)
	store.emailErr = errors.New("db down")
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, store, staticSearch(search.Candidate{Title: "Areia", PriceRaw: "R$ 25,00"}), notifier, nil)

	result := tracker.CheckWish(context.Background(), wish)

	assert.Equal(t, enums.TrackStatusPriceDrop, result.Status)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, []string{""}, notifier.to)
}
