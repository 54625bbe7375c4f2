package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/mia-backend/internal/tracking"
	"github.com/angelmondragon/mia-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func mustCreateWish(t *testing.T, db *gorm.DB, userID uuid.UUID, name string, createdAt time.Time, lastChecked *time.Time) models.Wish {
	t.Helper()
	wish := models.Wish{UserID: userID, ProductName: name, CreatedAt: createdAt, LastCheckedAt: lastChecked}
	require.NoError(t, db.Create(&wish).Error)
	return wish
}

func timePtr(value time.Time) *time.Time {
	return &value
}

func TestRepository_ListWishesBatchRotatesStalestFirst(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	recent := mustCreateWish(t, db, userID, "recent", baseTime, timePtr(baseTime.Add(5*time.Hour)))
	stale := mustCreateWish(t, db, userID, "stale", baseTime.Add(time.Minute), timePtr(baseTime.Add(time.Hour)))
	newer := mustCreateWish(t, db, userID, "never-newer", baseTime.Add(2*time.Minute), nil)
	older := mustCreateWish(t, db, userID, "never-older", baseTime.Add(-time.Minute), nil)

	batch, err := repo.ListWishesBatch(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, older.ID, batch[0].ID)
	assert.Equal(t, newer.ID, batch[1].ID)
	assert.Equal(t, stale.ID, batch[2].ID)

	all, err := repo.ListWishesBatch(context.Background(), 15)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, recent.ID, all[3].ID)
}

func TestRepository_UpdateWishAndHistory(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	wish := mustCreateWish(t, db, uuid.New(), "", baseTime, nil)

	price := decimal.RequireFromString("89.90")
	link := "https://loja/item"
	name := "Arranhador"
	checked := baseTime.Add(time.Hour)
	require.NoError(t, repo.UpdateWish(ctx, wish.ID, tracking.WishUpdate{
		LastCheckedAt: checked,
		LastPrice:     &price,
		ProductURL:    &link,
		ProductName:   &name,
	}))
	require.NoError(t, repo.InsertHistory(ctx, &models.PriceHistory{
		WishID: wish.ID, Price: price, Source: "google_shopping", ProductURL: &link, RecordedAt: checked,
	}))
	require.NoError(t, repo.InsertHistory(ctx, &models.PriceHistory{
		WishID: wish.ID, Price: decimal.NewFromInt(95), Source: "google_shopping", RecordedAt: baseTime,
	}))

	stored, err := repo.FindByID(ctx, wish.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arranhador", stored.ProductName)
	require.True(t, stored.LastPrice.Valid)
	assert.True(t, stored.LastPrice.Decimal.Equal(price))
	require.NotNil(t, stored.ProductURL)
	assert.Equal(t, link, *stored.ProductURL)
	require.NotNil(t, stored.LastCheckedAt)
	assert.True(t, stored.LastCheckedAt.Equal(checked))

	require.NoError(t, repo.UpdateWish(ctx, wish.ID, tracking.WishUpdate{LastCheckedAt: checked.Add(time.Hour)}))
	stored, err = repo.FindByID(ctx, wish.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastPrice.Decimal.Equal(price))

	history, err := repo.ListHistory(ctx, wish.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	amount, ok := history[0].Price.Amount()
	require.True(t, ok)
	assert.True(t, amount.Equal(price))
}

func TestRepository_InsertHistoryRequiresWish(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	err := repo.InsertHistory(context.Background(), &models.PriceHistory{Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, gorm.ErrInvalidValue)
}

func TestRepository_FindUserEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	email := " tutor@example.com "
	withEmail := models.User{Email: &email}
	require.NoError(t, db.Create(&withEmail).Error)
	withoutEmail := models.User{}
	require.NoError(t, db.Create(&withoutEmail).Error)

	got, err := repo.FindUserEmail(ctx, withEmail.ID)
	require.NoError(t, err)
	assert.Equal(t, "tutor@example.com", got)

	got, err = repo.FindUserEmail(ctx, withoutEmail.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.FindUserEmail(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepository_ListPaginates(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		mustCreateWish(t, db, userID, "wish", baseTime.Add(time.Duration(i)*time.Hour), nil)
	}
	mustCreateWish(t, db, uuid.New(), "someone else", baseTime, nil)

	first, err := repo.List(ctx, userID, "", 2)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.True(t, first.Items[0].CreatedAt.After(first.Items[1].CreatedAt))
	require.NotEmpty(t, first.Pagination.Next)

	second, err := repo.List(ctx, userID, first.Pagination.Next, 2)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.Pagination.Next)
	assert.True(t, second.Items[0].CreatedAt.Equal(baseTime))
}

func TestRepository_DeleteRemovesHistory(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	wish := mustCreateWish(t, db, userID, "Fonte", baseTime, nil)
	require.NoError(t, repo.InsertHistory(ctx, &models.PriceHistory{WishID: wish.ID, Price: decimal.NewFromInt(10), Source: "google_shopping", RecordedAt: baseTime}))

	removed, err := repo.Delete(ctx, wish.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	var count int64
	require.NoError(t, db.Model(&models.PriceHistory{}).Count(&count).Error)
	assert.Zero(t, count)

	removed, err = repo.Delete(ctx, wish.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	mustCreateWish(t, db, userID, "Fonte", baseTime, nil)
	mustCreateWish(t, db, userID, "Fonte", baseTime.Add(time.Minute), nil)
	mustCreateWish(t, db, userID, "Cama", baseTime, nil)
	n, err := repo.DeleteByName(ctx, userID, "Fonte")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
