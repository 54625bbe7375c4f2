package wishlist

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/mia-backend/internal/tracking"
	"github.com/angelmondragon/mia-backend/internal/repo"
	"github.com/angelmondragon/mia-backend/pkg/db/models"
	"github.com/angelmondragon/mia-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository encapsulates wish and price history persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a wish.
func (r *Repository) Create(ctx context.Context, wish *models.Wish) error {
	if wish == nil || wish.UserID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.DB(ctx).Create(wish).Error
}

// FindByID returns gorm.ErrRecordNotFound when the wish does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Wish, error) {
	var wish models.Wish
	if err := r.DB(ctx).Where("id = ?", id).Take(&wish).Error; err != nil {
		return nil, err
	}
	return &wish, nil
}

// Delete removes a wish and its history. It reports whether a wish was removed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var removed int64
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("wish_id = ?", id).Delete(&models.PriceHistory{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Wish{})
		removed = result.RowsAffected
		return result.Error
	})
	return removed > 0, err
}

// DeleteByName removes every wish a user saved under the given product name.
func (r *Repository) DeleteByName(ctx context.Context, userID uuid.UUID, productName string) (int64, error) {
	var removed int64
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		ids := tx.Model(&models.Wish{}).Select("id").Where("user_id = ? AND product_name = ?", userID, productName)
		if err := tx.Where("wish_id IN (?)", ids).Delete(&models.PriceHistory{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id = ? AND product_name = ?", userID, productName).Delete(&models.Wish{})
		removed = result.RowsAffected
		return result.Error
	})
	return removed, err
}

// List returns a page of the user's wishes ordered by created_at DESC, id DESC.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, cursor string, limit int) (WishPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	cursorValue := strings.TrimSpace(cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return WishPageDTO{}, err
	}

	query := r.DB(ctx).
		Model(&models.Wish{}).
		Where("user_id = ?", userID)
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var records []models.Wish
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.FetchLimit(limit)).
		Find(&records).Error; err != nil {
		return WishPageDTO{}, err
	}

	resultRows, nextCursor := pagination.Split(records, limit, func(last models.Wish) pagination.Cursor {
		return pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	})

	items := make([]WishDTO, 0, len(resultRows))
	for _, record := range resultRows {
		items = append(items, toWishDTO(record))
	}

	return WishPageDTO{
		Items: items,
		Pagination: PageInfo{
			Limit:   normalizedLimit,
			Current: cursorValue,
			Next:    nextCursor,
		},
	}, nil
}

// ListHistory returns the newest history entries for a wish.
func (r *Repository) ListHistory(ctx context.Context, wishID uuid.UUID, limit int) ([]HistoryEntryDTO, error) {
	var records []models.PriceHistory
	if err := r.DB(ctx).
		Where("wish_id = ?", wishID).
		Order("recorded_at DESC").
		Order("id DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&records).Error; err != nil {
		return nil, err
	}

	entries := make([]HistoryEntryDTO, 0, len(records))
	for _, record := range records {
		entries = append(entries, toHistoryDTO(record))
	}
	return entries, nil
}

// ListWishesBatch returns up to limit wishes, never-checked first and then the
// stalest, so consecutive cycles rotate through the whole backlog.
func (r *Repository) ListWishesBatch(ctx context.Context, limit int) ([]models.Wish, error) {
	var wishes []models.Wish
	if err := r.DB(ctx).
		Order("CASE WHEN last_checked_at IS NULL THEN 0 ELSE 1 END").
		Order("last_checked_at ASC").
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&wishes).Error; err != nil {
		return nil, err
	}
	return wishes, nil
}

// UpdateWish writes the columns set on update.
func (r *Repository) UpdateWish(ctx context.Context, id uuid.UUID, update tracking.WishUpdate) error {
	values := map[string]any{
		"last_checked_at": update.LastCheckedAt,
	}
	if update.LastPrice != nil {
		values["last_price"] = *update.LastPrice
	}
	if update.ProductURL != nil {
		values["product_url"] = *update.ProductURL
	}
	if update.ProductName != nil {
		values["product_name"] = *update.ProductName
	}

	return r.DB(ctx).
		Model(&models.Wish{}).
		Where("id = ?", id).
		Updates(values).Error
}

// InsertHistory appends a price observation.
func (r *Repository) InsertHistory(ctx context.Context, entry *models.PriceHistory) error {
	if entry == nil || entry.WishID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.DB(ctx).Create(entry).Error
}

// FindUserEmail returns "" for unknown users and users without an email.
func (r *Repository) FindUserEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	var user models.User
	err := r.DB(ctx).
		Select("id", "email").
		Where("id = ?", userID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if user.Email == nil {
		return "", nil
	}
	return strings.TrimSpace(*user.Email), nil
}

var _ tracking.WishStore = (*Repository)(nil)
