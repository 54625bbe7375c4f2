package wishlist

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/mia-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
}

// Service exposes business rules for wish management.
type Service interface {
	CreateWish(ctx context.Context, input CreateWishInput) (WishDTO, error)
	ListWishes(ctx context.Context, userID uuid.UUID, cursor string, limit int) (WishPageDTO, error)
	DeleteWish(ctx context.Context, wishID uuid.UUID) error
	DeleteWishByName(ctx context.Context, userID uuid.UUID, productName string) (int64, error)
	ListHistory(ctx context.Context, wishID uuid.UUID, limit int) ([]HistoryEntryDTO, error)
}

type service struct {
	wishlistRepo *Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	return &service{wishlistRepo: params.WishlistRepo}, nil
}

// CreateWish validates and stores a new wish.
func (s *service) CreateWish(ctx context.Context, input CreateWishInput) (WishDTO, error) {
	if input.UserID == uuid.Nil {
		return WishDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name := strings.TrimSpace(input.ProductName)
	if name == "" {
		return WishDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	wish := &models.Wish{
		UserID:      input.UserID,
		ProductName: name,
		ProductURL:  optionalString(input.ProductURL),
		Query:       optionalString(input.Query),
		LastPrice:   input.Price.Null(),
	}
	if err := s.wishlistRepo.Create(ctx, wish); err != nil {
		return WishDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to save wish")
	}
	return toWishDTO(*wish), nil
}

// ListWishes returns the user's wishes, newest first.
func (s *service) ListWishes(ctx context.Context, userID uuid.UUID, cursor string, limit int) (WishPageDTO, error) {
	if userID == uuid.Nil {
		return WishPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if _, err := pagination.ParseCursor(cursor); err != nil {
		return WishPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.wishlistRepo.List(ctx, userID, cursor, limit)
	if err != nil {
		return WishPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list wishes")
	}
	return page, nil
}

// DeleteWish removes a wish and its history.
func (s *service) DeleteWish(ctx context.Context, wishID uuid.UUID) error {
	removed, err := s.wishlistRepo.Delete(ctx, wishID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete wish")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wish not found")
	}
	return nil
}

// DeleteWishByName removes the user's wishes saved under productName.
func (s *service) DeleteWishByName(ctx context.Context, userID uuid.UUID, productName string) (int64, error) {
	name := strings.TrimSpace(productName)
	if userID == uuid.Nil || name == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id and product name are required")
	}
	removed, err := s.wishlistRepo.DeleteByName(ctx, userID, name)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete wishes")
	}
	return removed, nil
}

// ListHistory returns the newest observations for an existing wish.
func (s *service) ListHistory(ctx context.Context, wishID uuid.UUID, limit int) ([]HistoryEntryDTO, error) {
	if _, err := s.wishlistRepo.FindByID(ctx, wishID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wish not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load wish")
	}
	entries, err := s.wishlistRepo.ListHistory(ctx, wishID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list price history")
	}
	return entries, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
