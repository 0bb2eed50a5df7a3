package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/logger"
	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/repository"
)

// ModerationService очередь модерации. Все методы только для администраторов.
type ModerationService struct {
	listings ListingStore
	images   ImageStore
	files    FileStore
	notifier Notifier
}

// NewModerationService создаёт сервис.
func NewModerationService(listings ListingStore, images ImageStore, files FileStore, notifier Notifier) *ModerationService {
	return &ModerationService{
		listings: listings,
		images:   images,
		files:    files,
		notifier: notifierOrNoop(notifier),
	}
}

// ListPending объявления, ожидающие модерации, новые первыми.
func (s *ModerationService) ListPending(ctx context.Context, sess *Session) ([]models.Listing, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	listings, err := s.listings.ListByStatus(ctx, models.ListingStatusPending)
	if err != nil {
		return nil, err
	}
	if err := attachImages(ctx, s.images, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Approve публикует объявление.
func (s *ModerationService) Approve(ctx context.Context, sess *Session, id uuid.UUID) (*models.Listing, error) {
	return s.transition(ctx, sess, id, models.ListingStatusActive, EventListingApproved)
}

// Reject скрывает объявление.
func (s *ModerationService) Reject(ctx context.Context, sess *Session, id uuid.UUID) (*models.Listing, error) {
	return s.transition(ctx, sess, id, models.ListingStatusHidden, EventListingRejected)
}

// transition переводит объявление из pending. Переход атомарен: условие на статус в самом UPDATE.
func (s *ModerationService) transition(ctx context.Context, sess *Session, id uuid.UUID, to models.ListingStatus, event string) (*models.Listing, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	affected, err := s.listings.Transition(ctx, id, models.ListingStatusPending, to)
	if err != nil {
		return nil, err
	}

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, err
	}
	if affected == 0 {
		return nil, apperror.ErrInvalidTransition
	}

	logger.Log.WithFields(map[string]interface{}{
		"listing_id": id,
		"status":     to,
		"admin_id":   sess.UserID,
	}).Info("moderation: listing status changed")

	s.notifier.NotifyUser(listing.OwnerID, event, map[string]interface{}{
		"listing_id": listing.ID,
		"title":      listing.Title,
		"status":     listing.Status,
	})

	return listing, nil
}

// DeleteListing удаление объявления администратором: файлы, затем строка.
func (s *ModerationService) DeleteListing(ctx context.Context, sess *Session, id uuid.UUID) (BatchResult, error) {
	if err := requireAdmin(sess); err != nil {
		return BatchResult{}, err
	}

	if _, err := s.listings.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return BatchResult{}, apperror.ErrListingNotFound
		}
		return BatchResult{}, err
	}

	images, err := s.images.ListByListing(ctx, id)
	if err != nil {
		return BatchResult{}, err
	}
	result := removeImageFiles(ctx, s.files, images)

	affected, err := s.listings.Delete(ctx, id)
	if err != nil {
		return result, err
	}
	if affected == 0 {
		return result, apperror.ErrListingNotFound
	}

	logger.Log.WithFields(map[string]interface{}{
		"listing_id": id,
		"admin_id":   sess.UserID,
	}).Info("moderation: listing deleted")

	return result, nil
}
