package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/logger"
	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/repository"
	"github.com/ignatzorin/housing-backend/internal/validation"
)

// AreaResolver приводит название района к коду каталога.
type AreaResolver interface {
	ResolveArea(input string) (string, bool)
	IsArea(code string) bool
}

// ListingInput данные нового объявления.
type ListingInput struct {
	Title           string
	Type            models.ListingType
	PropertyType    models.PropertyType
	Area            string
	Price           *float64
	PriceNote       *string
	Rooms           *int
	FloorArea       *float64
	Capacity        *int
	Utilities       *models.Utilities
	Description     *string
	ContactName     string
	ContactPhone    string
	WhatsAppEnabled *bool
}

// ListingService объявления владельца.
type ListingService struct {
	listings ListingStore
	images   ImageStore
	files    FileStore
	areas    AreaResolver
	notifier Notifier
}

// NewListingService создаёт сервис.
func NewListingService(listings ListingStore, images ImageStore, files FileStore, areas AreaResolver, notifier Notifier) *ListingService {
	return &ListingService{
		listings: listings,
		images:   images,
		files:    files,
		areas:    areas,
		notifier: notifierOrNoop(notifier),
	}
}

// ListMine объявления текущего пользователя, новые первыми.
func (s *ListingService) ListMine(ctx context.Context, sess *Session) ([]models.Listing, error) {
	if err := requireUser(sess); err != nil {
		return nil, err
	}

	listings, err := s.listings.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if err := attachImages(ctx, s.images, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// GetForEdit объявление владельца вместе с фото. Чужое объявление неотличимо от отсутствующего.
func (s *ListingService) GetForEdit(ctx context.Context, sess *Session, id uuid.UUID) (*models.Listing, error) {
	if err := requireUser(sess); err != nil {
		return nil, err
	}

	listing, err := s.ownedListing(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	images, err := s.images.ListByListing(ctx, id)
	if err != nil {
		return nil, err
	}
	listing.Images = images
	return listing, nil
}

// Create создаёт объявление. Новое объявление всегда ждёт модерации.
// Без указанного вида предложения объявление считается арендой.
func (s *ListingService) Create(ctx context.Context, sess *Session, in ListingInput) (*models.Listing, error) {
	if err := requireUser(sess); err != nil {
		return nil, err
	}

	listing := &models.Listing{
		OwnerID:         sess.UserID,
		Title:           strings.TrimSpace(in.Title),
		Type:            in.Type,
		PropertyType:    in.PropertyType,
		Area:            s.resolveArea(in.Area),
		Price:           in.Price,
		PriceNote:       optionalText(in.PriceNote),
		Rooms:           in.Rooms,
		FloorArea:       in.FloorArea,
		Capacity:        1,
		Utilities:       models.DefaultUtilities(),
		Description:     optionalText(in.Description),
		ContactName:     strings.TrimSpace(in.ContactName),
		ContactPhone:    strings.TrimSpace(in.ContactPhone),
		WhatsAppEnabled: true,
		Status:          models.ListingStatusPending,
	}
	if listing.Type == "" {
		listing.Type = models.ListingTypeRent
	}
	if in.Capacity != nil {
		listing.Capacity = *in.Capacity
	}
	if in.Utilities != nil {
		listing.Utilities = *in.Utilities
	}
	if in.WhatsAppEnabled != nil {
		listing.WhatsAppEnabled = *in.WhatsAppEnabled
	}

	listing.NormalizeShape()
	if err := validation.ValidateListing(listing, s.areas.IsArea).Err(); err != nil {
		return nil, err
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	listing.Images = []models.ListingImage{}

	logger.Log.WithFields(map[string]interface{}{
		"listing_id": listing.ID,
		"owner_id":   listing.OwnerID,
	}).Info("listing: created, awaiting moderation")

	s.notifier.NotifyAdmins(EventListingPending, map[string]interface{}{
		"listing_id": listing.ID,
		"title":      listing.Title,
	})

	return listing, nil
}

// Update применяет частичное изменение и заново проверяет объявление целиком.
func (s *ListingService) Update(ctx context.Context, sess *Session, id uuid.UUID, patch models.ListingPatch) (*models.Listing, error) {
	if err := requireUser(sess); err != nil {
		return nil, err
	}

	listing, err := s.ownedListing(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.GetForEdit(ctx, sess, id)
	}

	s.applyPatch(listing, patch)
	listing.NormalizeShape()
	if err := validation.ValidateListing(listing, s.areas.IsArea).Err(); err != nil {
		return nil, err
	}

	affected, err := s.listings.UpdateForOwner(ctx, listing)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperror.ErrListingNotFound
	}

	return s.GetForEdit(ctx, sess, id)
}

func (s *ListingService) applyPatch(l *models.Listing, p models.ListingPatch) {
	if p.Title != nil {
		l.Title = strings.TrimSpace(*p.Title)
	}
	if p.Type != nil {
		l.Type = *p.Type
	}
	if p.PropertyType != nil {
		l.PropertyType = *p.PropertyType
	}
	if p.Area != nil {
		l.Area = s.resolveArea(*p.Area)
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.PriceNote != nil {
		l.PriceNote = optionalText(p.PriceNote)
	}
	if p.Rooms != nil {
		l.Rooms = *p.Rooms
	}
	if p.FloorArea != nil {
		l.FloorArea = *p.FloorArea
	}
	if p.Capacity != nil {
		l.Capacity = *p.Capacity
	}
	if p.Utilities != nil {
		l.Utilities = *p.Utilities
	}
	if p.Description != nil {
		l.Description = optionalText(p.Description)
	}
	if p.ContactName != nil {
		l.ContactName = strings.TrimSpace(*p.ContactName)
	}
	if p.ContactPhone != nil {
		l.ContactPhone = strings.TrimSpace(*p.ContactPhone)
	}
	if p.WhatsAppEnabled != nil {
		l.WhatsAppEnabled = *p.WhatsAppEnabled
	}
}

// Delete удаляет объявление владельца: сначала файлы фото, затем строку.
// Ошибки удаления файлов не прерывают операцию и возвращаются в результате.
func (s *ListingService) Delete(ctx context.Context, sess *Session, id uuid.UUID) (BatchResult, error) {
	if err := requireUser(sess); err != nil {
		return BatchResult{}, err
	}

	if _, err := s.ownedListing(ctx, sess, id); err != nil {
		return BatchResult{}, err
	}

	images, err := s.images.ListByListing(ctx, id)
	if err != nil {
		return BatchResult{}, err
	}
	result := removeImageFiles(ctx, s.files, images)

	affected, err := s.listings.DeleteForOwner(ctx, id, sess.UserID)
	if err != nil {
		return result, err
	}
	if affected == 0 {
		return result, apperror.ErrListingNotFound
	}

	logger.Log.WithFields(map[string]interface{}{
		"listing_id":    id,
		"files_removed": len(result.Succeeded),
		"files_failed":  len(result.Failed),
	}).Info("listing: deleted by owner")

	return result, nil
}

// SetStatus переключает объявление между active и hidden. Объявление на модерации владелец менять не может.
func (s *ListingService) SetStatus(ctx context.Context, sess *Session, id uuid.UUID, status models.ListingStatus) (*models.Listing, error) {
	if err := requireUser(sess); err != nil {
		return nil, err
	}
	if status != models.ListingStatusActive && status != models.ListingStatusHidden {
		return nil, apperror.ErrInvalidTransition
	}

	listing, err := s.ownedListing(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if listing.Status == status {
		return listing, nil
	}
	if listing.Status == models.ListingStatusPending {
		return nil, apperror.ErrInvalidTransition
	}

	affected, err := s.listings.SetStatusForOwner(ctx, id, sess.UserID, listing.Status, status)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperror.ErrInvalidTransition
	}

	return s.ownedListing(ctx, sess, id)
}

// ImageCount количество фото объявления.
func (s *ListingService) ImageCount(ctx context.Context, id uuid.UUID) (int, error) {
	return s.images.Count(ctx, id)
}

func (s *ListingService) ownedListing(ctx context.Context, sess *Session, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.GetForOwner(ctx, id, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) resolveArea(input string) string {
	input = strings.TrimSpace(input)
	if code, ok := s.areas.ResolveArea(input); ok {
		return code
	}
	return input
}

// optionalText обрезает пробелы; пустая строка превращается в nil.
func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
