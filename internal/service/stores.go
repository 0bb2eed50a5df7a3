package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/storage"
)

// ListingStore хранилище объявлений.
type ListingStore interface {
	Create(ctx context.Context, l *models.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Listing, error)
	GetActive(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error)
	ListByStatus(ctx context.Context, status models.ListingStatus) ([]models.Listing, error)
	Search(ctx context.Context, f models.ListingFilter, limit, offset int) ([]models.Listing, error)
	UpdateForOwner(ctx context.Context, l *models.Listing) (int64, error)
	SetStatusForOwner(ctx context.Context, id, ownerID uuid.UUID, from, to models.ListingStatus) (int64, error)
	Transition(ctx context.Context, id uuid.UUID, from, to models.ListingStatus) (int64, error)
	DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ExistingIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// ImageStore хранилище записей о фотографиях.
type ImageStore interface {
	CreateWithinLimit(ctx context.Context, img *models.ListingImage, limit int) error
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.ListingImage, error)
	ListByListings(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID][]models.ListingImage, error)
	Count(ctx context.Context, listingID uuid.UUID) (int, error)
	GetForOwner(ctx context.Context, imageID, listingID, ownerID uuid.UUID) (*models.ListingImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AllURLs(ctx context.Context) ([]string, error)
}

// FileStore файловое хранилище фотографий.
type FileStore interface {
	Save(ctx context.Context, objectPath string, r io.Reader) (int64, error)
	Delete(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) string
	ObjectPathFromURL(url string) (string, bool)
	ListObjects(ctx context.Context) ([]storage.Object, error)
	ListPrefixes(ctx context.Context) ([]string, error)
	RemoveEmptyPrefix(ctx context.Context, prefix string) (bool, error)
}

// ReportStore хранилище жалоб.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	ListWithListings(ctx context.Context) ([]models.ReportWithListing, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileStore хранилище профилей пользователей.
type ProfileStore interface {
	Ensure(ctx context.Context, id uuid.UUID, email string) (*models.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error
	ListAdmins(ctx context.Context) ([]models.Profile, error)
}

// attachImages загружает фотографии для набора объявлений одним запросом.
func attachImages(ctx context.Context, images ImageStore, listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(listings))
	for i := range listings {
		ids[i] = listings[i].ID
	}

	byListing, err := images.ListByListings(ctx, ids)
	if err != nil {
		return err
	}
	for i := range listings {
		imgs := byListing[listings[i].ID]
		if imgs == nil {
			imgs = []models.ListingImage{}
		}
		listings[i].Images = imgs
	}
	return nil
}
