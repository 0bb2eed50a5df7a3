package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/repository/common"
)

var (
	// ErrImageNotFound сигнализирует об отсутствии фото (или о фото чужого объявления).
	ErrImageNotFound = errors.New("listing image not found")
	// ErrImageLimitReached у объявления уже максимум фото.
	ErrImageLimitReached = errors.New("listing image limit reached")
)

// ListingImageRepository работает с таблицей listing_images.
type ListingImageRepository struct {
	db *sqlx.DB
}

// NewListingImageRepository создаёт экземпляр.
func NewListingImageRepository(db *sqlx.DB) *ListingImageRepository {
	return &ListingImageRepository{db: db}
}

// CreateWithinLimit сохраняет фото, только если у объявления меньше limit фото.
// Строка объявления блокируется, чтобы параллельные загрузки не превысили лимит.
func (r *ListingImageRepository) CreateWithinLimit(ctx context.Context, img *models.ListingImage, limit int) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked uuid.UUID
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM listings WHERE id = $1 FOR UPDATE`, img.ListingID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrListingNotFound
			}
			return fmt.Errorf("listing image repository: lock listing: %w", err)
		}

		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM listing_images WHERE listing_id = $1`, img.ListingID); err != nil {
			return fmt.Errorf("listing image repository: count: %w", err)
		}
		if count >= limit {
			return ErrImageLimitReached
		}

		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO listing_images (listing_id, url)
			VALUES ($1, $2)
			RETURNING id, created_at
		`, img.ListingID, img.URL).Scan(&img.ID, &img.CreatedAt); err != nil {
			return fmt.Errorf("listing image repository: create: %w", err)
		}
		return nil
	})
}

// ListByListing возвращает фото объявления в порядке загрузки.
func (r *ListingImageRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.ListingImage, error) {
	images := []models.ListingImage{}
	if err := r.db.SelectContext(ctx, &images, `
		SELECT id, listing_id, url, created_at FROM listing_images
		WHERE listing_id = $1 ORDER BY created_at ASC
	`, listingID); err != nil {
		return nil, fmt.Errorf("listing image repository: list: %w", err)
	}
	return images, nil
}

// ListByListings возвращает фото нескольких объявлений одним запросом.
func (r *ListingImageRepository) ListByListings(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID][]models.ListingImage, error) {
	result := make(map[uuid.UUID][]models.ListingImage, len(listingIDs))
	if len(listingIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, listing_id, url, created_at FROM listing_images
		WHERE listing_id IN (?) ORDER BY created_at ASC
	`, listingIDs)
	if err != nil {
		return nil, fmt.Errorf("listing image repository: list many: %w", err)
	}

	var images []models.ListingImage
	if err := r.db.SelectContext(ctx, &images, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing image repository: list many: %w", err)
	}
	for _, img := range images {
		result[img.ListingID] = append(result[img.ListingID], img)
	}
	return result, nil
}

// Count возвращает количество фото объявления.
func (r *ListingImageRepository) Count(ctx context.Context, listingID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM listing_images WHERE listing_id = $1`, listingID); err != nil {
		return 0, fmt.Errorf("listing image repository: count: %w", err)
	}
	return count, nil
}

// GetForOwner возвращает фото, только если его объявление принадлежит ownerID.
func (r *ListingImageRepository) GetForOwner(ctx context.Context, imageID, listingID, ownerID uuid.UUID) (*models.ListingImage, error) {
	var img models.ListingImage
	err := r.db.GetContext(ctx, &img, `
		SELECT i.id, i.listing_id, i.url, i.created_at
		FROM listing_images i
		JOIN listings l ON l.id = i.listing_id
		WHERE i.id = $1 AND i.listing_id = $2 AND l.owner_id = $3
	`, imageID, listingID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("listing image repository: get: %w", err)
	}
	return &img, nil
}

// Delete удаляет запись о фото.
func (r *ListingImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listing_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("listing image repository: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrImageNotFound
	}
	return nil
}

// AllURLs возвращает адреса всех фото (для сверки с хранилищем).
func (r *ListingImageRepository) AllURLs(ctx context.Context) ([]string, error) {
	urls := []string{}
	if err := r.db.SelectContext(ctx, &urls, `SELECT url FROM listing_images`); err != nil {
		return nil, fmt.Errorf("listing image repository: all urls: %w", err)
	}
	return urls, nil
}
