package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/housing-backend/internal/imaging"
	"github.com/ignatzorin/housing-backend/internal/logger"
	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/repository"
	"github.com/ignatzorin/housing-backend/internal/storage"
)

// Причины отказа по отдельному файлу.
const (
	FailureUnsupportedType = "unsupported_type"
	FailureTooLarge        = "too_large"
	FailureLimitReached    = "limit_reached"
	FailureNotFound        = "not_found"
	FailureStorage         = "storage_error"
	FailureDatabase        = "database_error"
)

// maxParallelFiles сколько файлов обрабатывается одновременно.
const maxParallelFiles = 3

// UploadFile загруженный файл.
type UploadFile struct {
	Name string
	Data []byte
}

// ImageOutcome успешно обработанный элемент пакета.
type ImageOutcome struct {
	Name    string    `json:"name,omitempty"`
	ImageID uuid.UUID `json:"image_id"`
	URL     string    `json:"url,omitempty"`
}

// ImageFailure элемент пакета, который не удалось обработать.
type ImageFailure struct {
	Name    string     `json:"name,omitempty"`
	ImageID *uuid.UUID `json:"image_id,omitempty"`
	Reason  string     `json:"reason"`
}

// BatchResult результат пакетной операции с фото: ни один сбой не теряется.
type BatchResult struct {
	Succeeded []ImageOutcome `json:"succeeded"`
	Failed    []ImageFailure `json:"failed"`
}

// OK все элементы обработаны успешно.
func (b BatchResult) OK() bool {
	return len(b.Failed) == 0
}

func newBatchResult() BatchResult {
	return BatchResult{Succeeded: []ImageOutcome{}, Failed: []ImageFailure{}}
}

type batchItem struct {
	outcome *ImageOutcome
	failure *ImageFailure
}

func collect(items []batchItem) BatchResult {
	result := newBatchResult()
	for _, item := range items {
		switch {
		case item.failure != nil:
			result.Failed = append(result.Failed, *item.failure)
		case item.outcome != nil:
			result.Succeeded = append(result.Succeeded, *item.outcome)
		}
	}
	return result
}

// ImageService загрузка и удаление фото объявлений.
type ImageService struct {
	listings  ListingStore
	images    ImageStore
	files     FileStore
	maxImages int
	now       func() time.Time
}

// NewImageService создаёт сервис.
func NewImageService(listings ListingStore, images ImageStore, files FileStore, maxImages int) *ImageService {
	return &ImageService{
		listings:  listings,
		images:    images,
		files:     files,
		maxImages: maxImages,
		now:       time.Now,
	}
}

// Upload сохраняет фото объявления. Лимит проверяется до начала работы для всего пакета
// и ещё раз транзакционно для каждой вставки.
func (s *ImageService) Upload(ctx context.Context, sess *Session, listingID uuid.UUID, files []UploadFile) (BatchResult, error) {
	if err := requireUser(sess); err != nil {
		return BatchResult{}, err
	}
	if len(files) == 0 {
		return BatchResult{}, apperror.ErrNoFiles
	}

	if _, err := s.listings.GetForOwner(ctx, listingID, sess.UserID); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return BatchResult{}, apperror.ErrListingNotFound
		}
		return BatchResult{}, err
	}

	existing, err := s.images.Count(ctx, listingID)
	if err != nil {
		return BatchResult{}, err
	}
	if existing+len(files) > s.maxImages {
		return BatchResult{}, apperror.ErrImageLimit.WithArgs(s.maxImages)
	}

	stamp := s.now().UnixMilli()
	items := make([]batchItem, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, file := range files {
		g.Go(func() error {
			items[i] = s.uploadOne(gctx, listingID, file, fmt.Sprintf("%s/%d-%d", listingID, stamp, i))
			return nil
		})
	}
	_ = g.Wait()

	result := collect(items)
	logger.Log.WithFields(map[string]interface{}{
		"listing_id": listingID,
		"uploaded":   len(result.Succeeded),
		"failed":     len(result.Failed),
	}).Info("images: upload finished")

	return result, nil
}

func (s *ImageService) uploadOne(ctx context.Context, listingID uuid.UUID, file UploadFile, basePath string) batchItem {
	fail := func(reason string, err error) batchItem {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"listing_id": listingID,
			"file":       file.Name,
			"reason":     reason,
		}).Warn("images: file rejected")
		return batchItem{failure: &ImageFailure{Name: file.Name, Reason: reason}}
	}

	prepared, err := imaging.Compress(file.Data)
	if err != nil {
		if errors.Is(err, imaging.ErrTooManyPixels) {
			return fail(FailureTooLarge, err)
		}
		return fail(FailureUnsupportedType, err)
	}

	objectPath := basePath + "." + prepared.Kind.Extension
	if _, err := s.files.Save(ctx, objectPath, bytes.NewReader(prepared.Data)); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return fail(FailureTooLarge, err)
		}
		return fail(FailureStorage, err)
	}

	img := &models.ListingImage{ListingID: listingID, URL: s.files.PublicURL(objectPath)}
	if err := s.images.CreateWithinLimit(ctx, img, s.maxImages); err != nil {
		if rmErr := s.files.Delete(context.WithoutCancel(ctx), objectPath); rmErr != nil {
			logger.Log.WithError(rmErr).WithField("path", objectPath).Warn("images: orphan file left for cleanup")
		}
		if errors.Is(err, repository.ErrImageLimitReached) {
			return fail(FailureLimitReached, err)
		}
		return fail(FailureDatabase, err)
	}

	return batchItem{outcome: &ImageOutcome{Name: file.Name, ImageID: img.ID, URL: img.URL}}
}

// Delete удаляет фото объявления владельца: строку, затем файл.
func (s *ImageService) Delete(ctx context.Context, sess *Session, listingID uuid.UUID, imageIDs []uuid.UUID) (BatchResult, error) {
	if err := requireUser(sess); err != nil {
		return BatchResult{}, err
	}
	if len(imageIDs) == 0 {
		return BatchResult{}, apperror.ErrNoFiles
	}

	if _, err := s.listings.GetForOwner(ctx, listingID, sess.UserID); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return BatchResult{}, apperror.ErrListingNotFound
		}
		return BatchResult{}, err
	}

	items := make([]batchItem, len(imageIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, imageID := range imageIDs {
		g.Go(func() error {
			items[i] = s.deleteOne(gctx, sess, listingID, imageID)
			return nil
		})
	}
	_ = g.Wait()

	return collect(items), nil
}

func (s *ImageService) deleteOne(ctx context.Context, sess *Session, listingID, imageID uuid.UUID) batchItem {
	id := imageID
	fail := func(reason string) batchItem {
		return batchItem{failure: &ImageFailure{ImageID: &id, Reason: reason}}
	}

	img, err := s.images.GetForOwner(ctx, imageID, listingID, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return fail(FailureNotFound)
		}
		logger.Log.WithError(err).WithField("image_id", imageID).Error("images: lookup failed")
		return fail(FailureDatabase)
	}

	if err := s.images.Delete(ctx, imageID); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return fail(FailureNotFound)
		}
		logger.Log.WithError(err).WithField("image_id", imageID).Error("images: delete row failed")
		return fail(FailureDatabase)
	}

	if err := removeFile(ctx, s.files, img.URL); err != nil {
		return fail(FailureStorage)
	}

	return batchItem{outcome: &ImageOutcome{ImageID: imageID, URL: img.URL}}
}

// removeImageFiles удаляет файлы фото. Сбой по одному файлу не останавливает остальные.
func removeImageFiles(ctx context.Context, files FileStore, images []models.ListingImage) BatchResult {
	items := make([]batchItem, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, img := range images {
		g.Go(func() error {
			id := img.ID
			if err := removeFile(gctx, files, img.URL); err != nil {
				items[i] = batchItem{failure: &ImageFailure{ImageID: &id, Reason: FailureStorage}}
				return nil
			}
			items[i] = batchItem{outcome: &ImageOutcome{ImageID: id, URL: img.URL}}
			return nil
		})
	}
	_ = g.Wait()

	return collect(items)
}

func removeFile(ctx context.Context, files FileStore, url string) error {
	objectPath, ok := files.ObjectPathFromURL(url)
	if !ok {
		logger.Log.WithField("url", url).Warn("images: url does not point to storage")
		return storage.ErrInvalidPath
	}
	if err := files.Delete(ctx, objectPath); err != nil {
		logger.Log.WithError(err).WithField("path", objectPath).Warn("images: file removal failed")
		return err
	}
	return nil
}
