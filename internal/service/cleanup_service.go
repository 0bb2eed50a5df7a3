package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/ignatzorin/housing-backend/internal/logger"
)

// OrphanGracePeriod файл без записи в БД не трогаем, пока он моложе этого срока:
// загрузка могла ещё не дойти до вставки строки.
const OrphanGracePeriod = time.Hour

// CleanupReport итог сверки хранилища с БД.
type CleanupReport struct {
	Scanned     int `json:"scanned"`
	Removed     int `json:"removed"`
	Failed      int `json:"failed"`
	DirsRemoved int `json:"dirs_removed"`
}

// CleanupService удаляет файлы фото, на которые не ссылается ни одна запись.
type CleanupService struct {
	listings ListingStore
	images   ImageStore
	files    FileStore
	now      func() time.Time
}

// NewCleanupService создаёт сервис.
func NewCleanupService(listings ListingStore, images ImageStore, files FileStore) *CleanupService {
	return &CleanupService{listings: listings, images: images, files: files, now: time.Now}
}

// Reconcile сверяет хранилище с таблицами listings и listing_images.
func (s *CleanupService) Reconcile(ctx context.Context) (CleanupReport, error) {
	var report CleanupReport

	objects, err := s.files.ListObjects(ctx)
	if err != nil {
		return report, err
	}
	report.Scanned = len(objects)
	prefixes, err := s.files.ListPrefixes(ctx)
	if err != nil {
		return report, err
	}
	if len(objects) == 0 && len(prefixes) == 0 {
		return report, nil
	}

	urls, err := s.images.AllURLs(ctx)
	if err != nil {
		return report, err
	}
	referenced := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if p, ok := s.files.ObjectPathFromURL(u); ok {
			referenced[p] = struct{}{}
		}
	}

	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]struct{})
	track := func(id uuid.UUID) {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, obj := range objects {
		if id, ok := listingIDFromPath(obj.Path); ok {
			track(id)
		}
	}
	for _, prefix := range prefixes {
		if id, err := uuid.Parse(prefix); err == nil {
			track(id)
		}
	}
	existing, err := s.listings.ExistingIDs(ctx, ids)
	if err != nil {
		return report, err
	}

	cutoff := s.now().Add(-OrphanGracePeriod)
	for _, obj := range objects {
		if _, ok := referenced[obj.Path]; ok {
			continue
		}

		id, ok := listingIDFromPath(obj.Path)
		_, listingExists := existing[id]
		if ok && listingExists && obj.ModTime.After(cutoff) {
			continue
		}

		if err := s.files.Delete(ctx, obj.Path); err != nil {
			report.Failed++
			logger.Log.WithError(err).WithField("path", obj.Path).Warn("cleanup: remove failed")
			continue
		}
		report.Removed++
	}

	// Каталоги живых объявлений не трогаем: в них могут идти загрузки.
	for _, prefix := range prefixes {
		id, err := uuid.Parse(prefix)
		if err != nil {
			continue
		}
		if _, ok := existing[id]; ok {
			continue
		}
		removed, err := s.files.RemoveEmptyPrefix(ctx, prefix)
		if err != nil {
			report.Failed++
			logger.Log.WithError(err).WithField("prefix", prefix).Warn("cleanup: remove dir failed")
			continue
		}
		if removed {
			report.DirsRemoved++
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"scanned":      report.Scanned,
		"removed":      report.Removed,
		"failed":       report.Failed,
		"dirs_removed": report.DirsRemoved,
	}).Info("cleanup: storage reconciled")

	return report, nil
}

// Schedule запускает сверку по расписанию cron. Планировщик останавливается вместе с ctx.
func (s *CleanupService) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := s.Reconcile(ctx); err != nil {
			logger.Log.WithError(err).Error("cleanup: scheduled run failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("cleanup: invalid schedule %q: %w", spec, err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()

	logger.Log.WithField("schedule", spec).Info("cleanup: scheduler started")
	return c, nil
}

func listingIDFromPath(objectPath string) (uuid.UUID, bool) {
	dir, _, found := strings.Cut(objectPath, "/")
	if !found {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(dir)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
