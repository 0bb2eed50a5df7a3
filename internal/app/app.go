// Package app собирает зависимости приложения: БД, хранилище, репозитории и сервисы.
// Используется сервером и CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/housing-backend/internal/catalog"
	"github.com/ignatzorin/housing-backend/internal/config"
	"github.com/ignatzorin/housing-backend/internal/db"
	"github.com/ignatzorin/housing-backend/internal/logger"
	"github.com/ignatzorin/housing-backend/internal/repository"
	"github.com/ignatzorin/housing-backend/internal/service"
	"github.com/ignatzorin/housing-backend/internal/storage"
)

// cacheCleanupEvery период очистки кэша профилей.
const cacheCleanupEvery = 5 * time.Minute

// App готовые к работе сервисы.
type App struct {
	Config  *config.Config
	DB      *sqlx.DB
	Catalog *catalog.Catalog
	Storage *storage.PhotoStorage
	Tokens  *service.TokenManager

	Profiles   *service.ProfileService
	Listings   *service.ListingService
	Images     *service.ImageService
	Moderation *service.ModerationService
	Search     *service.SearchService
	Reports    *service.ReportService
	Cleanup    *service.CleanupService
}

// InitLogger настраивает логгер под окружение.
func InitLogger(cfg *config.Config) {
	level := cfg.LogLevel
	if level == "" {
		level = "info"
		if !cfg.IsProduction() {
			level = "debug"
		}
	}
	logger.Init(level)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}
}

// New подключается к БД и собирает сервисы. notifier может быть nil.
// Фоновые задачи (очистка кэша) живут до отмены ctx.
func New(ctx context.Context, cfg *config.Config, notifier service.Notifier) (*App, error) {
	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	photos, err := storage.NewPhotoStorage(cfg.MediaStoragePath, storage.ListingsBucket, cfg.PublicBaseURL, cfg.MaxUploadSizeMB)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	cat := catalog.Default()

	listingRepo := repository.NewListingRepository(conn)
	imageRepo := repository.NewListingImageRepository(conn)
	reportRepo := repository.NewReportRepository(conn)
	profileRepo := repository.NewProfileRepository(conn)

	cache := service.NewCacheService(ctx, cacheCleanupEvery)

	return &App{
		Config:  cfg,
		DB:      conn,
		Catalog: cat,
		Storage: photos,
		Tokens:  service.NewTokenManager(cfg.AuthJWTSecret, cfg.AuthJWTAudience),

		Profiles:   service.NewProfileService(profileRepo, cache, cfg.AdminCacheTTL),
		Listings:   service.NewListingService(listingRepo, imageRepo, photos, cat, notifier),
		Images:     service.NewImageService(listingRepo, imageRepo, photos, cfg.MaxImagesPerListing),
		Moderation: service.NewModerationService(listingRepo, imageRepo, photos, notifier),
		Search:     service.NewSearchService(listingRepo, imageRepo, cat, cat, cfg.PageSize),
		Reports:    service.NewReportService(reportRepo, listingRepo, service.NewFingerprinter(cfg.ReportFingerprintKey), notifier),
		Cleanup:    service.NewCleanupService(listingRepo, imageRepo, photos),
	}, nil
}

// Migrate применяет миграции из MigrationsPath или встроенные.
func (a *App) Migrate(ctx context.Context) ([]string, error) {
	return db.RunMigrations(ctx, a.DB, db.MigrationsFS(a.Config.MigrationsPath))
}

// Close закрывает соединение с БД.
func (a *App) Close() error {
	return a.DB.Close()
}
