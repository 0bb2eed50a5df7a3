package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignatzorin/housing-backend/internal/app"
	"github.com/ignatzorin/housing-backend/internal/config"
	"github.com/ignatzorin/housing-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/housing-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/housing-backend/internal/http/router"
	"github.com/ignatzorin/housing-backend/internal/logger"
	"github.com/ignatzorin/housing-backend/internal/validation"
	"github.com/ignatzorin/housing-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}
	app.InitLogger(cfg)

	if err := validation.RegisterBindings(); err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось зарегистрировать правила валидации")
	}

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.GoWithContext(ctx, "ws-hub", hub.Run)

	a, err := app.New(ctx, cfg, hub)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка инициализации")
	}
	defer safeClose(a)

	applied, err := a.Migrate(ctx)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка миграций")
	}
	if len(applied) > 0 {
		logger.Log.WithField("migrations", applied).Info("main: миграции применены")
	}

	if _, err := a.Cleanup.Schedule(ctx, cfg.CleanupSchedule); err != nil {
		logger.Log.WithError(err).Fatal("main: неверное расписание очистки")
	}

	// HTTP хэндлеры.
	spa := httpHandlers.NewSPAHandler(cfg.WebRoot)
	if !spa.Available() {
		logger.Log.WithField("web_root", cfg.WebRoot).Warn("main: index.html не найден, фронтенд не раздаётся")
	}

	engine := httpRouter.SetupRouter(cfg, a.Catalog,
		httpRouter.Auth{Tokens: a.Tokens, Sessions: a.Profiles},
		httpRouter.Handlers{
			Health:  httpHandlers.NewHealthHandler(a.DB, hub),
			Catalog: httpHandlers.NewCatalogHandler(),
			Search:  httpHandlers.NewSearchHandler(a.Search),
			Reports: httpHandlers.NewReportHandler(a.Reports),
			Me:      httpHandlers.NewMeHandler(),
			Listing: httpHandlers.NewListingHandler(a.Listings),
			Images:  httpHandlers.NewImageHandler(a.Images, a.Listings, cfg.MaxImagesPerListing, cfg.MaxUploadSizeMB),
			Admin:   httpHandlers.NewAdminHandler(a.Moderation, a.Reports),
			WS:      httpHandlers.NewWSHandler(hub, a.Tokens, a.Profiles, httpRouter.OriginAllowed(cfg.AllowedOrigins)),
			SPA:     spa,
		},
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	}()

	logger.Log.WithField("port", cfg.HTTPPort).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Fatal("main: сервер завершился с ошибкой")
	}

	<-hub.Done()
	logger.Log.Info("main: сервер остановлен")
}

// safeClose закрывает соединение с базой.
func safeClose(a *app.App) {
	if err := a.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
