package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/housing-backend/internal/catalog"
	"github.com/ignatzorin/housing-backend/internal/config"
	"github.com/ignatzorin/housing-backend/internal/http/handlers"
	"github.com/ignatzorin/housing-backend/internal/http/middleware"
	"github.com/ignatzorin/housing-backend/internal/logger"
)

// reportRatePeriod окно ограничения жалоб с одного IP.
const reportRatePeriod = time.Hour

// Handlers все HTTP обработчики приложения.
type Handlers struct {
	Health  *handlers.HealthHandler
	Catalog *handlers.CatalogHandler
	Search  *handlers.SearchHandler
	Reports *handlers.ReportHandler
	Me      *handlers.MeHandler
	Listing *handlers.ListingHandler
	Images  *handlers.ImageHandler
	Admin   *handlers.AdminHandler
	WS      *handlers.WSHandler
	SPA     *handlers.SPAHandler
}

// Auth проверка токенов и сборка сессии.
type Auth struct {
	Tokens   middleware.TokenParser
	Sessions middleware.SessionResolver
}

// SetupRouter собирает gin.Engine со всеми маршрутами.
func SetupRouter(cfg *config.Config, cat *catalog.Catalog, auth Auth, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies(cfg.TrustedProxies)); err != nil {
		logger.Log.WithError(err).Warn("router: неверный список доверенных прокси, X-Forwarded-For игнорируется")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(cors.New(CORSConfig(cfg.AllowedOrigins)))
	r.Use(middleware.Locale(cat))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", h.Health.Health)
	r.Static("/media", cfg.MediaStoragePath)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	// WebSocket проверяет токен из ?token сам, поэтому регистрируется до Authenticate.
	api.GET("/ws", h.WS.Handle)
	api.Use(middleware.Authenticate(auth.Tokens, auth.Sessions))

	// Публичные маршруты
	api.GET("/catalog", h.Catalog.GetCatalog)
	api.GET("/safety", h.Catalog.GetSafety)
	api.GET("/listings", h.Search.Search)
	api.GET("/listings/:id", middleware.UUIDValidator("id"), h.Search.Get)
	api.POST("/listings/:id/reports",
		middleware.UUIDValidator("id"),
		middleware.RateLimitMiddleware(cfg.ReportRateLimit, reportRatePeriod),
		h.Reports.Create,
	)

	// Кабинет владельца
	my := api.Group("/")
	my.Use(middleware.RequireAuth())
	{
		my.GET("/me", h.Me.Me)

		my.GET("/my/listings", h.Listing.ListMine)
		my.POST("/my/listings", h.Listing.Create)
		my.GET("/my/listings/:id", middleware.UUIDValidator("id"), h.Listing.Get)
		my.PATCH("/my/listings/:id", middleware.UUIDValidator("id"), h.Listing.Update)
		my.DELETE("/my/listings/:id", middleware.UUIDValidator("id"), h.Listing.Delete)
		my.PUT("/my/listings/:id/status", middleware.UUIDValidator("id"), h.Listing.SetStatus)

		my.GET("/my/listings/:id/images", middleware.UUIDValidator("id"), h.Images.Count)
		my.POST("/my/listings/:id/images", middleware.UUIDValidator("id"), h.Images.Upload)
		my.DELETE("/my/listings/:id/images", middleware.UUIDValidator("id"), h.Images.Delete)
		my.DELETE("/my/listings/:id/images/:imageId", middleware.UUIDValidator("id", "imageId"), h.Images.DeleteOne)
	}

	// Модерация
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/listings/pending", h.Admin.ListPending)
		admin.POST("/listings/:id/approve", middleware.UUIDValidator("id"), h.Admin.Approve)
		admin.POST("/listings/:id/reject", middleware.UUIDValidator("id"), h.Admin.Reject)
		admin.DELETE("/listings/:id", middleware.UUIDValidator("id"), h.Admin.DeleteListing)
		admin.GET("/reports", h.Admin.ListReports)
		admin.DELETE("/reports/:id", middleware.UUIDValidator("id"), h.Admin.DeleteReport)
	}

	r.NoRoute(h.SPA.NoRoute)

	return r
}

// trustedProxies без настроенных прокси IP клиента берётся из соединения.
func trustedProxies(proxies []string) []string {
	if len(proxies) == 0 {
		return nil
	}
	return proxies
}

// CORSConfig настройки CORS для фронтенда.
func CORSConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Language", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
}

// OriginAllowed проверка Origin для WebSocket по тому же списку, что и CORS.
func OriginAllowed(origins []string) func(string) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(origin string) bool {
		if _, ok := allowed["*"]; ok {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
