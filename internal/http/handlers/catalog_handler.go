package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/housing-backend/internal/http/middleware"
)

// CatalogHandler отдаёт справочники и советы по безопасности на языке запроса.
type CatalogHandler struct{}

// NewCatalogHandler создаёт хэндлер.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// GetCatalog обрабатывает GET /api/catalog.
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, middleware.Catalog(c).Localized(middleware.Lang(c)))
}

// GetSafety обрабатывает GET /api/safety.
func (h *CatalogHandler) GetSafety(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, middleware.Catalog(c).SafetyGuide(middleware.Lang(c)))
}
