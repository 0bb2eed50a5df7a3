package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/dto"
	"github.com/ignatzorin/housing-backend/internal/http/handlers/common"
	"github.com/ignatzorin/housing-backend/internal/http/middleware"
	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/service"
	"github.com/ignatzorin/housing-backend/internal/validation"
)

// ListingFinder публичный поиск и карточка объявления.
type ListingFinder interface {
	Search(ctx context.Context, f models.ListingFilter, page int) (*models.ListingPage, error)
	GetPublic(ctx context.Context, id uuid.UUID, lang string) (*service.PublicListing, error)
	PageSize() int
}

// SearchHandler публичная часть каталога объявлений.
type SearchHandler struct {
	finder ListingFinder
}

// NewSearchHandler создаёт хэндлер.
func NewSearchHandler(finder ListingFinder) *SearchHandler {
	return &SearchHandler{finder: finder}
}

// Search обрабатывает GET /api/listings.
// Параметры: q, area, type, property_type, min_price, max_price, rooms, capacity, page.
// Значение "all" и пустые значения фильтр не ограничивают.
func (h *SearchHandler) Search(c *gin.Context) {
	var q dto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondError(c, validation.FieldErrors{"page": validation.RuleInvalid}.Err())
		return
	}

	filter, err := filterFromQuery(q)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	page, err := h.finder.Search(c.Request.Context(), filter, q.Page)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSearchResponse(page, h.finder.PageSize()))
}

// Get обрабатывает GET /api/listings/:id. Доступны только опубликованные объявления.
func (h *SearchHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	listing, err := h.finder.GetPublic(c.Request.Context(), id, middleware.Lang(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func filterFromQuery(q dto.SearchQuery) (models.ListingFilter, error) {
	fields := validation.FieldErrors{}
	filter := models.ListingFilter{
		Search:       q.Search,
		Area:         q.Area,
		Type:         models.ListingType(q.Type),
		PropertyType: models.PropertyType(q.PropertyType),
	}

	filter.MinPrice = parseFloatFilter(fields, "min_price", q.MinPrice)
	filter.MaxPrice = parseFloatFilter(fields, "max_price", q.MaxPrice)
	// "4+" и "4" означают одно и то же: четыре комнаты и больше.
	filter.Rooms = parseIntFilter(fields, "rooms", strings.TrimSuffix(strings.TrimSpace(q.Rooms), "+"))
	filter.Capacity = parseIntFilter(fields, "capacity", q.Capacity)

	if err := fields.Err(); err != nil {
		return models.ListingFilter{}, err
	}
	return filter, nil
}

func isUnset(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || strings.EqualFold(raw, service.FilterAll)
}

func parseFloatFilter(fields validation.FieldErrors, name, raw string) *float64 {
	if isUnset(raw) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		fields.Add(name, validation.RuleInvalid)
		return nil
	}
	return &v
}

func parseIntFilter(fields validation.FieldErrors, name, raw string) *int {
	if isUnset(raw) {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		fields.Add(name, validation.RuleInvalid)
		return nil
	}
	return &v
}
