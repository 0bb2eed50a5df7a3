package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/dto"
	"github.com/ignatzorin/housing-backend/internal/http/handlers/common"
	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/service"
)

// ListingManager операции владельца над своими объявлениями.
type ListingManager interface {
	ListMine(ctx context.Context, sess *service.Session) ([]models.Listing, error)
	GetForEdit(ctx context.Context, sess *service.Session, id uuid.UUID) (*models.Listing, error)
	Create(ctx context.Context, sess *service.Session, in service.ListingInput) (*models.Listing, error)
	Update(ctx context.Context, sess *service.Session, id uuid.UUID, patch models.ListingPatch) (*models.Listing, error)
	Delete(ctx context.Context, sess *service.Session, id uuid.UUID) (service.BatchResult, error)
	SetStatus(ctx context.Context, sess *service.Session, id uuid.UUID, status models.ListingStatus) (*models.Listing, error)
	ImageCount(ctx context.Context, id uuid.UUID) (int, error)
}

// ListingHandler кабинет владельца: /api/my/listings.
type ListingHandler struct {
	listings ListingManager
}

// NewListingHandler создаёт хэндлер.
func NewListingHandler(listings ListingManager) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// ListMine обрабатывает GET /api/my/listings.
func (h *ListingHandler) ListMine(c *gin.Context) {
	sess, err := common.CurrentSession(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	items, err := h.listings.ListMine(c.Request.Context(), sess)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListingsResponse(items))
}

// Get обрабатывает GET /api/my/listings/:id.
func (h *ListingHandler) Get(c *gin.Context) {
	sess, err := common.CurrentSession(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	listing, err := h.listings.GetForEdit(c.Request.Context(), sess, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Create обрабатывает POST /api/my/listings. Новое объявление уходит на модерацию.
func (h *ListingHandler) Create(c *gin.Context) {
	sess, err := common.CurrentSession(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.CreateListingRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), sess, req.ToInput())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// Update обрабатывает PATCH /api/my/listings/:id.
func (h *ListingHandler) Update(c *gin.Context) {
	sess, err := common.CurrentSession(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.UpdateListingRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	listing, err := h.listings.Update(c.Request.Context(), sess, id, req.ToPatch())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Delete обрабатывает DELETE /api/my/listings/:id.
func (h *ListingHandler) Delete(c *gin.Context) {
	sess, err := common.CurrentSession(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	files, err := h.listings.Delete(c.Request.Context(), sess, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeleteListingResponse{Deleted: true, Files: files})
}

// SetStatus обрабатывает PUT /api/my/listings/:id/status.
func (h *ListingHandler) SetStatus(c *gin.Context) {
	sess, err := common.CurrentSession(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.SetStatusRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	listing, err := h.listings.SetStatus(c.Request.Context(), sess, id, req.Status)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{ID: listing.ID.String(), Status: listing.Status})
}
