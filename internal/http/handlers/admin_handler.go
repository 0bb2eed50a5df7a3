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

// Moderator очередь модерации.
type Moderator interface {
	ListPending(ctx context.Context, sess *service.Session) ([]models.Listing, error)
	Approve(ctx context.Context, sess *service.Session, id uuid.UUID) (*models.Listing, error)
	Reject(ctx context.Context, sess *service.Session, id uuid.UUID) (*models.Listing, error)
	DeleteListing(ctx context.Context, sess *service.Session, id uuid.UUID) (service.BatchResult, error)
}

// AdminHandler панель администратора: модерация и жалобы.
type AdminHandler struct {
	moderation Moderator
	reports    ReportManager
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(moderation Moderator, reports ReportManager) *AdminHandler {
	return &AdminHandler{moderation: moderation, reports: reports}
}

// ListPending обрабатывает GET /api/admin/listings/pending.
func (h *AdminHandler) ListPending(c *gin.Context) {
	sess, err := common.CurrentSession(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	items, err := h.moderation.ListPending(c.Request.Context(), sess)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListingsResponse(items))
}

// Approve обрабатывает POST /api/admin/listings/:id/approve.
func (h *AdminHandler) Approve(c *gin.Context) {
	h.moderate(c, h.moderation.Approve)
}

// Reject обрабатывает POST /api/admin/listings/:id/reject.
func (h *AdminHandler) Reject(c *gin.Context) {
	h.moderate(c, h.moderation.Reject)
}

func (h *AdminHandler) moderate(c *gin.Context, action func(context.Context, *service.Session, uuid.UUID) (*models.Listing, error)) {
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

	listing, err := action(c.Request.Context(), sess, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{ID: listing.ID.String(), Status: listing.Status})
}

// DeleteListing обрабатывает DELETE /api/admin/listings/:id.
func (h *AdminHandler) DeleteListing(c *gin.Context) {
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

	files, err := h.moderation.DeleteListing(c.Request.Context(), sess, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeleteListingResponse{Deleted: true, Files: files})
}

// ListReports обрабатывает GET /api/admin/reports.
func (h *AdminHandler) ListReports(c *gin.Context) {
	sess, err := common.CurrentSession(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	items, err := h.reports.List(c.Request.Context(), sess)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReportsResponse(items))
}

// DeleteReport обрабатывает DELETE /api/admin/reports/:id.
func (h *AdminHandler) DeleteReport(c *gin.Context) {
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

	if err := h.reports.Delete(c.Request.Context(), sess, id); err != nil {
		common.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
