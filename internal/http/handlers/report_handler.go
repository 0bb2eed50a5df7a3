package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/dto"
	"github.com/ignatzorin/housing-backend/internal/http/handlers/common"
	"github.com/ignatzorin/housing-backend/internal/http/middleware"
	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/service"
)

// ReportManager жалобы посетителей.
type ReportManager interface {
	Create(ctx context.Context, sess *service.Session, in service.ReportInput) (*models.Report, error)
	List(ctx context.Context, sess *service.Session) ([]models.ReportWithListing, error)
	Delete(ctx context.Context, sess *service.Session, id uuid.UUID) error
}

// ReportHandler приём жалоб от посетителей.
type ReportHandler struct {
	reports ReportManager
}

// NewReportHandler создаёт хэндлер.
func NewReportHandler(reports ReportManager) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create обрабатывает POST /api/listings/:id/reports. Авторизация не требуется.
func (h *ReportHandler) Create(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.CreateReportRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	report, err := h.reports.Create(c.Request.Context(), middleware.SessionFrom(c), service.ReportInput{
		ListingID: id,
		Reason:    req.Reason,
		Details:   req.Details,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}
