package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/dto"
	"github.com/ignatzorin/housing-backend/internal/http/handlers/common"
	"github.com/ignatzorin/housing-backend/internal/logger"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/service"
)

// uploadField имя поля multipart формы с файлами.
const uploadField = "images"

// ImageManager загрузка и удаление фото объявления.
type ImageManager interface {
	Upload(ctx context.Context, sess *service.Session, listingID uuid.UUID, files []service.UploadFile) (service.BatchResult, error)
	Delete(ctx context.Context, sess *service.Session, listingID uuid.UUID, imageIDs []uuid.UUID) (service.BatchResult, error)
}

// ImageHandler фото объявлений владельца.
type ImageHandler struct {
	images    ImageManager
	listings  ListingManager
	maxImages int
	maxBytes  int64
}

// NewImageHandler создаёт хэндлер. maxUploadMB ограничивает один файл.
func NewImageHandler(images ImageManager, listings ListingManager, maxImages int, maxUploadMB int64) *ImageHandler {
	return &ImageHandler{
		images:    images,
		listings:  listings,
		maxImages: maxImages,
		maxBytes:  maxUploadMB * 1024 * 1024,
	}
}

// Count обрабатывает GET /api/my/listings/:id/images.
func (h *ImageHandler) Count(c *gin.Context) {
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

	if _, err := h.listings.GetForEdit(c.Request.Context(), sess, id); err != nil {
		common.RespondError(c, err)
		return
	}
	count, err := h.listings.ImageCount(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImageCountResponse{Count: count, Max: h.maxImages})
}

// Upload обрабатывает POST /api/my/listings/:id/images (multipart, поле "images").
// Отвечает 200, если приняты все файлы, и 207 с разбивкой по файлам иначе.
func (h *ImageHandler) Upload(c *gin.Context) {
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

	// Запас на заголовки частей формы.
	limit := h.maxBytes*int64(h.maxImages) + 1<<20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondError(c, apperror.ErrBadRequest.WithCause(err))
		return
	}
	defer func() {
		if err := form.RemoveAll(); err != nil {
			logger.Log.WithError(err).Warn("images: failed to remove multipart temp files")
		}
	}()

	headers := form.File[uploadField]
	if len(headers) == 0 {
		common.RespondError(c, apperror.ErrNoFiles)
		return
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		data, err := h.readPart(fh)
		if err != nil {
			common.RespondError(c, err)
			return
		}
		files = append(files, service.UploadFile{Name: fh.Filename, Data: data})
	}

	result, err := h.images.Upload(c.Request.Context(), sess, id, files)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(batchStatus(result), result)
}

// Delete обрабатывает DELETE /api/my/listings/:id/images с телом {"image_ids": [...]}.
func (h *ImageHandler) Delete(c *gin.Context) {
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

	var req dto.DeleteImagesRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	result, err := h.images.Delete(c.Request.Context(), sess, id, req.ImageIDs)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(batchStatus(result), result)
}

// DeleteOne обрабатывает DELETE /api/my/listings/:id/images/:imageId.
func (h *ImageHandler) DeleteOne(c *gin.Context) {
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
	imageID, err := common.ParseUUIDParam(c, "imageId")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	result, err := h.images.Delete(c.Request.Context(), sess, id, []uuid.UUID{imageID})
	if err != nil {
		common.RespondError(c, err)
		return
	}
	// Одиночное удаление: отсутствующее фото это 404, а не частичный успех.
	if len(result.Failed) == 1 && result.Failed[0].Reason == service.FailureNotFound {
		common.RespondError(c, apperror.ErrImageNotFound)
		return
	}

	c.JSON(batchStatus(result), result)
}

// readPart читает файл целиком. Файл крупнее лимита передаётся дальше обрезанным
// на один байт сверх лимита, чтобы хранилище отклонило его как too_large.
func (h *ImageHandler) readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.ErrBadRequest.WithCause(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return nil, apperror.ErrInternal.WithCause(err)
	}
	return data, nil
}

func batchStatus(result service.BatchResult) int {
	if result.OK() {
		return http.StatusOK
	}
	return http.StatusMultiStatus
}
