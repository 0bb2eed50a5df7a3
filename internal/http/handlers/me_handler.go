package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/housing-backend/internal/http/handlers/common"
)

// MeHandler текущая сессия.
type MeHandler struct{}

// NewMeHandler создаёт хэндлер.
func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// Me обрабатывает GET /api/me.
func (h *MeHandler) Me(c *gin.Context) {
	sess, err := common.CurrentSession(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
