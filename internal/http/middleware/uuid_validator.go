package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
)

var errInvalidID = apperror.New(apperror.ErrCodeBadRequest, "invalid_id")

// UUIDValidator проверяет, что параметры маршрута являются валидными UUID.
// Использование: router.GET("/listings/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range paramNames {
			if _, err := uuid.Parse(c.Param(name)); err != nil {
				WriteError(c, errInvalidID)
				return
			}
		}
		c.Next()
	}
}
