package common

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/http/middleware"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/service"
	"github.com/ignatzorin/housing-backend/internal/validation"
)

// ErrInvalidID параметр маршрута не является UUID.
var ErrInvalidID = apperror.New(apperror.ErrCodeBadRequest, "invalid_id")

// CurrentSession возвращает сессию или ErrUnauthenticated для гостя.
func CurrentSession(c *gin.Context) (*service.Session, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil, apperror.ErrUnauthenticated
	}
	return sess, nil
}

// ParseUUIDParam разбирает UUID из параметра маршрута.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return parsed, nil
}

// BindJSON разбирает тело запроса. Ошибки правил валидатора остаются ошибками полей,
// всё остальное (битый JSON, неверные типы) превращается в bad_request.
func BindJSON(c *gin.Context, req interface{}) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}
	if _, ok := validation.FromBindingError(err); ok {
		return err
	}
	if errors.Is(err, io.EOF) {
		return apperror.ErrBadRequest
	}
	return apperror.ErrBadRequest.WithCause(err)
}

// RespondError отвечает локализованной ошибкой.
func RespondError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}
