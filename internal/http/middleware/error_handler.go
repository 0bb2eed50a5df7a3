package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/housing-backend/internal/logger"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/validation"
)

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteError отвечает локализованной ошибкой. Внутренние ошибки маскируются и логируются.
func WriteError(c *gin.Context, err error) {
	cat := catalogFrom(c)
	lang := Lang(c)

	if fields, ok := validation.AsFieldErrors(err); ok {
		writeFieldErrors(c, fields)
		return
	}
	if fields, ok := validation.FromBindingError(err); ok {
		writeFieldErrors(c, fields)
		return
	}

	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.ErrInternal.WithCause(err)
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("request error")
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus, ErrorResponse{
		Error: cat.Message(lang, appErr.MessageKey, appErr.Args...),
		Code:  string(appErr.Code),
	})
}

func writeFieldErrors(c *gin.Context, fields validation.FieldErrors) {
	cat := catalogFrom(c)
	lang := Lang(c)

	localized := make(map[string]string, len(fields))
	for field, rule := range fields {
		localized[field] = cat.FieldMessage(lang, field, rule)
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:  cat.Message(lang, "validation_failed"),
		Code:   string(apperror.ErrCodeValidation),
		Fields: localized,
	})
}

// ErrorHandler отвечает на ошибки, добавленные через c.Error, если обработчик сам ничего не записал.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}
