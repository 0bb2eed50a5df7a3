package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
)

// AppError категоризированная ошибка сервиса.
// MessageKey ключ локализованного сообщения в каталоге, Args его аргументы.
type AppError struct {
	Code       ErrorCode
	MessageKey string
	Args       []any
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.MessageKey, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.MessageKey)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает по коду и ключу, чтобы errors.Is работал с копиями из WithArgs/Wrap.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.MessageKey == t.MessageKey
}

func New(code ErrorCode, messageKey string) *AppError {
	return &AppError{
		Code:       code,
		MessageKey: messageKey,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, messageKey string) *AppError {
	return &AppError{
		Code:       code,
		MessageKey: messageKey,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// WithArgs возвращает копию ошибки с аргументами для сообщения.
func (e *AppError) WithArgs(args ...any) *AppError {
	cp := *e
	cp.Args = args
	return &cp
}

// WithCause возвращает копию ошибки с причиной.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Cause = err
	return &cp
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// As извлекает AppError из цепочки.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeForbidden
}

func IsUnauthorized(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeUnauthorized
}

func IsConflict(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeConflict
}

var (
	ErrUnauthenticated   = New(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden         = New(ErrCodeForbidden, "forbidden")
	ErrListingNotFound   = New(ErrCodeNotFound, "listing_not_found")
	ErrImageNotFound     = New(ErrCodeNotFound, "image_not_found")
	ErrReportNotFound    = New(ErrCodeNotFound, "report_not_found")
	ErrInvalidTransition = New(ErrCodeConflict, "invalid_transition")
	ErrImageLimit        = New(ErrCodeConflict, "image_limit")
	ErrDuplicateReport   = New(ErrCodeConflict, "duplicate_report")
	ErrNoFiles           = New(ErrCodeBadRequest, "no_files")
	ErrBadRequest        = New(ErrCodeBadRequest, "bad_request")
	ErrNotFound          = New(ErrCodeNotFound, "not_found")
	ErrInternal          = New(ErrCodeInternal, "internal")
)
