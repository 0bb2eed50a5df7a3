package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/housing-backend/internal/catalog"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/service"
	"github.com/ignatzorin/housing-backend/internal/validation"
)

type stubTokens map[string]service.Claims

func (s stubTokens) ParseAccess(token string) (service.Claims, error) {
	claims, ok := s[token]
	if !ok {
		return service.Claims{}, service.ErrInvalidToken
	}
	return claims, nil
}

type stubSessions struct {
	admins map[uuid.UUID]bool
}

func (s stubSessions) Resolve(_ context.Context, claims service.Claims) (*service.Session, error) {
	return &service.Session{UserID: claims.UserID, Email: claims.Email, IsAdmin: s.admins[claims.UserID]}, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Locale(catalog.Default()))
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticate(t *testing.T) {
	user := uuid.New()
	admin := uuid.New()
	tokens := stubTokens{
		"user-token":  {UserID: user, Email: "u@example.com"},
		"admin-token": {UserID: admin},
	}
	sessions := stubSessions{admins: map[uuid.UUID]bool{admin: true}}

	r := newTestRouter()
	r.Use(Authenticate(tokens, sessions))
	r.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"guest": SessionFrom(c) == nil})
	})
	r.GET("/mine", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": SessionFrom(c).UserID})
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		code   string
	}{
		{"guest on public route", "/public", "", http.StatusOK, ""},
		{"guest on private route", "/mine", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"malformed header", "/public", "Token abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown token", "/public", "Bearer nope", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"user on private route", "/mine", "Bearer user-token", http.StatusOK, ""},
		{"user on admin route", "/admin", "Bearer user-token", http.StatusForbidden, "FORBIDDEN"},
		{"admin on admin route", "/admin", "Bearer admin-token", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decode(t, w).Code)
			}
		})
	}
}

func TestWriteError_Localized(t *testing.T) {
	r := newTestRouter()
	r.GET("/limit", func(c *gin.Context) {
		WriteError(c, apperror.ErrImageLimit.WithArgs(5))
	})
	r.GET("/fields", func(c *gin.Context) {
		WriteError(c, validation.FieldErrors{"title": validation.RuleRequired}.Err())
	})
	r.GET("/boom", func(c *gin.Context) {
		WriteError(c, errors.New("pq: connection refused"))
	})

	req := httptest.NewRequest(http.MethodGet, "/limit", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Maximum 5 images", decode(t, w).Error)
	assert.Equal(t, "en", w.Header().Get("Content-Language"))

	req = httptest.NewRequest(http.MethodGet, "/fields?lang=ar", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "العنوان مطلوب", body.Fields["title"])

	req = httptest.NewRequest(http.MethodGet, "/boom", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body = decode(t, w)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, body.Error, "pq")
}

func TestErrorHandler_UsesContextErrors(t *testing.T) {
	r := newTestRouter()
	r.Use(ErrorHandler())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(apperror.ErrListingNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newTestRouter()
	r.Use(RateLimitMiddleware(2, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestUUIDValidator(t *testing.T) {
	r := newTestRouter()
	r.GET("/listings/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listings/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decode(t, w).Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listings/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
