package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/service"
)

// ContextSessionKey ключ сессии в gin.Context.
const ContextSessionKey = "session"

var errInvalidToken = apperror.New(apperror.ErrCodeUnauthorized, "invalid_token")

// TokenParser проверяет access токен.
type TokenParser interface {
	ParseAccess(token string) (service.Claims, error)
}

// SessionResolver собирает сессию по claims.
type SessionResolver interface {
	Resolve(ctx context.Context, claims service.Claims) (*service.Session, error)
}

// Authenticate разбирает заголовок Authorization, если он есть. Запрос без токена
// проходит как гостевой, невалидный токен отклоняется.
func Authenticate(tokens TokenParser, sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			WriteError(c, errInvalidToken)
			return
		}

		claims, err := tokens.ParseAccess(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			WriteError(c, errInvalidToken)
			return
		}

		sess, err := sessions.Resolve(c.Request.Context(), claims)
		if err != nil {
			WriteError(c, err)
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// RequireAuth пропускает только авторизованных пользователей.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c) == nil {
			WriteError(c, apperror.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

// RequireAdmin пропускает только администраторов.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			WriteError(c, apperror.ErrUnauthenticated)
			return
		}
		if !sess.IsAdmin {
			WriteError(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}

// SessionFrom сессия запроса или nil для гостя.
func SessionFrom(c *gin.Context) *service.Session {
	raw, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	sess, _ := raw.(*service.Session)
	return sess
}
