package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken токен не прошёл проверку.
var ErrInvalidToken = errors.New("invalid access token")

// Claims данные, которые мы берём из токена провайдера авторизации.
type Claims struct {
	UserID uuid.UUID
	Email  string
}

// TokenManager проверяет access токены внешнего провайдера (HS256 с общим секретом).
type TokenManager struct {
	secret   []byte
	audience string
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret, audience string) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		audience: audience,
	}
}

// ParseAccess проверяет подпись, срок действия и аудиторию, возвращает sub и email.
func (m *TokenManager) ParseAccess(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return Claims{}, ErrInvalidToken
	}

	email, _ := claims["email"].(string)

	return Claims{UserID: userID, Email: email}, nil
}

// Issue выпускает токен в формате провайдера. Нужен для локальной разработки и тестов.
func (m *TokenManager) Issue(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"role":  "authenticated",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	if m.audience != "" {
		claims["aud"] = m.audience
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
