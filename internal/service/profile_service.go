package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/logger"
	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/repository"
)

// ProfileService собирает сессию по проверенному токену и управляет флагом администратора.
type ProfileService struct {
	profiles ProfileStore
	cache    *CacheService
	ttl      time.Duration
}

// NewProfileService создаёт сервис. cache может быть nil, тогда каждый запрос идёт в БД.
func NewProfileService(profiles ProfileStore, cache *CacheService, ttl time.Duration) *ProfileService {
	return &ProfileService{profiles: profiles, cache: cache, ttl: ttl}
}

// Resolve возвращает сессию для claims. Профиль создаётся при первом обращении.
func (s *ProfileService) Resolve(ctx context.Context, claims Claims) (*Session, error) {
	if claims.UserID == uuid.Nil {
		return nil, apperror.ErrUnauthenticated
	}

	load := func(ctx context.Context) (interface{}, error) {
		return s.profiles.Ensure(ctx, claims.UserID, claims.Email)
	}

	var (
		value interface{}
		err   error
	)
	if s.cache != nil {
		value, err = s.cache.GetOrSet(ctx, ProfileCacheKey(claims.UserID), s.ttl, load)
	} else {
		value, err = load(ctx)
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", claims.UserID).Error("profile: resolve failed")
		return nil, apperror.ErrInternal.WithCause(err)
	}

	profile := value.(*models.Profile)
	email := claims.Email
	if email == "" {
		email = profile.Email
	}

	return &Session{
		UserID:  profile.ID,
		Email:   email,
		IsAdmin: profile.IsAdmin,
	}, nil
}

// SetAdmin выдаёт или отзывает права администратора и сбрасывает кэш.
func (s *ProfileService) SetAdmin(ctx context.Context, userID uuid.UUID, email string, isAdmin bool) (*models.Profile, error) {
	if _, err := s.profiles.Ensure(ctx, userID, email); err != nil {
		return nil, err
	}
	if err := s.profiles.SetAdmin(ctx, userID, isAdmin); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.Delete(ProfileCacheKey(userID))
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id":  userID,
		"is_admin": isAdmin,
	}).Info("profile: admin flag changed")

	return s.profiles.GetByID(ctx, userID)
}

// ListAdmins возвращает администраторов.
func (s *ProfileService) ListAdmins(ctx context.Context) ([]models.Profile, error) {
	return s.profiles.ListAdmins(ctx)
}
