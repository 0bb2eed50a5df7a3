package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
)

type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) Ensure(ctx context.Context, id uuid.UUID, email string) (*models.Profile, error) {
	args := m.Called(ctx, id, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfileStore) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	args := m.Called(ctx, id, isAdmin)
	return args.Error(0)
}

func (m *mockProfileStore) ListAdmins(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func TestProfileService_Resolve_CachesProfile(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())
	cache := NewCacheService(ctx, time.Minute)
	defer func() {
		cancel()
		<-cache.Done()
	}()

	store := new(mockProfileStore)
	userID := uuid.New()
	store.On("Ensure", mock.Anything, userID, "admin@example.com").
		Return(&models.Profile{ID: userID, Email: "admin@example.com", IsAdmin: true}, nil).Once()

	svc := NewProfileService(store, cache, time.Minute)
	claims := Claims{UserID: userID, Email: "admin@example.com"}

	for i := 0; i < 3; i++ {
		sess, err := svc.Resolve(context.Background(), claims)
		require.NoError(t, err)
		assert.Equal(t, userID, sess.UserID)
		assert.True(t, sess.IsAdmin)
	}
	store.AssertExpectations(t)
}

func TestProfileService_Resolve_Errors(t *testing.T) {
	store := new(mockProfileStore)
	svc := NewProfileService(store, nil, time.Minute)

	_, err := svc.Resolve(context.Background(), Claims{})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	userID := uuid.New()
	store.On("Ensure", mock.Anything, userID, "").Return(nil, assert.AnError)
	_, err = svc.Resolve(context.Background(), Claims{UserID: userID})
	assert.ErrorIs(t, err, apperror.ErrInternal)
}

func TestProfileService_SetAdmin_InvalidatesCache(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())
	cache := NewCacheService(ctx, time.Minute)
	defer func() {
		cancel()
		<-cache.Done()
	}()

	store := new(mockProfileStore)
	userID := uuid.New()
	before := &models.Profile{ID: userID, Email: "u@example.com"}
	after := &models.Profile{ID: userID, Email: "u@example.com", IsAdmin: true}

	store.On("Ensure", mock.Anything, userID, "u@example.com").Return(before, nil).Once()
	store.On("Ensure", mock.Anything, userID, "").Return(before, nil).Once()
	store.On("SetAdmin", mock.Anything, userID, true).Return(nil).Once()
	store.On("GetByID", mock.Anything, userID).Return(after, nil).Once()
	store.On("Ensure", mock.Anything, userID, "u@example.com").Return(after, nil).Once()

	svc := NewProfileService(store, cache, time.Hour)
	claims := Claims{UserID: userID, Email: "u@example.com"}

	sess, err := svc.Resolve(context.Background(), claims)
	require.NoError(t, err)
	assert.False(t, sess.IsAdmin)

	profile, err := svc.SetAdmin(context.Background(), userID, "", true)
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin)

	sess, err = svc.Resolve(context.Background(), claims)
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin)
	store.AssertExpectations(t)
}
