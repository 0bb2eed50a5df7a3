package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/housing-backend/internal/models"
)

// ErrProfileNotFound возвращается, когда строки user_profiles нет.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository отвечает за таблицу user_profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository создаёт экземпляр репозитория.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Ensure создаёт профиль при первом обращении пользователя и обновляет email, если он изменился.
func (r *ProfileRepository) Ensure(ctx context.Context, id uuid.UUID, email string) (*models.Profile, error) {
	var profile models.Profile
	query := `
		INSERT INTO user_profiles (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
			SET email = CASE WHEN EXCLUDED.email <> '' THEN EXCLUDED.email ELSE user_profiles.email END,
			    updated_at = CASE WHEN EXCLUDED.email <> '' AND EXCLUDED.email <> user_profiles.email
			                      THEN NOW() ELSE user_profiles.updated_at END
		RETURNING id, email, is_admin, created_at, updated_at
	`
	if err := r.db.GetContext(ctx, &profile, query, id, email); err != nil {
		return nil, fmt.Errorf("profile repository: ensure: %w", err)
	}
	return &profile, nil
}

// GetByID возвращает профиль.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile,
		`SELECT id, email, is_admin, created_at, updated_at FROM user_profiles WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile repository: get by id: %w", err)
	}
	return &profile, nil
}

// SetAdmin выдаёт или отзывает права администратора.
func (r *ProfileRepository) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles SET is_admin = $2, updated_at = NOW() WHERE id = $1`, id, isAdmin)
	if err != nil {
		return fmt.Errorf("profile repository: set admin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// ListAdmins возвращает всех администраторов.
func (r *ProfileRepository) ListAdmins(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	if err := r.db.SelectContext(ctx, &profiles,
		`SELECT id, email, is_admin, created_at, updated_at FROM user_profiles WHERE is_admin ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("profile repository: list admins: %w", err)
	}
	return profiles, nil
}
