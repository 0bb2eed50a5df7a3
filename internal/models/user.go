package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile строка user_profiles. Сама учётная запись живёт у внешнего провайдера авторизации.
type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	IsAdmin   bool      `db:"is_admin" json:"is_admin"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
