package service

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
)

// Session текущий пользователь. Передаётся в каждый вызов сервиса явно; nil означает гостя.
type Session struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
}

func requireUser(s *Session) error {
	if s == nil || s.UserID == uuid.Nil {
		return apperror.ErrUnauthenticated
	}
	return nil
}

func requireAdmin(s *Session) error {
	if err := requireUser(s); err != nil {
		return err
	}
	if !s.IsAdmin {
		return apperror.ErrForbidden
	}
	return nil
}

// Событие ленты модерации.
const (
	EventListingPending  = "listing.pending"
	EventListingApproved = "listing.approved"
	EventListingRejected = "listing.rejected"
	EventReportCreated   = "report.created"
)

// Notifier доставляет события ленты модерации. Доставка best-effort.
type Notifier interface {
	NotifyUser(userID uuid.UUID, event string, data any)
	NotifyAdmins(event string, data any)
}

type noopNotifier struct{}

func (noopNotifier) NotifyUser(uuid.UUID, string, any) {}
func (noopNotifier) NotifyAdmins(string, any)          {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
