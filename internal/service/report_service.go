package service

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/ignatzorin/housing-backend/internal/logger"
	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/repository"
	"github.com/ignatzorin/housing-backend/internal/validation"
)

// Fingerprinter вычисляет отпечаток посетителя: keyed BLAKE2b-256 от IP и User-Agent.
// Сырые значения нигде не сохраняются.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter создаёт вычислитель отпечатков. Ключ длиннее 64 байт хешируется.
func NewFingerprinter(key string) *Fingerprinter {
	k := []byte(key)
	if len(k) > blake2b.Size {
		sum := blake2b.Sum512(k)
		k = sum[:]
	}
	return &Fingerprinter{key: k}
}

// Sum отпечаток в hex.
func (f *Fingerprinter) Sum(clientIP, userAgent string) string {
	h, err := blake2b.New256(f.key)
	if err != nil {
		// Ключ уже ограничен по длине в конструкторе.
		panic(err)
	}
	h.Write([]byte(clientIP))
	h.Write([]byte{0})
	h.Write([]byte(userAgent))
	return hex.EncodeToString(h.Sum(nil))
}

// ReportInput жалоба посетителя.
type ReportInput struct {
	ListingID uuid.UUID
	Reason    models.ReportReason
	Details   *string
	ClientIP  string
	UserAgent string
}

// ReportService жалобы на объявления.
type ReportService struct {
	reports     ReportStore
	listings    ListingStore
	fingerprint *Fingerprinter
	notifier    Notifier
}

// NewReportService создаёт сервис.
func NewReportService(reports ReportStore, listings ListingStore, fingerprint *Fingerprinter, notifier Notifier) *ReportService {
	return &ReportService{
		reports:     reports,
		listings:    listings,
		fingerprint: fingerprint,
		notifier:    notifierOrNoop(notifier),
	}
}

// Create сохраняет жалобу. Сессия необязательна: жаловаться может любой посетитель,
// но один отпечаток только один раз на объявление.
func (s *ReportService) Create(ctx context.Context, sess *Session, in ReportInput) (*models.Report, error) {
	errs := validation.FieldErrors{}
	if !models.IsValidReportReason(in.Reason) {
		errs.Add("reason", validation.RuleInvalid)
	}
	details := optionalText(in.Details)
	if details != nil && !validation.ValidateLength(*details, validation.MaxReportDetails) {
		errs.Add("details", validation.RuleMax)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if _, err := s.listings.GetByID(ctx, in.ListingID); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, err
	}

	report := &models.Report{
		ListingID:   in.ListingID,
		Reason:      in.Reason,
		Details:     details,
		Fingerprint: s.fingerprint.Sum(strings.TrimSpace(in.ClientIP), in.UserAgent),
	}
	if sess != nil && sess.UserID != uuid.Nil {
		reporter := sess.UserID
		report.ReporterID = &reporter
	}

	if err := s.reports.Create(ctx, report); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateReport):
			return nil, apperror.ErrDuplicateReport
		case errors.Is(err, repository.ErrListingNotFound):
			return nil, apperror.ErrListingNotFound
		}
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"report_id":  report.ID,
		"listing_id": report.ListingID,
		"reason":     report.Reason,
	}).Info("report: created")

	s.notifier.NotifyAdmins(EventReportCreated, map[string]interface{}{
		"report_id":  report.ID,
		"listing_id": report.ListingID,
		"reason":     report.Reason,
	})

	return report, nil
}

// List все жалобы, новые первыми, с кратким описанием объявления.
func (s *ReportService) List(ctx context.Context, sess *Session) ([]models.ReportWithListing, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.reports.ListWithListings(ctx)
}

// Delete удаляет жалобу.
func (s *ReportService) Delete(ctx context.Context, sess *Session, id uuid.UUID) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.reports.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return apperror.ErrReportNotFound
		}
		return err
	}
	return nil
}
