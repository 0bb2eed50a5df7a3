package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/repository/common"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrDuplicateReport = errors.New("report already exists")
)

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create сохраняет жалобу. Повтор с тем же отпечатком даёт ErrDuplicateReport.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO reports (listing_id, reason, details, reporter_id, fingerprint)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, report.ListingID, report.Reason, report.Details, report.ReporterID, report.Fingerprint).
		Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return ErrDuplicateReport
		}
		if common.IsForeignKeyViolation(err) {
			return ErrListingNotFound
		}
		return fmt.Errorf("report repository: create: %w", err)
	}
	return nil
}

type reportRow struct {
	models.Report
	ListingTitle       sql.NullString `db:"listing_title"`
	ListingArea        sql.NullString `db:"listing_area"`
	ListingStatus      sql.NullString `db:"listing_status"`
	ListingContactName sql.NullString `db:"listing_contact_name"`
	ListingExists      bool           `db:"listing_exists"`
}

// ListWithListings возвращает жалобы (новые первыми) с краткими данными объявления.
func (r *ReportRepository) ListWithListings(ctx context.Context) ([]models.ReportWithListing, error) {
	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT r.id, r.listing_id, r.reason, r.details, r.reporter_id, r.fingerprint, r.created_at,
			l.title AS listing_title, l.area AS listing_area, l.status AS listing_status,
			l.contact_name AS listing_contact_name, l.id IS NOT NULL AS listing_exists
		FROM reports r
		LEFT JOIN listings l ON l.id = r.listing_id
		ORDER BY r.created_at DESC
	`); err != nil {
		return nil, fmt.Errorf("report repository: list: %w", err)
	}

	result := make([]models.ReportWithListing, 0, len(rows))
	for _, row := range rows {
		item := models.ReportWithListing{Report: row.Report}
		if row.ListingExists {
			item.Listing = &models.ListingSummary{
				ID:          row.ListingID,
				Title:       row.ListingTitle.String,
				Area:        row.ListingArea.String,
				Status:      models.ListingStatus(row.ListingStatus.String),
				ContactName: row.ListingContactName.String,
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// Delete удаляет жалобу.
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("report repository: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReportNotFound
	}
	return nil
}
