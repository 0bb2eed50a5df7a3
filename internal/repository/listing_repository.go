package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/housing-backend/internal/models"
)

// ErrListingNotFound сигнализирует об отсутствии объявления (или чужом объявлении).
var ErrListingNotFound = errors.New("listing not found")

const listingColumns = `id, owner_id, title, type, property_type, area, price, price_note, rooms, floor_area,
	capacity, utilities, description, contact_name, contact_phone, whatsapp_enabled, status, created_at, updated_at`

// ListingRepository работает с таблицей listings.
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository создаёт экземпляр.
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create сохраняет объявление.
func (r *ListingRepository) Create(ctx context.Context, l *models.Listing) error {
	query := `
		INSERT INTO listings (owner_id, title, type, property_type, area, price, price_note, rooms, floor_area,
			capacity, utilities, description, contact_name, contact_phone, whatsapp_enabled, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(ctx, query,
		l.OwnerID, l.Title, l.Type, l.PropertyType, l.Area, l.Price, l.PriceNote, l.Rooms, l.FloorArea,
		l.Capacity, l.Utilities, l.Description, l.ContactName, l.ContactPhone, l.WhatsAppEnabled, l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return fmt.Errorf("listing repository: create: %w", err)
	}

	return nil
}

// GetByID возвращает объявление в любом статусе.
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return r.getOne(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
}

// GetForOwner возвращает объявление, только если оно принадлежит ownerID.
func (r *ListingRepository) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Listing, error) {
	return r.getOne(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1 AND owner_id = $2`, id, ownerID)
}

// GetActive возвращает опубликованное объявление.
func (r *ListingRepository) GetActive(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return r.getOne(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1 AND status = 'active'`, id)
}

func (r *ListingRepository) getOne(ctx context.Context, query string, args ...any) (*models.Listing, error) {
	var l models.Listing
	if err := r.db.GetContext(ctx, &l, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("listing repository: get: %w", err)
	}
	return &l, nil
}

// ListByOwner возвращает объявления владельца, новые первыми.
func (r *ListingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	listings := []models.Listing{}
	if err := r.db.SelectContext(ctx, &listings,
		`SELECT `+listingColumns+` FROM listings WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID); err != nil {
		return nil, fmt.Errorf("listing repository: list by owner: %w", err)
	}
	return listings, nil
}

// ListByStatus возвращает объявления в статусе, новые первыми.
func (r *ListingRepository) ListByStatus(ctx context.Context, status models.ListingStatus) ([]models.Listing, error) {
	listings := []models.Listing{}
	if err := r.db.SelectContext(ctx, &listings,
		`SELECT `+listingColumns+` FROM listings WHERE status = $1 ORDER BY created_at DESC`, status); err != nil {
		return nil, fmt.Errorf("listing repository: list by status: %w", err)
	}
	return listings, nil
}

// Search ищет опубликованные объявления по фильтру.
func (r *ListingRepository) Search(ctx context.Context, f models.ListingFilter, limit, offset int) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE status = 'active'`
	args := []interface{}{}
	argIndex := 1

	if f.Search != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+escapeLike(f.Search)+"%")
		argIndex++
	}
	if f.Area != "" {
		query += fmt.Sprintf(" AND area = $%d", argIndex)
		args = append(args, f.Area)
		argIndex++
	}
	if f.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, f.Type)
		argIndex++
	}
	if f.PropertyType != "" {
		query += fmt.Sprintf(" AND property_type = $%d", argIndex)
		args = append(args, f.PropertyType)
		argIndex++
	}
	if f.MinPrice != nil {
		query += fmt.Sprintf(" AND price >= $%d", argIndex)
		args = append(args, *f.MinPrice)
		argIndex++
	}
	if f.MaxPrice != nil {
		query += fmt.Sprintf(" AND price <= $%d", argIndex)
		args = append(args, *f.MaxPrice)
		argIndex++
	}
	if f.Rooms != nil {
		if *f.Rooms >= models.RoomsOrMore {
			query += fmt.Sprintf(" AND rooms >= $%d", argIndex)
		} else {
			query += fmt.Sprintf(" AND rooms = $%d", argIndex)
		}
		args = append(args, *f.Rooms)
		argIndex++
	}
	if f.Capacity != nil {
		query += fmt.Sprintf(" AND capacity <= $%d", argIndex)
		args = append(args, *f.Capacity)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	listings := []models.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("listing repository: search: %w", err)
	}
	return listings, nil
}

// UpdateForOwner перезаписывает изменяемые поля. Предикат владельца в запросе:
// для чужого объявления возвращается 0 затронутых строк без ошибки.
func (r *ListingRepository) UpdateForOwner(ctx context.Context, l *models.Listing) (int64, error) {
	query := `
		UPDATE listings SET
			title = $3, type = $4, property_type = $5, area = $6, price = $7, price_note = $8,
			rooms = $9, floor_area = $10, capacity = $11, utilities = $12, description = $13,
			contact_name = $14, contact_phone = $15, whatsapp_enabled = $16, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		l.ID, l.OwnerID, l.Title, l.Type, l.PropertyType, l.Area, l.Price, l.PriceNote,
		l.Rooms, l.FloorArea, l.Capacity, l.Utilities, l.Description,
		l.ContactName, l.ContactPhone, l.WhatsAppEnabled,
	)
	if err != nil {
		return 0, fmt.Errorf("listing repository: update: %w", err)
	}
	return res.RowsAffected()
}

// SetStatusForOwner меняет статус объявления владельца, если текущий статус равен from.
func (r *ListingRepository) SetStatusForOwner(ctx context.Context, id, ownerID uuid.UUID, from, to models.ListingStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings SET status = $4, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND status = $3
	`, id, ownerID, from, to)
	if err != nil {
		return 0, fmt.Errorf("listing repository: set status: %w", err)
	}
	return res.RowsAffected()
}

// Transition меняет статус любого объявления, только если текущий статус равен from.
func (r *ListingRepository) Transition(ctx context.Context, id uuid.UUID, from, to models.ListingStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return 0, fmt.Errorf("listing repository: transition: %w", err)
	}
	return res.RowsAffected()
}

// DeleteForOwner удаляет объявление владельца (фото удаляются каскадно).
func (r *ListingRepository) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("listing repository: delete: %w", err)
	}
	return res.RowsAffected()
}

// Delete удаляет объявление без проверки владельца (для администратора).
func (r *ListingRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("listing repository: delete: %w", err)
	}
	return res.RowsAffected()
}

// ExistingIDs возвращает подмножество ids, которые есть в таблице.
func (r *ListingRepository) ExistingIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	result := make(map[uuid.UUID]struct{}, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT id FROM listings WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("listing repository: existing ids: %w", err)
	}

	var found []uuid.UUID
	if err := r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing repository: existing ids: %w", err)
	}
	for _, id := range found {
		result[id] = struct{}{}
	}
	return result, nil
}

// escapeLike экранирует спецсимволы шаблона ILIKE.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
