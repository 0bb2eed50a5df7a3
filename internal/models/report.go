package models

import (
	"time"

	"github.com/google/uuid"
)

// Report жалоба посетителя на объявление.
type Report struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	ListingID   uuid.UUID    `db:"listing_id" json:"listing_id"`
	Reason      ReportReason `db:"reason" json:"reason"`
	Details     *string      `db:"details" json:"details"`
	ReporterID  *uuid.UUID   `db:"reporter_id" json:"-"`
	Fingerprint string       `db:"fingerprint" json:"-"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// ListingSummary краткие сведения об объявлении для списка жалоб.
type ListingSummary struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Area        string        `json:"area"`
	Status      ListingStatus `json:"status"`
	ContactName string        `json:"contact_name"`
}

// ReportWithListing жалоба вместе с объявлением (nil, если объявление удалено).
type ReportWithListing struct {
	Report
	Listing *ListingSummary `json:"listings"`
}
