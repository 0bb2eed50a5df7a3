package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing объявление о жилье.
type Listing struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	OwnerID         uuid.UUID      `db:"owner_id" json:"owner_id"`
	Title           string         `db:"title" json:"title"`
	Type            ListingType    `db:"type" json:"type"`
	PropertyType    PropertyType   `db:"property_type" json:"property_type"`
	Area            string         `db:"area" json:"area"`
	Price           *float64       `db:"price" json:"price"`
	PriceNote       *string        `db:"price_note" json:"price_note"`
	Rooms           *int           `db:"rooms" json:"rooms"`
	FloorArea       *float64       `db:"floor_area" json:"floor_area"`
	Capacity        int            `db:"capacity" json:"capacity"`
	Utilities       Utilities      `db:"utilities" json:"utilities"`
	Description     *string        `db:"description" json:"description"`
	ContactName     string         `db:"contact_name" json:"contact_name"`
	ContactPhone    string         `db:"contact_phone" json:"contact_phone"`
	WhatsAppEnabled bool           `db:"whatsapp_enabled" json:"whatsapp_enabled"`
	Status          ListingStatus  `db:"status" json:"status"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
	Images          []ListingImage `db:"-" json:"listing_images"`
}

// ListingImage фотография объявления.
type ListingImage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NormalizeShape приводит объявление к инварианту: у квартиры есть комнаты и нет площади,
// у остальных типов наоборот.
func (l *Listing) NormalizeShape() {
	if l.PropertyType == PropertyTypeApartment {
		l.FloorArea = nil
		return
	}
	l.Rooms = nil
}

// ListingPatch частичное изменение объявления: nil означает "не менять".
// Для очистки необязательных текстовых полей передаётся пустая строка.
type ListingPatch struct {
	Title           *string
	Type            *ListingType
	PropertyType    *PropertyType
	Area            *string
	Price           **float64
	PriceNote       *string
	Rooms           **int
	FloorArea       **float64
	Capacity        *int
	Utilities       *Utilities
	Description     *string
	ContactName     *string
	ContactPhone    *string
	WhatsAppEnabled *bool
}

// IsEmpty сообщает, что патч ничего не меняет.
func (p ListingPatch) IsEmpty() bool {
	return p == ListingPatch{}
}
