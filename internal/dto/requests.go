package dto

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/service"
)

// Nullable поле частичного обновления: отличает отсутствие поля от явного null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON вызывается только для присутствующего поля.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) patch() **T {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// CreateListingRequest тело POST /api/my/listings.
type CreateListingRequest struct {
	Title           string              `json:"title"`
	Type            models.ListingType  `json:"type"`
	PropertyType    models.PropertyType `json:"property_type" binding:"required"`
	Area            string              `json:"area"`
	Price           *float64            `json:"price"`
	PriceNote       *string             `json:"price_note"`
	Rooms           *int                `json:"rooms"`
	FloorArea       *float64            `json:"floor_area"`
	Capacity        *int                `json:"capacity"`
	Utilities       *models.Utilities   `json:"utilities"`
	Description     *string             `json:"description"`
	ContactName     string              `json:"contact_name"`
	ContactPhone    string              `json:"contact_phone" binding:"omitempty,phone"`
	WhatsAppEnabled *bool               `json:"whatsapp_enabled"`
}

// ToInput переводит запрос во входные данные сервиса.
func (r CreateListingRequest) ToInput() service.ListingInput {
	return service.ListingInput{
		Title:           r.Title,
		Type:            r.Type,
		PropertyType:    r.PropertyType,
		Area:            r.Area,
		Price:           r.Price,
		PriceNote:       r.PriceNote,
		Rooms:           r.Rooms,
		FloorArea:       r.FloorArea,
		Capacity:        r.Capacity,
		Utilities:       r.Utilities,
		Description:     r.Description,
		ContactName:     r.ContactName,
		ContactPhone:    r.ContactPhone,
		WhatsAppEnabled: r.WhatsAppEnabled,
	}
}

// UpdateListingRequest тело PATCH /api/my/listings/:id. Отсутствующие поля не меняются,
// null в price, rooms и floor_area очищает значение.
type UpdateListingRequest struct {
	Title           *string              `json:"title"`
	Type            *models.ListingType  `json:"type"`
	PropertyType    *models.PropertyType `json:"property_type"`
	Area            *string              `json:"area"`
	Price           Nullable[float64]    `json:"price"`
	PriceNote       *string              `json:"price_note"`
	Rooms           Nullable[int]        `json:"rooms"`
	FloorArea       Nullable[float64]    `json:"floor_area"`
	Capacity        *int                 `json:"capacity"`
	Utilities       *models.Utilities    `json:"utilities"`
	Description     *string              `json:"description"`
	ContactName     *string              `json:"contact_name"`
	ContactPhone    *string              `json:"contact_phone" binding:"omitempty,phone"`
	WhatsAppEnabled *bool                `json:"whatsapp_enabled"`
}

// ToPatch переводит запрос в патч объявления.
func (r UpdateListingRequest) ToPatch() models.ListingPatch {
	return models.ListingPatch{
		Title:           r.Title,
		Type:            r.Type,
		PropertyType:    r.PropertyType,
		Area:            r.Area,
		Price:           r.Price.patch(),
		PriceNote:       r.PriceNote,
		Rooms:           r.Rooms.patch(),
		FloorArea:       r.FloorArea.patch(),
		Capacity:        r.Capacity,
		Utilities:       r.Utilities,
		Description:     r.Description,
		ContactName:     r.ContactName,
		ContactPhone:    r.ContactPhone,
		WhatsAppEnabled: r.WhatsAppEnabled,
	}
}

// SetStatusRequest тело PUT /api/my/listings/:id/status.
type SetStatusRequest struct {
	Status models.ListingStatus `json:"status" binding:"required,listing_status"`
}

// DeleteImagesRequest тело DELETE /api/my/listings/:id/images.
type DeleteImagesRequest struct {
	ImageIDs []uuid.UUID `json:"image_ids" binding:"required"`
}

// CreateReportRequest тело POST /api/listings/:id/reports.
type CreateReportRequest struct {
	Reason  models.ReportReason `json:"reason" binding:"required,report_reason"`
	Details *string             `json:"details" binding:"omitempty,max=1000"`
}

// SearchQuery параметры GET /api/listings. Числа приходят строками, чтобы принимать "all".
type SearchQuery struct {
	Search       string `form:"q"`
	Area         string `form:"area"`
	Type         string `form:"type"`
	PropertyType string `form:"property_type"`
	MinPrice     string `form:"min_price"`
	MaxPrice     string `form:"max_price"`
	Rooms        string `form:"rooms"`
	Capacity     string `form:"capacity"`
	Page         int    `form:"page" binding:"min=0,max=10000"`
}
