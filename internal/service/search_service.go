package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/repository"
	"github.com/ignatzorin/housing-backend/internal/validation"
)

// FilterAll значение фильтра "любой".
const FilterAll = "all"

// Messages локализованные тексты.
type Messages interface {
	Message(lang, key string, args ...any) string
}

// PublicListing опубликованное объявление с готовой ссылкой WhatsApp.
type PublicListing struct {
	models.Listing
	WhatsAppURL *string `json:"whatsapp_url"`
}

// SearchService публичный каталог объявлений.
type SearchService struct {
	listings ListingStore
	images   ImageStore
	areas    AreaResolver
	messages Messages
	pageSize int
}

// NewSearchService создаёт сервис.
func NewSearchService(listings ListingStore, images ImageStore, areas AreaResolver, messages Messages, pageSize int) *SearchService {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &SearchService{
		listings: listings,
		images:   images,
		areas:    areas,
		messages: messages,
		pageSize: pageSize,
	}
}

// PageSize размер страницы.
func (s *SearchService) PageSize() int {
	return s.pageSize
}

// NormalizeFilter убирает значения "all" и пустые строки, переводит подпись района в код.
func (s *SearchService) NormalizeFilter(f models.ListingFilter) models.ListingFilter {
	f.Search = strings.TrimSpace(f.Search)

	area := strings.TrimSpace(f.Area)
	switch {
	case area == "" || strings.EqualFold(area, FilterAll):
		f.Area = ""
	default:
		if code, ok := s.areas.ResolveArea(area); ok {
			f.Area = code
		} else {
			f.Area = area
		}
	}

	if strings.EqualFold(string(f.Type), FilterAll) {
		f.Type = ""
	}
	if strings.EqualFold(string(f.PropertyType), FilterAll) {
		f.PropertyType = ""
	}
	return f
}

// Search страница опубликованных объявлений, новые первыми.
func (s *SearchService) Search(ctx context.Context, f models.ListingFilter, page int) (*models.ListingPage, error) {
	if page < 0 {
		page = 0
	}
	if page > models.MaxSearchPage {
		return nil, validation.FieldErrors{"page": validation.RuleInvalid}.Err()
	}

	items, err := s.listings.Search(ctx, s.NormalizeFilter(f), s.pageSize, page*s.pageSize)
	if err != nil {
		return nil, err
	}
	if err := attachImages(ctx, s.images, items); err != nil {
		return nil, err
	}

	return &models.ListingPage{
		Items:   items,
		Page:    page,
		HasMore: len(items) == s.pageSize,
	}, nil
}

// GetPublic опубликованное объявление. Скрытые и ожидающие модерации неотличимы от отсутствующих.
func (s *SearchService) GetPublic(ctx context.Context, id uuid.UUID, lang string) (*PublicListing, error) {
	listing, err := s.listings.GetActive(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, err
	}

	images, err := s.images.ListByListing(ctx, id)
	if err != nil {
		return nil, err
	}
	listing.Images = images

	public := &PublicListing{Listing: *listing}
	if listing.WhatsAppEnabled {
		link := WhatsAppURL(listing.ContactPhone, s.messages.Message(lang, "whatsapp_greeting"))
		public.WhatsAppURL = &link
	}
	return public, nil
}

// FormatWhatsApp приводит телефон к международному формату без "+".
// Номера без кода страны считаются местными (972).
func FormatWhatsApp(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	digits = strings.TrimPrefix(digits, "00")

	switch {
	case strings.HasPrefix(digits, "970"):
		return "972" + digits[3:]
	case strings.HasPrefix(digits, "972"):
		return digits
	case strings.HasPrefix(digits, "0"):
		return "972" + digits[1:]
	default:
		return "972" + digits
	}
}

// WhatsAppURL ссылка на чат с предзаполненным приветствием.
func WhatsAppURL(phone, greeting string) string {
	return "https://api.whatsapp.com/send?phone=" + FormatWhatsApp(phone) + "&text=" + url.QueryEscape(greeting)
}
