package dto

import (
	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/service"
)

// ListingsResponse список объявлений владельца или очереди модерации.
type ListingsResponse struct {
	Items []models.Listing `json:"items"`
}

// NewListingsResponse не допускает null вместо пустого списка.
func NewListingsResponse(items []models.Listing) ListingsResponse {
	if items == nil {
		items = []models.Listing{}
	}
	return ListingsResponse{Items: items}
}

// SearchResponse страница публичного поиска.
type SearchResponse struct {
	Items    []models.Listing `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	HasMore  bool             `json:"has_more"`
}

// NewSearchResponse собирает ответ из страницы результатов.
func NewSearchResponse(page *models.ListingPage, pageSize int) SearchResponse {
	items := page.Items
	if items == nil {
		items = []models.Listing{}
	}
	return SearchResponse{Items: items, Page: page.Page, PageSize: pageSize, HasMore: page.HasMore}
}

// ReportsResponse список жалоб для администратора.
type ReportsResponse struct {
	Items []models.ReportWithListing `json:"items"`
}

// NewReportsResponse не допускает null вместо пустого списка.
func NewReportsResponse(items []models.ReportWithListing) ReportsResponse {
	if items == nil {
		items = []models.ReportWithListing{}
	}
	return ReportsResponse{Items: items}
}

// ImageCountResponse сколько фото уже загружено и сколько разрешено.
type ImageCountResponse struct {
	Count int `json:"count"`
	Max   int `json:"max"`
}

// DeleteListingResponse результат удаления объявления: строка удалена, файлы могли остаться.
type DeleteListingResponse struct {
	Deleted bool                `json:"deleted"`
	Files   service.BatchResult `json:"files"`
}

// StatusResponse ответ на смену статуса или модерацию.
type StatusResponse struct {
	ID     string               `json:"id"`
	Status models.ListingStatus `json:"status"`
}
