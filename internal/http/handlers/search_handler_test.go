package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/housing-backend/internal/dto"
	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/service"
)

func searchRoutes(finder *mockFinder) http.Handler {
	r := newRouter(nil)
	h := NewSearchHandler(finder)
	r.GET("/api/listings", h.Search)
	r.GET("/api/listings/:id", h.Get)
	return r
}

func TestSearchHandler_ParsesFilter(t *testing.T) {
	finder := &mockFinder{}
	finder.On("Search", mock.Anything, mock.MatchedBy(func(f models.ListingFilter) bool {
		return f.Search == "sea view" &&
			f.Area == "all" &&
			f.Type == models.ListingTypeRent &&
			f.MinPrice != nil && *f.MinPrice == 100 &&
			f.MaxPrice == nil &&
			f.Rooms != nil && *f.Rooms == 4 &&
			f.Capacity == nil
	}), 2).Return(&models.ListingPage{Items: nil, Page: 2, HasMore: false}, nil)

	w := doJSON(searchRoutes(finder), http.MethodGet,
		"/api/listings?q=sea+view&area=all&type=rent&min_price=100&max_price=all&rooms=4%2B&capacity=&page=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got dto.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 12, got.PageSize)
	assert.NotNil(t, got.Items)
	assert.False(t, got.HasMore)
	finder.AssertExpectations(t)
}

func TestSearchHandler_RejectsBadNumbers(t *testing.T) {
	tests := []struct {
		query string
		field string
	}{
		{"min_price=cheap", "min_price"},
		{"max_price=-5", "max_price"},
		{"rooms=many", "rooms"},
		{"capacity=1.5", "capacity"},
		{"page=first", "page"},
		{"page=-1", "page"},
		{"page=768614336404564651", "page"},
		{"page=99999999999999999999", "page"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			finder := &mockFinder{}
			w := doJSON(searchRoutes(finder), http.MethodGet, "/api/listings?"+tt.query, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w).Fields, tt.field)
			finder.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSearchHandler_GetUsesRequestLanguage(t *testing.T) {
	id := uuid.New()
	link := "https://api.whatsapp.com/send?phone=972599123456&text=hi"
	finder := &mockFinder{}
	finder.On("GetPublic", mock.Anything, id, "en").Return(&service.PublicListing{
		Listing:     models.Listing{ID: id, Status: models.ListingStatusActive},
		WhatsAppURL: &link,
	}, nil)

	w := doJSON(searchRoutes(finder), http.MethodGet, "/api/listings/"+id.String()+"?lang=en", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, link, got["whatsapp_url"])
	assert.Equal(t, id.String(), got["id"])
}

func TestSearchHandler_GetHiddenIsNotFound(t *testing.T) {
	id := uuid.New()
	finder := &mockFinder{}
	finder.On("GetPublic", mock.Anything, id, "ar").Return(nil, apperror.ErrListingNotFound)

	w := doJSON(searchRoutes(finder), http.MethodGet, "/api/listings/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ar", w.Header().Get("Content-Language"))
}
