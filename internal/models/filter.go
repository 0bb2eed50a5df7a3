package models

// RoomsOrMore значение фильтра комнат, означающее "столько или больше".
const RoomsOrMore = 4

// MaxSearchPage последняя допустимая страница поиска.
const MaxSearchPage = 10000

// ListingFilter критерии публичного поиска. Пустые значения не участвуют в запросе.
type ListingFilter struct {
	Search       string
	Area         string
	Type         ListingType
	PropertyType PropertyType
	MinPrice     *float64
	MaxPrice     *float64
	Rooms        *int
	Capacity     *int
}

// ListingPage страница результатов поиска. HasMore выводится из того, что страница заполнена целиком.
type ListingPage struct {
	Items   []Listing `json:"items"`
	Page    int       `json:"page"`
	HasMore bool      `json:"has_more"`
}
