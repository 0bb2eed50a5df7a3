package models

// ListingStatus статус объявления в цикле модерации.
type ListingStatus string

const (
	ListingStatusPending ListingStatus = "pending"
	ListingStatusActive  ListingStatus = "active"
	ListingStatusHidden  ListingStatus = "hidden"
)

// ListingType вид предложения.
type ListingType string

const (
	ListingTypeRent ListingType = "rent"
	ListingTypeSale ListingType = "sale"
)

// PropertyType тип недвижимости.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeLand      PropertyType = "land"
	PropertyTypeWarehouse PropertyType = "warehouse"
)

// ReportReason причина жалобы (закрытый список).
type ReportReason string

const (
	ReportReasonFraud         ReportReason = "fraud"
	ReportReasonIncorrectInfo ReportReason = "incorrect_info"
	ReportReasonOverpriced    ReportReason = "overpriced"
	ReportReasonOffensive     ReportReason = "offensive"
	ReportReasonAlreadyRented ReportReason = "already_rented"
	ReportReasonOther         ReportReason = "other"
)

// ValidListingStatuses список валидных статусов объявлений
var ValidListingStatuses = map[ListingStatus]struct{}{
	ListingStatusPending: {},
	ListingStatusActive:  {},
	ListingStatusHidden:  {},
}

// ValidListingTypes список валидных видов предложения
var ValidListingTypes = map[ListingType]struct{}{
	ListingTypeRent: {},
	ListingTypeSale: {},
}

// ValidPropertyTypes список валидных типов недвижимости
var ValidPropertyTypes = map[PropertyType]struct{}{
	PropertyTypeApartment: {},
	PropertyTypeLand:      {},
	PropertyTypeWarehouse: {},
}

// ReportReasons причины жалоб в порядке отображения.
var ReportReasons = []ReportReason{
	ReportReasonFraud,
	ReportReasonIncorrectInfo,
	ReportReasonOverpriced,
	ReportReasonOffensive,
	ReportReasonAlreadyRented,
	ReportReasonOther,
}

// IsValidReportReason проверяет принадлежность причины закрытому списку.
func IsValidReportReason(r ReportReason) bool {
	for _, known := range ReportReasons {
		if known == r {
			return true
		}
	}
	return false
}
