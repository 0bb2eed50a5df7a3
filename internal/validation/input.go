package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/housing-backend/internal/models"
)

// Константы валидации
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxContactNameLength = 50
	MaxPriceNoteLength   = 100
	MaxReportDetails     = 1000
	MaxRooms             = 50
	MaxCapacity          = 100
	MaxPrice             = 100000000.0
	MaxFloorArea         = 1000000.0
)

// Правила, по которым каталог подбирает текст ошибки.
const (
	RuleRequired = "required"
	RuleMax      = "max"
	RuleInvalid  = "invalid"
	RuleRange    = "range"
)

var phonePattern = regexp.MustCompile(`^[\d\s\-+()]{8,15}$`)

// IsValidPhone проверяет телефон: 8-15 символов из цифр, пробелов, +, -, скобок.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// FieldErrors ошибки по полям: имя поля -> правило.
type FieldErrors map[string]string

// Add запоминает первую ошибку поля.
func (f FieldErrors) Add(field, rule string) {
	if _, exists := f[field]; !exists {
		f[field] = rule
	}
}

// Err возвращает *Error, если есть хотя бы одна ошибка.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &Error{Fields: f}
}

// Error ошибка валидации с полями.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+e.Fields[k])
	}
	return fmt.Sprintf("validation: %s", strings.Join(parts, ", "))
}

// AsFieldErrors извлекает ошибки полей из цепочки.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Fields, true
	}
	return nil, false
}

// ValidateLength проверяет длину строки в символах (не байтах).
func ValidateLength(value string, max int) bool {
	return utf8.RuneCountInString(value) <= max
}

// ValidateListing проверяет объявление целиком, включая инвариант комнат и площади.
// isArea проверяет код района по каталогу.
func ValidateListing(l *models.Listing, isArea func(string) bool) FieldErrors {
	errs := FieldErrors{}

	switch {
	case l.Title == "":
		errs.Add("title", RuleRequired)
	case !ValidateLength(l.Title, MaxTitleLength):
		errs.Add("title", RuleMax)
	}

	switch {
	case l.Area == "":
		errs.Add("area", RuleRequired)
	case isArea != nil && !isArea(l.Area):
		errs.Add("area", RuleInvalid)
	}

	if _, ok := models.ValidListingTypes[l.Type]; !ok {
		errs.Add("type", RuleInvalid)
	}

	if _, ok := models.ValidPropertyTypes[l.PropertyType]; !ok {
		errs.Add("property_type", RuleInvalid)
	} else if l.PropertyType == models.PropertyTypeApartment {
		switch {
		case l.Rooms == nil:
			errs.Add("rooms", RuleRequired)
		case *l.Rooms < 1 || *l.Rooms > MaxRooms:
			errs.Add("rooms", RuleRange)
		}
	} else {
		switch {
		case l.FloorArea == nil:
			errs.Add("floor_area", RuleRequired)
		case *l.FloorArea <= 0 || *l.FloorArea > MaxFloorArea:
			errs.Add("floor_area", RuleRange)
		}
	}

	if l.Capacity < 1 || l.Capacity > MaxCapacity {
		errs.Add("capacity", RuleRange)
	}

	if l.Price != nil && (*l.Price < 0 || *l.Price > MaxPrice) {
		errs.Add("price", RuleRange)
	}
	if l.PriceNote != nil && !ValidateLength(*l.PriceNote, MaxPriceNoteLength) {
		errs.Add("price_note", RuleMax)
	}
	if l.Description != nil && !ValidateLength(*l.Description, MaxDescriptionLength) {
		errs.Add("description", RuleMax)
	}

	switch {
	case l.ContactName == "":
		errs.Add("contact_name", RuleRequired)
	case !ValidateLength(l.ContactName, MaxContactNameLength):
		errs.Add("contact_name", RuleMax)
	}

	switch {
	case l.ContactPhone == "":
		errs.Add("contact_phone", RuleRequired)
	case !IsValidPhone(l.ContactPhone):
		errs.Add("contact_phone", RuleInvalid)
	}

	return errs
}
