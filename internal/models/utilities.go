package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// UtilityState доступность одной коммунальной услуги.
type UtilityState string

const (
	UtilityAvailable   UtilityState = "available"
	UtilityLimited     UtilityState = "limited"
	UtilityUnavailable UtilityState = "unavailable"
)

// UtilityKeys ключи услуг в порядке отображения.
var UtilityKeys = []string{"water", "electricity", "internet"}

// ParseUtilityState приводит произвольное значение к трём состояниям:
// true и "available" -> available, "limited" -> limited, всё остальное -> unavailable.
func ParseUtilityState(v any) UtilityState {
	switch val := v.(type) {
	case bool:
		if val {
			return UtilityAvailable
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case string(UtilityAvailable):
			return UtilityAvailable
		case string(UtilityLimited):
			return UtilityLimited
		}
	case UtilityState:
		return ParseUtilityState(string(val))
	}
	return UtilityUnavailable
}

// Utilities состояние воды, электричества и интернета.
type Utilities struct {
	Water       UtilityState `json:"water"`
	Electricity UtilityState `json:"electricity"`
	Internet    UtilityState `json:"internet"`
}

// DefaultUtilities все услуги недоступны.
func DefaultUtilities() Utilities {
	return Utilities{
		Water:       UtilityUnavailable,
		Electricity: UtilityUnavailable,
		Internet:    UtilityUnavailable,
	}
}

// Get возвращает состояние услуги по ключу.
func (u Utilities) Get(key string) UtilityState {
	switch key {
	case "water":
		return u.Water
	case "electricity":
		return u.Electricity
	case "internet":
		return u.Internet
	}
	return UtilityUnavailable
}

// UtilitiesFromMap применяет строгий декодер к слабо типизированному объекту.
func UtilitiesFromMap(raw map[string]any) Utilities {
	return Utilities{
		Water:       ParseUtilityState(raw["water"]),
		Electricity: ParseUtilityState(raw["electricity"]),
		Internet:    ParseUtilityState(raw["internet"]),
	}
}

// UnmarshalJSON принимает булевы значения и строки; не-объект даёт все услуги недоступными.
func (u *Utilities) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		*u = DefaultUtilities()
		return nil
	}
	*u = UtilitiesFromMap(raw)
	return nil
}

// Scan читает JSONB колонку.
func (u *Utilities) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*u = DefaultUtilities()
		return nil
	case []byte:
		return u.UnmarshalJSON(v)
	case string:
		return u.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("utilities: неподдерживаемый тип %T", src)
	}
}

// Value сериализует состояние для записи в JSONB.
func (u Utilities) Value() (driver.Value, error) {
	normalized := Utilities{
		Water:       ParseUtilityState(u.Water),
		Electricity: ParseUtilityState(u.Electricity),
		Internet:    ParseUtilityState(u.Internet),
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
