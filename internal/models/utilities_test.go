package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUtilityState(t *testing.T) {
	cases := []struct {
		in   any
		want UtilityState
	}{
		{true, UtilityAvailable},
		{false, UtilityUnavailable},
		{"available", UtilityAvailable},
		{"Limited", UtilityLimited},
		{"unavailable", UtilityUnavailable},
		{"maybe", UtilityUnavailable},
		{nil, UtilityUnavailable},
		{float64(1), UtilityUnavailable},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseUtilityState(tc.in), "вход %v", tc.in)
	}
}

func TestUtilities_UnmarshalLegacyBooleans(t *testing.T) {
	var u Utilities
	require.NoError(t, json.Unmarshal([]byte(`{"water":true,"electricity":"limited","internet":false}`), &u))

	assert.Equal(t, UtilityAvailable, u.Water)
	assert.Equal(t, UtilityLimited, u.Electricity)
	assert.Equal(t, UtilityUnavailable, u.Internet)
}

func TestUtilities_UnmarshalNotObject(t *testing.T) {
	var u Utilities
	require.NoError(t, json.Unmarshal([]byte(`null`), &u))
	assert.Equal(t, DefaultUtilities(), u)

	require.NoError(t, json.Unmarshal([]byte(`"oops"`), &u))
	assert.Equal(t, DefaultUtilities(), u)
}

func TestUtilities_ScanAndValue(t *testing.T) {
	var u Utilities
	require.NoError(t, u.Scan([]byte(`{"water":"available"}`)))
	assert.Equal(t, UtilityAvailable, u.Water)
	assert.Equal(t, UtilityUnavailable, u.Internet)

	v, err := u.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"water":"available","electricity":"unavailable","internet":"unavailable"}`, v.(string))

	assert.Error(t, u.Scan(42))
}

func TestListing_NormalizeShape(t *testing.T) {
	rooms := 2
	area := 120.0

	apt := Listing{PropertyType: PropertyTypeApartment, Rooms: &rooms, FloorArea: &area}
	apt.NormalizeShape()
	assert.NotNil(t, apt.Rooms)
	assert.Nil(t, apt.FloorArea)

	land := Listing{PropertyType: PropertyTypeLand, Rooms: &rooms, FloorArea: &area}
	land.NormalizeShape()
	assert.Nil(t, land.Rooms)
	assert.NotNil(t, land.FloorArea)
}
