package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/housing-backend/internal/models"
)

func TestDefault_Loads(t *testing.T) {
	c := Default()
	require.NotNil(t, c)

	assert.Len(t, c.Areas, 16)
	assert.Len(t, c.Safety.Tips, 5)
	assert.Len(t, c.Safety.RedFlags, 6)
	assert.Equal(t, "ar", c.DefaultLanguage())
}

func TestReportReasons_MatchModel(t *testing.T) {
	c := Default()
	require.Len(t, c.ReportReasons, len(models.ReportReasons))
	for i, reason := range models.ReportReasons {
		assert.Equal(t, string(reason), c.ReportReasons[i].Code)
	}
}

func TestResolveArea(t *testing.T) {
	c := Default()

	code, ok := c.ResolveArea("الرمال")
	assert.True(t, ok)
	assert.Equal(t, "rimal", code)

	code, ok = c.ResolveArea("Khan  Younis")
	assert.True(t, ok)
	assert.Equal(t, "khan_younis", code)

	code, ok = c.ResolveArea("gaza_city")
	assert.True(t, ok)
	assert.Equal(t, "gaza_city", code)

	_, ok = c.ResolveArea("Atlantis")
	assert.False(t, ok)
}

func TestMatch(t *testing.T) {
	c := Default()

	assert.Equal(t, "ar", c.Match(""))
	assert.Equal(t, "en", c.Match("en-US,en;q=0.9"))
	assert.Equal(t, "ar", c.Match("ar-PS"))
	assert.Equal(t, "ar", c.Match("fr-FR"))
	assert.Equal(t, "ar", c.Match("!!!"))
}

func TestMessage(t *testing.T) {
	c := Default()

	assert.Equal(t, "Maximum 5 images", c.Message("en", "image_limit", 5))
	assert.Equal(t, "unknown_key", c.Message("en", "unknown_key"))
	assert.Equal(t, "Title is required", c.FieldMessage("en", "title", "required"))
	assert.Equal(t, c.Message("ar", "validation_failed"), c.FieldMessage("ar", "nope", "required"))
}

func TestLocalized(t *testing.T) {
	c := Default()

	en := c.Localized("en")
	assert.Equal(t, "en", en.Language)
	assert.Equal(t, Option{Value: "rafah", Label: "Rafah"}, en.Areas[0])
	assert.Len(t, en.ReportReasons, 6)

	safety := c.SafetyGuide("ar")
	assert.Equal(t, "عاين السكن قبل الدفع", safety.Tips[0].Title)
	assert.Len(t, safety.RedFlags, 6)
}
