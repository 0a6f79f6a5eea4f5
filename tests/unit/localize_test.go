// Package unit_test contains tests for insight localization
package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crop-advisory-engine/internal/models"
	"crop-advisory-engine/internal/utils"
)

func TestLocalizeTitle(t *testing.T) {
	tests := []struct {
		title    string
		lang     models.Language
		expected string
	}{
		{"Heavy rain warning", models.LanguageHindi, "भारी बारिश की चेतावनी"},
		{"Heavy rain warning", models.LanguageMarathi, "मुसळधार पावसाचा इशारा"},
		{"Irrigation reminder", models.LanguageHindi, "सिंचाई अनुस्मारक"},
		{"Heavy rain warning", models.LanguageEnglish, "Heavy rain warning"},
		{"Heavy rain warning", models.Language(""), "Heavy rain warning"},
		{"Heavy rain warning", models.Language("fr"), "Heavy rain warning"},
		{"Untranslated title", models.LanguageHindi, "Untranslated title"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, utils.LocalizeTitle(tt.title, tt.lang),
			"%q in %s", tt.title, tt.lang)
	}
}

func TestLocalizeTitle_CoversAllEngineTitles(t *testing.T) {
	titles := []string{
		"Heavy rain warning",
		"Irrigation reminder",
		"Sowing stage fertilizer plan",
		"Vegetative stage fertilizer plan",
		"Flowering stage fertilizer plan",
		"Maturity stage fertilizer plan",
		"Sowing stage pest watch",
		"Vegetative stage pest watch",
		"Flowering stage pest watch",
		"Maturity stage pest watch",
		"Harvest stage pest watch",
		"Low water retention on red soil",
		"Low water retention on laterite soil",
		"Low water retention on sandy soil",
	}

	for _, lang := range []models.Language{models.LanguageHindi, models.LanguageMarathi} {
		for _, title := range titles {
			localized := utils.LocalizeTitle(title, lang)
			assert.NotEqual(t, title, localized, "%q has no %s translation", title, lang)
		}
	}
}

func TestLocalizeInsights(t *testing.T) {
	insights := []models.Insight{
		{PlotID: "plot-1", Title: "Heavy rain warning", Description: "Forecast shows storm."},
		{PlotID: "plot-1", Title: "Irrigation reminder", Description: "Dry spell ahead."},
	}

	localized := utils.LocalizeInsights(insights, models.LanguageMarathi)

	assert.Len(t, localized, 2)
	assert.Equal(t, "मुसळधार पावसाचा इशारा", localized[0].Title)
	assert.Equal(t, "सिंचन स्मरण", localized[1].Title)

	// Descriptions stay in English and the input is untouched.
	assert.Equal(t, "Forecast shows storm.", localized[0].Description)
	assert.Equal(t, "Heavy rain warning", insights[0].Title)
}

func TestLocalizeInsights_EnglishReturnsInputUnchanged(t *testing.T) {
	insights := []models.Insight{{Title: "Heavy rain warning"}}

	assert.Equal(t, insights, utils.LocalizeInsights(insights, models.LanguageEnglish))
	assert.Equal(t, insights, utils.LocalizeInsights(insights, models.Language("")))
}
