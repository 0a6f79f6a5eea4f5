package ses

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crop-advisory-engine/internal/models"
)

func testFarmer() *models.Farmer {
	return &models.Farmer{
		ID:       "farmer-1",
		Name:     "Asha Patil",
		Email:    "asha@example.com",
		Language: models.LanguageMarathi,
		Region:   "Nashik",
	}
}

func TestBuildDigestParams_FiltersNormalInsights(t *testing.T) {
	records := []*models.InsightRecord{
		{PlotName: "North field", Title: "Heavy rain warning", Priority: models.PriorityCritical, ActionDate: "01 Mar 2026"},
		{PlotName: "North field", Title: "Irrigation reminder", Priority: models.PriorityWarning, ActionDate: "01 Mar 2026"},
		{PlotName: "North field", Title: "Vegetative stage fertilizer plan", Priority: models.PriorityNormal, ActionDate: "01 Mar 2026"},
	}

	params := BuildDigestParams(testFarmer(), records, "https://app.example.com")

	assert.Equal(t, "Asha Patil", params.FarmerName)
	assert.Equal(t, "asha@example.com", params.FarmerEmail)
	assert.Equal(t, "https://app.example.com", params.DashboardURL)
	assert.Len(t, params.Insights, 2)
	assert.Equal(t, "Heavy rain warning", params.Insights[0].Title)
	assert.Equal(t, "critical", params.Insights[0].Priority)
	assert.Equal(t, "warning", params.Insights[1].Priority)
}

func TestBuildDigestParams_AllNormalYieldsEmptyDigest(t *testing.T) {
	records := []*models.InsightRecord{
		{PlotName: "A", Title: "Sowing stage fertilizer plan", Priority: models.PriorityNormal},
		{PlotName: "B", Title: "Low water retention on sandy soil", Priority: models.PriorityNormal},
	}

	params := BuildDigestParams(testFarmer(), records, "")

	assert.Empty(t, params.Insights)
}

func TestRenderDigest(t *testing.T) {
	svc := &Service{fromEmail: "advisory@example.com"}
	params := DigestParams{
		FarmerName:  "Asha Patil",
		FarmerEmail: "asha@example.com",
		Insights: []DigestInsight{
			{PlotName: "North field", Title: "Heavy rain warning", Description: "Storm expected.", Priority: "critical", ActionDate: "01 Mar 2026"},
			{PlotName: "Sandy patch", Title: "Irrigation reminder", Description: "Dry spell ahead.", Priority: "warning", ActionDate: "01 Mar 2026"},
		},
		DashboardURL: "https://app.example.com",
	}

	html, err := svc.renderDigestHTML(params)
	assert.NoError(t, err)
	assert.Contains(t, html, "Asha Patil")
	assert.Contains(t, html, "Heavy rain warning")
	assert.Contains(t, html, "priority-critical")
	assert.Contains(t, html, "https://app.example.com")

	text := svc.renderDigestText(params)
	assert.Contains(t, text, "Heavy rain warning")
	assert.Contains(t, text, "North field")
	assert.Contains(t, text, "Irrigation reminder")
}
