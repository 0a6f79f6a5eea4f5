package advisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crop-advisory-engine/internal/models"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func mockCrop(overrides map[string]interface{}) models.Crop {
	crop := models.Crop{
		ID:         "plot-1",
		FarmerID:   "farmer-1",
		Nickname:   "North field",
		CropType:   models.CropTypeRice,
		SowingDate: testNow.AddDate(0, 0, -30), // Vegetative for rice
		SoilType:   models.SoilTypeAlluvial,
		Region:     "Nashik",
		IsActive:   true,
	}

	if v, ok := overrides["id"]; ok {
		crop.ID = v.(string)
	}
	if v, ok := overrides["nickname"]; ok {
		crop.Nickname = v.(string)
	}
	if v, ok := overrides["crop_type"]; ok {
		crop.CropType = v.(models.CropType)
	}
	if v, ok := overrides["sowing_date"]; ok {
		crop.SowingDate = v.(time.Time)
	}
	if v, ok := overrides["soil_type"]; ok {
		crop.SoilType = v.(models.SoilType)
	}

	return crop
}

func dryWeek() []models.WeatherDay {
	days := make([]models.WeatherDay, 7)
	for i := range days {
		days[i] = models.WeatherDay{
			Date:         testNow.AddDate(0, 0, i).Format("2006-01-02"),
			TempC:        32,
			Condition:    models.WeatherSunny,
			PrecipChance: 10,
		}
	}
	return days
}

func findByRule(insights []models.Insight, category models.InsightCategory, title string) (models.Insight, bool) {
	for _, ins := range insights {
		if ins.Category == category && ins.Title == title {
			return ins, true
		}
	}
	return models.Insight{}, false
}

func TestComputeForwardInsights_EmptyState(t *testing.T) {
	insights := ComputeForwardInsights(models.AppState{}, testNow)

	assert.NotNil(t, insights)
	assert.Empty(t, insights)
}

func TestComputeForwardInsights_NoWeatherStillYieldsStageInsights(t *testing.T) {
	state := models.AppState{Crops: []models.Crop{mockCrop(nil)}}

	insights := ComputeForwardInsights(state, testNow)

	assert.NotEmpty(t, insights)
	for _, ins := range insights {
		assert.NotEqual(t, models.CategoryWeather, ins.Category)
	}
}

func TestComputeForwardInsights_StormTriggersHeavyRainWarning(t *testing.T) {
	weather := dryWeek()
	weather[3].Condition = models.WeatherStorm
	weather[3].PrecipChance = 95

	state := models.AppState{
		Crops:   []models.Crop{mockCrop(nil)},
		Weather: weather,
	}

	insights := ComputeForwardInsights(state, testNow)

	heavy, found := findByRule(insights, models.CategoryWeather, "Heavy rain warning")
	assert.True(t, found)
	assert.Equal(t, models.PriorityCritical, heavy.Priority)
	assert.Contains(t, heavy.Description, weather[3].Date)

	// The severe-rain rule suppresses the dry-spell rule.
	_, found = findByRule(insights, models.CategoryWeather, "Irrigation reminder")
	assert.False(t, found)
}

func TestComputeForwardInsights_RainChanceThreshold(t *testing.T) {
	belowThreshold := dryWeek()
	belowThreshold[2].Condition = models.WeatherRainy
	belowThreshold[2].PrecipChance = HeavyRainChance - 1

	state := models.AppState{Crops: []models.Crop{mockCrop(nil)}, Weather: belowThreshold}
	insights := ComputeForwardInsights(state, testNow)
	_, found := findByRule(insights, models.CategoryWeather, "Heavy rain warning")
	assert.False(t, found)

	atThreshold := dryWeek()
	atThreshold[2].Condition = models.WeatherRainy
	atThreshold[2].PrecipChance = HeavyRainChance

	state.Weather = atThreshold
	insights = ComputeForwardInsights(state, testNow)
	_, found = findByRule(insights, models.CategoryWeather, "Heavy rain warning")
	assert.True(t, found)
}

func TestComputeForwardInsights_DrySpellIrrigationReminder(t *testing.T) {
	state := models.AppState{
		Crops:   []models.Crop{mockCrop(nil)}, // Vegetative
		Weather: dryWeek(),
	}

	insights := ComputeForwardInsights(state, testNow)

	reminder, found := findByRule(insights, models.CategoryWeather, "Irrigation reminder")
	assert.True(t, found)
	assert.Equal(t, models.PriorityWarning, reminder.Priority)
	assert.Contains(t, reminder.Description, "Vegetative")
}

func TestComputeForwardInsights_DrySpellSkipsEarlyAndLateStages(t *testing.T) {
	for _, sowingOffset := range []int{-5, -90, -200} { // Sowing, Maturity, Harvest for rice
		state := models.AppState{
			Crops: []models.Crop{mockCrop(map[string]interface{}{
				"sowing_date": testNow.AddDate(0, 0, sowingOffset),
			})},
			Weather: dryWeek(),
		}

		insights := ComputeForwardInsights(state, testNow)

		_, found := findByRule(insights, models.CategoryWeather, "Irrigation reminder")
		assert.False(t, found, "sowing offset %d days", sowingOffset)
	}
}

func TestComputeForwardInsights_DrySpellRequiresSunnyToday(t *testing.T) {
	weather := dryWeek()
	weather[0].Condition = models.WeatherCloudy

	state := models.AppState{
		Crops:   []models.Crop{mockCrop(nil)},
		Weather: weather,
	}

	insights := ComputeForwardInsights(state, testNow)

	_, found := findByRule(insights, models.CategoryWeather, "Irrigation reminder")
	assert.False(t, found)
}

func TestComputeForwardInsights_DrySpellBrokenByHighChance(t *testing.T) {
	weather := dryWeek()
	weather[5].PrecipChance = DrySpellMaxChance + 1

	state := models.AppState{
		Crops:   []models.Crop{mockCrop(nil)},
		Weather: weather,
	}

	insights := ComputeForwardInsights(state, testNow)

	_, found := findByRule(insights, models.CategoryWeather, "Irrigation reminder")
	assert.False(t, found)
}

func TestComputeForwardInsights_LowRetentionSoil(t *testing.T) {
	state := models.AppState{
		Crops: []models.Crop{mockCrop(map[string]interface{}{
			"soil_type": models.SoilTypeSandy,
		})},
	}

	insights := ComputeForwardInsights(state, testNow)

	soil, found := findByRule(insights, models.CategorySoil, "Low water retention on sandy soil")
	assert.True(t, found)
	assert.Equal(t, models.PriorityNormal, soil.Priority)

	count := 0
	for _, ins := range insights {
		if ins.Category == models.CategorySoil {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestComputeForwardInsights_HighRetentionSoilNoInsight(t *testing.T) {
	for _, soil := range []models.SoilType{models.SoilTypeAlluvial, models.SoilTypeBlack} {
		state := models.AppState{
			Crops: []models.Crop{mockCrop(map[string]interface{}{"soil_type": soil})},
		}

		insights := ComputeForwardInsights(state, testNow)

		for _, ins := range insights {
			assert.NotEqual(t, models.CategorySoil, ins.Category, "soil %s", soil)
		}
	}
}

func TestComputeForwardInsights_HarvestStageHasNoFertilizerPlan(t *testing.T) {
	state := models.AppState{
		Crops: []models.Crop{mockCrop(map[string]interface{}{
			"sowing_date": testNow.AddDate(0, 0, -200), // well past rice harvest
		})},
	}

	insights := ComputeForwardInsights(state, testNow)

	for _, ins := range insights {
		assert.NotEqual(t, models.CategoryFertilizer, ins.Category)
	}

	pest, found := findByRule(insights, models.CategoryPest, "Harvest stage pest watch")
	assert.True(t, found)
	assert.Equal(t, models.PriorityWarning, pest.Priority)
}

func TestComputeForwardInsights_PestPriorityEscalatesAtFlowering(t *testing.T) {
	state := models.AppState{
		Crops: []models.Crop{mockCrop(map[string]interface{}{
			"sowing_date": testNow.AddDate(0, 0, -60), // rice Flowering
		})},
	}

	insights := ComputeForwardInsights(state, testNow)

	pest, found := findByRule(insights, models.CategoryPest, "Flowering stage pest watch")
	assert.True(t, found)
	assert.Equal(t, models.PriorityWarning, pest.Priority)
}

func TestComputeForwardInsights_PriorityOrderingWithinPlot(t *testing.T) {
	weather := dryWeek()
	weather[1].Condition = models.WeatherStorm
	weather[1].PrecipChance = 90

	state := models.AppState{
		Crops: []models.Crop{mockCrop(map[string]interface{}{
			"soil_type": models.SoilTypeRed,
		})},
		Weather: weather,
	}

	insights := ComputeForwardInsights(state, testNow)
	assert.NotEmpty(t, insights)

	prevRank := -1
	for _, ins := range insights {
		rank := ins.Priority.Rank()
		assert.GreaterOrEqual(t, rank, prevRank, "insight %q out of order", ins.Title)
		prevRank = rank
	}
	assert.Equal(t, models.PriorityCritical, insights[0].Priority)
}

func TestComputeForwardInsights_PlotsKeepRegistrationOrder(t *testing.T) {
	state := models.AppState{
		Crops: []models.Crop{
			mockCrop(map[string]interface{}{"id": "plot-a", "nickname": "A"}),
			mockCrop(map[string]interface{}{"id": "plot-b", "nickname": "B"}),
			mockCrop(map[string]interface{}{"id": "plot-c", "nickname": "C"}),
		},
		Weather: dryWeek(),
	}

	insights := ComputeForwardInsights(state, testNow)
	assert.NotEmpty(t, insights)

	var plotOrder []string
	for _, ins := range insights {
		if len(plotOrder) == 0 || plotOrder[len(plotOrder)-1] != ins.PlotID {
			plotOrder = append(plotOrder, ins.PlotID)
		}
	}
	assert.Equal(t, []string{"plot-a", "plot-b", "plot-c"}, plotOrder)
}

func TestComputeForwardInsights_OneInsightPerRulePerPlot(t *testing.T) {
	// Two storm days must still produce a single heavy rain warning.
	weather := dryWeek()
	weather[1].Condition = models.WeatherStorm
	weather[4].Condition = models.WeatherStorm

	state := models.AppState{
		Crops:   []models.Crop{mockCrop(nil)},
		Weather: weather,
	}

	insights := ComputeForwardInsights(state, testNow)

	count := 0
	for _, ins := range insights {
		if ins.Title == "Heavy rain warning" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestComputeForwardInsights_ActionDateFormat(t *testing.T) {
	state := models.AppState{Crops: []models.Crop{mockCrop(nil)}}

	insights := ComputeForwardInsights(state, testNow)

	assert.NotEmpty(t, insights)
	for _, ins := range insights {
		assert.Equal(t, "01 Mar 2026", ins.ActionDate)
	}
}

func TestComputeForwardInsights_DeterministicAcrossRuns(t *testing.T) {
	state := models.AppState{
		Crops: []models.Crop{
			mockCrop(map[string]interface{}{"id": "plot-a", "soil_type": models.SoilTypeLaterite}),
			mockCrop(map[string]interface{}{"id": "plot-b", "crop_type": models.CropTypeCotton}),
		},
		Weather: dryWeek(),
	}

	first := ComputeForwardInsights(state, testNow)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ComputeForwardInsights(state, testNow))
	}
}

func TestComputeForwardInsights_RiceLateCycleScenario(t *testing.T) {
	state := models.AppState{
		Crops: []models.Crop{mockCrop(map[string]interface{}{
			"sowing_date": testNow.AddDate(0, 0, -100), // rice Maturity
			"soil_type":   models.SoilTypeBlack,
		})},
		Weather: dryWeek(),
	}

	insights := ComputeForwardInsights(state, testNow)

	_, found := findByRule(insights, models.CategoryFertilizer, "Maturity stage fertilizer plan")
	assert.True(t, found)

	// Maturity is outside the irrigation reminder window.
	_, found = findByRule(insights, models.CategoryWeather, "Irrigation reminder")
	assert.False(t, found)
}
