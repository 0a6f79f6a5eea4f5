package advisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crop-advisory-engine/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateGrowthStage_AllCropsAllDurations(t *testing.T) {
	sowing := date(2026, 1, 1)

	for _, cropType := range models.ValidCropTypes() {
		for days := 0; days <= 400; days++ {
			stage := CalculateGrowthStage(cropType, sowing, sowing.AddDate(0, 0, days))
			assert.GreaterOrEqual(t, int(stage), int(StageSowing))
			assert.LessOrEqual(t, int(stage), int(StageHarvest))
		}
	}
}

func TestCalculateGrowthStage_Monotonic(t *testing.T) {
	sowing := date(2026, 1, 1)

	for _, cropType := range models.ValidCropTypes() {
		prev := StageSowing
		for days := 0; days <= 400; days++ {
			stage := CalculateGrowthStage(cropType, sowing, sowing.AddDate(0, 0, days))
			assert.GreaterOrEqual(t, int(stage), int(prev),
				"stage regressed for %s at day %d", cropType, days)
			prev = stage
		}
	}
}

func TestCalculateGrowthStage_BoundariesAreExclusive(t *testing.T) {
	sowing := date(2026, 1, 1)

	// Rice thresholds: 20, 55, 85, 110.
	cases := []struct {
		days     int
		expected GrowthStage
	}{
		{0, StageSowing},
		{19, StageSowing},
		{20, StageVegetative},
		{54, StageVegetative},
		{55, StageFlowering},
		{84, StageFlowering},
		{85, StageMaturity},
		{109, StageMaturity},
		{110, StageHarvest},
		{111, StageHarvest},
	}

	for _, tc := range cases {
		stage := CalculateGrowthStage(models.CropTypeRice, sowing, sowing.AddDate(0, 0, tc.days))
		assert.Equal(t, tc.expected, stage, "rice at %d days", tc.days)
	}
}

func TestCalculateGrowthStage_ReferenceBeforeSowing(t *testing.T) {
	sowing := date(2026, 6, 1)
	reference := date(2026, 5, 20)

	stage := CalculateGrowthStage(models.CropTypeWheat, sowing, reference)
	assert.Equal(t, StageSowing, stage)
}

func TestCalculateGrowthStage_FarFutureIsHarvest(t *testing.T) {
	sowing := date(2016, 1, 1)
	reference := date(2026, 1, 1)

	for _, cropType := range models.ValidCropTypes() {
		stage := CalculateGrowthStage(cropType, sowing, reference)
		assert.Equal(t, StageHarvest, stage, "crop %s", cropType)
	}
}

func TestCalculateGrowthStage_TimeOfDayIgnored(t *testing.T) {
	sowingLate := time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)
	referenceEarly := time.Date(2026, 1, 21, 0, 1, 0, 0, time.UTC)

	// 20 calendar days elapsed regardless of clock times.
	stage := CalculateGrowthStage(models.CropTypeRice, sowingLate, referenceEarly)
	assert.Equal(t, StageVegetative, stage)
}

func TestCalculateGrowthStage_UnknownCropUsesSlowestTable(t *testing.T) {
	sowing := date(2026, 1, 1)
	unknown := models.CropType("bamboo")

	// Sugarcane thresholds apply: 100 days is still Vegetative.
	stage := CalculateGrowthStage(unknown, sowing, sowing.AddDate(0, 0, 100))
	assert.Equal(t, StageVegetative, stage)
}

func TestCalculateGrowthStage_RiceLateCycle(t *testing.T) {
	sowing := date(2025, 11, 1)
	reference := sowing.AddDate(0, 0, 100)

	stage := CalculateGrowthStage(models.CropTypeRice, sowing, reference)
	assert.Equal(t, StageMaturity, stage)
}

func TestGrowthStage_String(t *testing.T) {
	assert.Equal(t, "Sowing", StageSowing.String())
	assert.Equal(t, "Vegetative", StageVegetative.String())
	assert.Equal(t, "Flowering", StageFlowering.String())
	assert.Equal(t, "Maturity", StageMaturity.String())
	assert.Equal(t, "Harvest", StageHarvest.String())
	assert.Equal(t, "Unknown", GrowthStage(99).String())
}
