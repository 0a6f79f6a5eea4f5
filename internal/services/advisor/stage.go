// Package advisor implements the offline advisory rules engine: growth
// stage derivation and forward insight compilation.
package advisor

import (
	"time"

	"crop-advisory-engine/internal/models"
)

// GrowthStage represents a plot's position in the crop lifecycle. Stages
// are ordered; the numeric value is monotonically non-decreasing as days
// since sowing increase.
type GrowthStage int

const (
	StageSowing GrowthStage = iota
	StageVegetative
	StageFlowering
	StageMaturity
	StageHarvest
)

// String returns the display name of the stage.
func (s GrowthStage) String() string {
	switch s {
	case StageSowing:
		return "Sowing"
	case StageVegetative:
		return "Vegetative"
	case StageFlowering:
		return "Flowering"
	case StageMaturity:
		return "Maturity"
	case StageHarvest:
		return "Harvest"
	default:
		return "Unknown"
	}
}

// AllStages returns the five stages in lifecycle order.
func AllStages() []GrowthStage {
	return []GrowthStage{StageSowing, StageVegetative, StageFlowering, StageMaturity, StageHarvest}
}

// stageBoundaries holds the cumulative day thresholds at which a crop
// leaves Sowing, Vegetative, Flowering and Maturity respectively. Each
// threshold is the exclusive upper bound of its stage: elapsed days equal
// to a threshold already belong to the next stage. Beyond the last
// threshold the crop is at Harvest and stays there.
type stageBoundaries [4]int

var cropStageTable = map[models.CropType]stageBoundaries{
	models.CropTypeRice:       {20, 55, 85, 110},
	models.CropTypeWheat:      {21, 60, 90, 120},
	models.CropTypeMaize:      {15, 50, 75, 100},
	models.CropTypeCotton:     {25, 70, 110, 150},
	models.CropTypeSugarcane:  {35, 150, 240, 330},
	models.CropTypePulses:     {15, 45, 70, 90},
	models.CropTypeVegetables: {12, 40, 60, 75},
}

// CalculateGrowthStage derives the growth stage of a crop sown on
// sowingDate as of referenceDate. Time-of-day is ignored on both dates.
// The function is total: a reference date before sowing clamps elapsed
// days to zero, an unknown crop type falls back to the slowest table, and
// any elapsed duration past the last threshold resolves to Harvest.
func CalculateGrowthStage(cropType models.CropType, sowingDate, referenceDate time.Time) GrowthStage {
	elapsed := elapsedDays(sowingDate, referenceDate)

	boundaries, ok := cropStageTable[cropType]
	if !ok {
		boundaries = cropStageTable[models.CropTypeSugarcane]
	}

	for i, threshold := range boundaries {
		if elapsed < threshold {
			return GrowthStage(i)
		}
	}

	return StageHarvest
}

// elapsedDays returns the whole calendar days between two dates, floored
// and clamped to zero.
func elapsedDays(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	days := int(toDay.Sub(fromDay).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
