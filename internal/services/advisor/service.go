package advisor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crop-advisory-engine/internal/models"
	"crop-advisory-engine/internal/services/database"
	"crop-advisory-engine/internal/utils"
)

// AdvisorService assembles application state snapshots from storage, runs
// the insight compiler and caches the results. All rule evaluation lives
// in the pure functions of this package; the service only orchestrates.
type AdvisorService struct {
	db          *database.DB
	farmerRepo  *database.FarmerRepository
	cropRepo    *database.CropRepository
	weatherRepo *database.WeatherRepository
	insightRepo *database.InsightRepository
}

// AdvisoryRun summarizes one insight computation for logging and API
// responses.
type AdvisoryRun struct {
	FarmerID       string        `json:"farmer_id"`
	TotalPlots     int           `json:"total_plots"`
	TotalInsights  int           `json:"total_insights"`
	CriticalCount  int           `json:"critical_count"`
	WarningCount   int           `json:"warning_count"`
	NormalCount    int           `json:"normal_count"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// NewAdvisorService creates a new advisor service. The static reference
// datasets are validated here so that an incomplete table fails fast at
// startup instead of surfacing as a missing insight later.
func NewAdvisorService(db *database.DB) (*AdvisorService, error) {
	if err := ValidateDatasets(); err != nil {
		return nil, fmt.Errorf("reference dataset validation failed: %w", err)
	}

	return &AdvisorService{
		db:          db,
		farmerRepo:  database.NewFarmerRepository(db),
		cropRepo:    database.NewCropRepository(db),
		weatherRepo: database.NewWeatherRepository(db),
		insightRepo: database.NewInsightRepository(db),
	}, nil
}

// StateForFarmer loads the immutable state snapshot for one farmer: their
// active plots in registration order plus the latest weather snapshot for
// their region. A missing weather snapshot degrades to an empty forecast.
func (s *AdvisorService) StateForFarmer(ctx context.Context, farmerID string) (models.AppState, error) {
	farmer, err := s.farmerRepo.GetByID(ctx, farmerID)
	if err != nil {
		return models.AppState{}, fmt.Errorf("failed to get farmer: %w", err)
	}
	if farmer == nil {
		return models.AppState{}, fmt.Errorf("farmer %s not found", farmerID)
	}

	crops, err := s.cropRepo.GetByFarmerID(ctx, farmerID)
	if err != nil {
		return models.AppState{}, fmt.Errorf("failed to get plots: %w", err)
	}

	state := models.AppState{
		Crops:    make([]models.Crop, 0, len(crops)),
		Language: farmer.Language,
	}
	for _, crop := range crops {
		state.Crops = append(state.Crops, *crop)
	}

	snapshot, err := s.weatherRepo.GetLatest(ctx, farmer.Region)
	if err != nil {
		utils.Logger.Warn("Could not load weather snapshot, continuing without forecast",
			zap.String("farmer_id", farmerID),
			zap.String("region", farmer.Region),
			zap.Error(err),
		)
	} else if snapshot != nil {
		state.Weather = snapshot.Days
	}

	return state, nil
}

// ComputeForFarmer recomputes the full insight list for a farmer and
// refreshes the cached copy. The computation itself is deterministic and
// offline; only snapshot loading and caching touch storage.
func (s *AdvisorService) ComputeForFarmer(ctx context.Context, farmerID string) ([]models.Insight, *AdvisoryRun, error) {
	startTime := time.Now()

	state, err := s.StateForFarmer(ctx, farmerID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	insights := ComputeForwardInsights(state, now)

	run := &AdvisoryRun{
		FarmerID:      farmerID,
		TotalPlots:    len(state.Crops),
		TotalInsights: len(insights),
	}
	for _, ins := range insights {
		switch ins.Priority {
		case models.PriorityCritical:
			run.CriticalCount++
		case models.PriorityWarning:
			run.WarningCount++
		default:
			run.NormalCount++
		}
	}

	if err := s.insightRepo.ReplaceForFarmer(ctx, farmerID, insights, now); err != nil {
		utils.Logger.Warn("Failed to cache insights",
			zap.String("farmer_id", farmerID),
			zap.Error(err),
		)
	}

	run.ProcessingTime = time.Since(startTime)

	utils.Logger.Info("Insight computation complete",
		zap.String("farmer_id", farmerID),
		zap.Int("plots", run.TotalPlots),
		zap.Int("insights", run.TotalInsights),
		zap.Int("critical", run.CriticalCount),
		zap.Duration("processing_time", run.ProcessingTime),
	)

	return insights, run, nil
}

// PlotStage returns the current growth stage of a single plot, for callers
// that need lifecycle status without a full insight computation. A missing
// plot returns a nil crop, not an error.
func (s *AdvisorService) PlotStage(ctx context.Context, plotID string) (GrowthStage, *models.Crop, error) {
	crop, err := s.cropRepo.GetByID(ctx, plotID)
	if err != nil {
		return StageSowing, nil, fmt.Errorf("failed to get plot: %w", err)
	}
	if crop == nil {
		return StageSowing, nil, nil
	}

	return CalculateGrowthStage(crop.CropType, crop.SowingDate, time.Now()), crop, nil
}
