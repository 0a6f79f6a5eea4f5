package handlers

import (
	"context"
	"fmt"
	"time"

	appConfig "crop-advisory-engine/internal/config"
	"crop-advisory-engine/internal/models"
	"crop-advisory-engine/internal/services/advisor"
	"crop-advisory-engine/internal/services/database"
	sesService "crop-advisory-engine/internal/services/ses"
	"crop-advisory-engine/internal/utils"
)

// DigestHandler recomputes advisories for every farmer and mails the
// urgent ones. Wired to a scheduled trigger.
type DigestHandler struct {
	db           *database.DB
	farmerRepo   *database.FarmerRepository
	insightRepo  *database.InsightRepository
	advisorSvc   *advisor.AdvisorService
	emailSvc     *sesService.Service
	dashboardURL string
}

// NewDigestHandler creates a new digest handler.
func NewDigestHandler(ctx context.Context) (*DigestHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	advisorSvc, err := advisor.NewAdvisorService(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create advisor service: %w", err)
	}

	emailSvc, err := sesService.NewService(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create SES service: %w", err)
	}

	return &DigestHandler{
		db:           db,
		farmerRepo:   database.NewFarmerRepository(db),
		insightRepo:  database.NewInsightRepository(db),
		advisorSvc:   advisorSvc,
		emailSvc:     emailSvc,
		dashboardURL: cfg.DashboardURL,
	}, nil
}

// DigestRunResult summarizes a digest run across all farmers.
type DigestRunResult struct {
	FarmersProcessed int           `json:"farmers_processed"`
	EmailsSent       int           `json:"emails_sent"`
	EmailsSkipped    int           `json:"emails_skipped"`
	Failures         int           `json:"failures"`
	ProcessingTime   time.Duration `json:"processing_time"`
}

// Handle runs the digest for all active farmers.
func (h *DigestHandler) Handle(ctx context.Context) (DigestRunResult, error) {
	logger := utils.GetLogger()
	start := time.Now()
	result := DigestRunResult{}

	farmers, err := h.farmerRepo.GetAllActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load farmers: %w", err)
	}

	for _, farmer := range farmers {
		result.FarmersProcessed++

		if _, _, err := h.advisorSvc.ComputeForFarmer(ctx, farmer.ID); err != nil {
			logger.Warn("Failed to compute advisories for farmer",
				utils.String("farmer_id", farmer.ID),
				utils.Error(err))
			result.Failures++
			continue
		}

		records, err := h.insightRepo.GetByFarmerID(ctx, farmer.ID, 0)
		if err != nil {
			logger.Warn("Failed to load cached insights",
				utils.String("farmer_id", farmer.ID),
				utils.Error(err))
			result.Failures++
			continue
		}

		params := sesService.BuildDigestParams(farmer, records, h.dashboardURL)
		if len(params.Insights) == 0 {
			result.EmailsSkipped++
			continue
		}

		// Titles in the farmer's language, like the app shows them
		for i := range params.Insights {
			params.Insights[i].Title = utils.LocalizeTitle(params.Insights[i].Title, farmer.Language)
		}

		if _, err := h.emailSvc.SendAdvisoryDigest(ctx, params); err != nil {
			logger.Warn("Failed to send digest",
				utils.String("farmer_id", farmer.ID),
				utils.Error(err))
			result.Failures++
			continue
		}
		result.EmailsSent++
	}

	result.ProcessingTime = time.Since(start)

	logger.Info("Digest run complete",
		utils.Int("farmers", result.FarmersProcessed),
		utils.Int("sent", result.EmailsSent),
		utils.Int("skipped", result.EmailsSkipped),
		utils.Int("failures", result.Failures),
		utils.Duration("processing_time", result.ProcessingTime))

	return result, nil
}

// UrgentOnly filters records down to critical priority. Used by
// callers that want an immediate alert rather than the full digest.
func UrgentOnly(records []*models.InsightRecord) []*models.InsightRecord {
	urgent := make([]*models.InsightRecord, 0, len(records))
	for _, rec := range records {
		if rec.Priority == models.PriorityCritical {
			urgent = append(urgent, rec)
		}
	}
	return urgent
}

// Close cleans up resources.
func (h *DigestHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}
