package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "crop-advisory-engine/internal/config"
	"crop-advisory-engine/internal/services/database"
	s3service "crop-advisory-engine/internal/services/s3"
	"crop-advisory-engine/internal/utils"
)

// PlotImportHandler handles S3 events for bulk plot import CSVs.
type PlotImportHandler struct {
	storage  *s3service.Service
	db       *database.DB
	cropRepo *database.CropRepository
}

// NewPlotImportHandler creates a new plot import handler.
func NewPlotImportHandler() (*PlotImportHandler, error) {
	storage, err := s3service.NewService(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}

	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PlotImportHandler{
		storage:  storage,
		db:       db,
		cropRepo: database.NewCropRepository(db),
	}, nil
}

// PlotImportResult is the result of processing an import CSV.
type PlotImportResult struct {
	Message  string   `json:"message"`
	BatchID  string   `json:"batch_id"`
	FarmerID string   `json:"farmer_id,omitempty"`
	Inserted int      `json:"inserted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded plot CSVs.
func (h *PlotImportHandler) Handle(ctx context.Context, s3Event events.S3Event) (PlotImportResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return PlotImportResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return PlotImportResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	logger.Info("Processing plot import CSV",
		utils.String("bucket", record.S3.Bucket.Name),
		utils.String("key", key))

	// The farmer ID is the path segment after the import prefix
	farmerID := farmerIDFromKey(key)
	if farmerID == "" {
		return PlotImportResult{}, fmt.Errorf("could not determine farmer from key %s", key)
	}

	// Download CSV from S3
	csvContent, err := h.downloadCSV(ctx, key)
	if err != nil {
		logger.Error("Failed to download CSV", utils.Error(err))
		return PlotImportResult{}, fmt.Errorf("failed to download CSV: %w", err)
	}

	// Generate batch ID
	batchID := generateBatchID(key)

	// Parse CSV
	parser := utils.NewCSVParser()
	crops, parseErrors := parser.ParseCrops(csvContent, farmerID, batchID)

	if len(crops) == 0 {
		errMsgs := make([]string, len(parseErrors))
		for i, e := range parseErrors {
			errMsgs[i] = e.Error()
		}
		return PlotImportResult{
			Message:  "No valid plots found in CSV",
			BatchID:  batchID,
			FarmerID: farmerID,
			Errors:   errMsgs,
		}, nil
	}

	logger.Info("Parsed plot CSV",
		utils.String("batchID", batchID),
		utils.String("farmerID", farmerID),
		utils.Int("validPlots", len(crops)),
		utils.Int("parseErrors", len(parseErrors)))

	// Insert plots into database
	result, err := h.cropRepo.BulkInsert(ctx, crops)
	if err != nil {
		logger.Error("Failed to insert plots", utils.Error(err))
		return PlotImportResult{}, fmt.Errorf("failed to insert plots: %w", err)
	}

	logger.Info("Inserted plots",
		utils.String("batchID", batchID),
		utils.Int("inserted", result.InsertedCount),
		utils.Int("failed", result.FailedCount))

	// Move the file out of the inbox prefix so it is not reprocessed
	if err := h.storage.ArchiveImport(ctx, key); err != nil {
		logger.Warn("Failed to archive file", utils.Error(err))
	}

	// Combine parse errors with insert errors
	allErrors := make([]string, 0)
	for _, e := range parseErrors {
		allErrors = append(allErrors, e.Error())
	}
	allErrors = append(allErrors, result.Errors...)

	// Limit errors in response
	if len(allErrors) > 10 {
		allErrors = allErrors[:10]
	}

	return PlotImportResult{
		Message:  "CSV processed successfully",
		BatchID:  batchID,
		FarmerID: farmerID,
		Inserted: result.InsertedCount,
		Failed:   result.FailedCount + len(parseErrors),
		Errors:   allErrors,
	}, nil
}

// farmerIDFromKey extracts the farmer ID path segment from an import
// key shaped like uploads/plots/<farmer_id>/....
func farmerIDFromKey(key string) string {
	if !strings.HasPrefix(key, s3service.ImportPrefix) {
		return ""
	}
	rest := key[len(s3service.ImportPrefix):]
	if idx := strings.Index(rest, "/"); idx > 0 {
		return rest[:idx]
	}
	return ""
}

// downloadCSV downloads CSV content from S3.
func (h *PlotImportHandler) downloadCSV(ctx context.Context, key string) (string, error) {
	data, err := h.storage.DownloadFile(ctx, key)
	if err != nil {
		return "", err
	}

	if len(data) == 0 {
		return "", fmt.Errorf("CSV file is empty")
	}

	return string(data), nil
}

// generateBatchID generates a unique batch ID for this upload.
func generateBatchID(key string) string {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	hash := sha256.Sum256([]byte(key + timestamp))
	return hex.EncodeToString(hash[:])[:16]
}

// Close cleans up resources.
func (h *PlotImportHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}
