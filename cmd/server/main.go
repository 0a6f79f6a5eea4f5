// Package main provides a local HTTP server for development and testing.
// It exposes the API endpoints the mobile app uses for farmer and plot
// registration, forecast sync, insights and diagnosis.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"crop-advisory-engine/internal/config"
	"crop-advisory-engine/internal/models"
	"crop-advisory-engine/internal/services/advisor"
	"crop-advisory-engine/internal/services/database"
	"crop-advisory-engine/internal/services/diagnostics"
	"crop-advisory-engine/internal/services/weather"
	"crop-advisory-engine/internal/utils"

	"github.com/rs/cors"
)

// Server holds all dependencies
type Server struct {
	db          *database.DB
	farmerRepo  *database.FarmerRepository
	cropRepo    *database.CropRepository
	weatherRepo *database.WeatherRepository
	insightRepo *database.InsightRepository
	advisorSvc  *advisor.AdvisorService
	weatherCli  *weather.Client
	diagCli     *diagnostics.GeminiClient
	config      *config.Config
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ImportResponse contains CSV import processing results
type ImportResponse struct {
	BatchID      string `json:"batch_id"`
	TotalRows    int    `json:"total_rows"`
	ValidPlots   int    `json:"valid_plots"`
	Errors       int    `json:"errors"`
	ProcessingMs int64  `json:"processing_ms"`
}

func main() {
	// Initialize logger first
	if err := utils.InitLogger("info"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Logger.Sync()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config from environment: %v", err)
		cfg = &config.Config{}
	}

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Server will run in demo mode without database")
	}

	server := &Server{
		db:         db,
		config:     cfg,
		weatherCli: weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey),
		diagCli:    diagnostics.NewGeminiClient(cfg.GeminiAPIKey),
	}

	if db != nil {
		server.farmerRepo = database.NewFarmerRepository(db)
		server.cropRepo = database.NewCropRepository(db)
		server.weatherRepo = database.NewWeatherRepository(db)
		server.insightRepo = database.NewInsightRepository(db)

		advisorSvc, err := advisor.NewAdvisorService(db)
		if err != nil {
			log.Fatalf("Failed to initialize advisor service: %v", err)
		}
		server.advisorSvc = advisorSvc
	}

	// Setup routes
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/health", server.healthHandler)

	// Farmer registration
	mux.HandleFunc("/api/farmers", server.farmersHandler)

	// Plot registration and listing
	mux.HandleFunc("/api/plots", server.plotsHandler)

	// Bulk plot import (CSV upload)
	mux.HandleFunc("/api/plots/import", server.importHandler)

	// Weather forecast sync and lookup
	mux.HandleFunc("/api/weather/sync", server.weatherSyncHandler)
	mux.HandleFunc("/api/weather", server.weatherHandler)

	// Insights and growth stage
	mux.HandleFunc("/api/insights", server.insightsHandler)
	mux.HandleFunc("/api/stage", server.stageHandler)

	// AI diagnosis
	mux.HandleFunc("/api/diagnose", server.diagnoseHandler)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	port := getEnvOrDefault("PORT", "8080")
	addr := fmt.Sprintf("0.0.0.0:%s", port)

	log.Printf("Crop Advisory Engine API Server")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("Health: http://localhost:%s/health", port)
	log.Println("")

	// Start server (this blocks until error)
	log.Printf("Starting HTTP server on %s...", addr)
	serverErr := http.ListenAndServe(addr, handler)
	if serverErr != nil {
		log.Fatalf("Server failed: %v", serverErr)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disconnected"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err == nil {
			dbStatus = "connected"
		}
	}

	response := Response{
		Success: true,
		Message: "Crop Advisory Engine API is running",
		Data: map[string]interface{}{
			"status":    "healthy",
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		},
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) farmersHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createFarmer(w, r)
	case http.MethodGet:
		s.getFarmer(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createFarmer(w http.ResponseWriter, r *http.Request) {
	var req models.FarmerCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if err := models.ValidateFarmerCreate(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	if s.farmerRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	id, err := s.farmerRepo.Create(r.Context(), &req)
	if err != nil {
		log.Printf("Error creating farmer: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to register farmer",
		})
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Farmer registered",
		Data:    map[string]string{"id": id},
	})
}

func (s *Server) getFarmer(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "id query parameter is required",
		})
		return
	}

	if s.farmerRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	farmer, err := s.farmerRepo.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("Error fetching farmer: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch farmer",
		})
		return
	}
	if farmer == nil {
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Farmer not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    farmer,
	})
}

func (s *Server) plotsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createPlot(w, r)
	case http.MethodGet:
		s.listPlots(w, r)
	case http.MethodPut:
		s.replacePlot(w, r)
	case http.MethodDelete:
		s.deletePlot(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// plotRequest is the wire form of a plot registration. Sowing dates come
// in as strings so the app can send plain dates without a time component.
type plotRequest struct {
	FarmerID   string `json:"farmer_id"`
	Nickname   string `json:"nickname"`
	CropType   string `json:"crop_type"`
	SowingDate string `json:"sowing_date"`
	SoilType   string `json:"soil_type"`
	Region     string `json:"region"`
}

func (p *plotRequest) toCropCreate() (*models.CropCreate, error) {
	sowingDate, err := models.ParseSowingDate(p.SowingDate)
	if err != nil {
		return nil, err
	}

	return &models.CropCreate{
		FarmerID:   p.FarmerID,
		Nickname:   p.Nickname,
		CropType:   models.NormalizeCropType(p.CropType),
		SowingDate: sowingDate,
		SoilType:   models.NormalizeSoilType(p.SoilType),
		Region:     p.Region,
	}, nil
}

func (s *Server) createPlot(w http.ResponseWriter, r *http.Request) {
	var body plotRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	req, err := body.toCropCreate()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	if err := models.ValidateCropCreate(req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	if s.cropRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	id, err := s.cropRepo.Create(r.Context(), req)
	if err != nil {
		log.Printf("Error creating plot: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to register plot",
		})
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Plot registered",
		Data:    map[string]string{"id": id},
	})
}

func (s *Server) listPlots(w http.ResponseWriter, r *http.Request) {
	farmerID := r.URL.Query().Get("farmer_id")
	if farmerID == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "farmer_id query parameter is required",
		})
		return
	}

	if s.cropRepo == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    []models.Crop{},
		})
		return
	}

	crops, err := s.cropRepo.GetByFarmerID(r.Context(), farmerID)
	if err != nil {
		log.Printf("Error fetching plots: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch plots",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    crops,
	})
}

func (s *Server) replacePlot(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "id query parameter is required",
		})
		return
	}

	var body plotRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	req, err := body.toCropCreate()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	if err := models.ValidateCropCreate(req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	if s.cropRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	if err := s.cropRepo.Replace(r.Context(), id, req); err != nil {
		log.Printf("Error replacing plot: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to update plot",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Plot updated",
	})
}

func (s *Server) deletePlot(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	farmerID := r.URL.Query().Get("farmer_id")
	if id == "" || farmerID == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "id and farmer_id query parameters are required",
		})
		return
	}

	if s.cropRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	if err := s.cropRepo.Delete(r.Context(), id, farmerID); err != nil {
		log.Printf("Error deleting plot: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to delete plot",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Plot deleted",
	})
}

func (s *Server) importHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	farmerID := r.URL.Query().Get("farmer_id")
	if farmerID == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "farmer_id query parameter is required",
		})
		return
	}

	// Handle multipart form upload
	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB max
		log.Printf("Failed to parse form: %v", err)
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Failed to parse form: " + err.Error(),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "No file provided",
		})
		return
	}
	defer file.Close()

	// Validate file type
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Only CSV files are allowed",
		})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to read file",
		})
		return
	}

	startTime := time.Now()
	batchID := fmt.Sprintf("batch_%d", time.Now().Unix())

	log.Printf("Processing plot CSV: %s (BatchID: %s)", header.Filename, batchID)

	parser := utils.NewCSVParser()
	crops, parseErrors := parser.ParseCrops(string(content), farmerID, batchID)

	log.Printf("Parsed: %d valid plots, %d errors", len(crops), len(parseErrors))

	result := &ImportResponse{
		BatchID:    batchID,
		TotalRows:  len(crops) + len(parseErrors),
		ValidPlots: len(crops),
		Errors:     len(parseErrors),
	}

	// If no database connection, return parse results only
	if s.db == nil || s.cropRepo == nil {
		result.ProcessingMs = time.Since(startTime).Milliseconds()
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "CSV parsed (demo mode, nothing saved)",
			Data:    result,
		})
		return
	}

	insertResult, err := s.cropRepo.BulkInsert(r.Context(), crops)
	if err != nil {
		log.Printf("Bulk insert failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to save plots",
		})
		return
	}

	result.ValidPlots = insertResult.InsertedCount
	result.Errors += insertResult.FailedCount
	result.ProcessingMs = time.Since(startTime).Milliseconds()

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "CSV processed successfully",
		Data:    result,
	})
}

func (s *Server) weatherSyncHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	region := r.URL.Query().Get("region")
	if region == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "region query parameter is required",
		})
		return
	}

	days, err := s.weatherCli.FetchForecast(r.Context(), region, time.Now().UTC())
	if err != nil {
		log.Printf("Forecast fetch failed: %v", err)
		writeJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error:   "Failed to fetch forecast",
		})
		return
	}

	if s.weatherRepo == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Forecast fetched (demo mode, nothing saved)",
			Data:    days,
		})
		return
	}

	id, err := s.weatherRepo.SaveSnapshot(r.Context(), region, days)
	if err != nil {
		log.Printf("Snapshot save failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to save forecast",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Forecast synced",
		Data: map[string]interface{}{
			"snapshot_id": id,
			"region":      region,
			"days":        len(days),
		},
	})
}

func (s *Server) weatherHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	region := r.URL.Query().Get("region")
	if region == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "region query parameter is required",
		})
		return
	}

	if s.weatherRepo == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    weather.SampleForecast(time.Now().UTC()),
		})
		return
	}

	snapshot, err := s.weatherRepo.GetLatest(r.Context(), region)
	if err != nil {
		log.Printf("Error fetching snapshot: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch forecast",
		})
		return
	}
	if snapshot == nil {
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "No forecast for this region yet",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    snapshot,
	})
}

func (s *Server) insightsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	farmerID := r.URL.Query().Get("farmer_id")
	if farmerID == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "farmer_id query parameter is required",
		})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if s.advisorSvc == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	farmer, err := s.farmerRepo.GetByID(r.Context(), farmerID)
	if err != nil {
		log.Printf("Error fetching farmer: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch farmer",
		})
		return
	}
	if farmer == nil {
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Farmer not found",
		})
		return
	}

	insights, run, err := s.advisorSvc.ComputeForFarmer(r.Context(), farmerID)
	if err != nil {
		log.Printf("Error computing insights: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to compute insights",
		})
		return
	}

	// Localize titles to the farmer's language
	insights = utils.LocalizeInsights(insights, farmer.Language)

	if limit > 0 && len(insights) > limit {
		insights = insights[:limit]
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"insights": insights,
			"summary":  run,
		},
	})
}

func (s *Server) stageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plotID := r.URL.Query().Get("plot_id")
	if plotID == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "plot_id query parameter is required",
		})
		return
	}

	if s.advisorSvc == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	stage, crop, err := s.advisorSvc.PlotStage(r.Context(), plotID)
	if err != nil {
		log.Printf("Error computing stage: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to compute growth stage",
		})
		return
	}
	if crop == nil {
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Plot not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"plot_id":     crop.ID,
			"nickname":    crop.Nickname,
			"crop_type":   crop.CropType,
			"sowing_date": crop.SowingDate.Format("2006-01-02"),
			"stage":       stage.String(),
		},
	})
}

func (s *Server) diagnoseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req diagnostics.DiagnosisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if strings.TrimSpace(req.Symptoms) == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "symptoms field is required",
		})
		return
	}

	diagnosis, err := s.diagCli.Diagnose(r.Context(), &req)
	if err != nil {
		log.Printf("Diagnosis failed: %v", err)
		writeJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error:   "Diagnosis service unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    diagnosis,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
