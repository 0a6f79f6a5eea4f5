// Package integration_test contains integration tests
package integration_test

import (
	"context"
	"os"
	"testing"
	"time"

	"crop-advisory-engine/internal/models"
	"crop-advisory-engine/internal/services/database"
)

var testDB *database.DB

func TestMain(m *testing.M) {
	// Skip integration tests if no database URL is provided
	if os.Getenv("DATABASE_URL") == "" {
		os.Exit(0)
	}

	var err error
	testDB, err = database.NewFromURL(os.Getenv("DATABASE_URL"))
	if err != nil {
		panic("Failed to connect to test database: " + err.Error())
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func TestDatabaseConnection(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := testDB.HealthCheck(ctx); err != nil {
		t.Errorf("Database health check failed: %v", err)
	}
}

func uniqueEmail() string {
	return "test-" + time.Now().Format("20060102150405.000") + "@example.com"
}

func createTestFarmer(t *testing.T, ctx context.Context) string {
	t.Helper()

	repo := database.NewFarmerRepository(testDB)
	id, err := repo.Create(ctx, &models.FarmerCreate{
		Name:     "Test Farmer",
		Email:    uniqueEmail(),
		Language: models.LanguageHindi,
		Region:   "Nashik",
	})
	if err != nil {
		t.Fatalf("Create farmer failed: %v", err)
	}
	if id == "" {
		t.Fatal("Farmer ID should be set after creation")
	}
	return id
}

func TestFarmerRepository_CRUD(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}

	ctx := context.Background()
	repo := database.NewFarmerRepository(testDB)

	email := uniqueEmail()
	id, err := repo.Create(ctx, &models.FarmerCreate{
		Name:     "Asha Patil",
		Email:    email,
		Language: models.LanguageMarathi,
		Region:   "Pune",
	})
	if err != nil {
		t.Fatalf("Create farmer failed: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("Get farmer failed: %v", err)
	}
	if retrieved == nil {
		t.Fatal("Farmer should exist after creation")
	}
	if retrieved.Email != email {
		t.Errorf("Retrieved email = %q, want %q", retrieved.Email, email)
	}
	if retrieved.Language != models.LanguageMarathi {
		t.Errorf("Retrieved language = %q, want %q", retrieved.Language, models.LanguageMarathi)
	}

	byEmail, err := repo.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("Get farmer by email failed: %v", err)
	}
	if byEmail == nil || byEmail.ID != id {
		t.Error("GetByEmail should return the created farmer")
	}

	if err := repo.UpdateLanguage(ctx, id, models.LanguageEnglish); err != nil {
		t.Fatalf("Update language failed: %v", err)
	}
	updated, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("Get farmer after update failed: %v", err)
	}
	if updated.Language != models.LanguageEnglish {
		t.Errorf("Language after update = %q, want %q", updated.Language, models.LanguageEnglish)
	}

	if err := repo.Deactivate(ctx, id); err != nil {
		t.Fatalf("Deactivate farmer failed: %v", err)
	}
	gone, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("Get farmer after deactivation failed: %v", err)
	}
	if gone != nil {
		t.Error("Deactivated farmer should not be returned")
	}
}

func TestFarmerRepository_GetByID_NotFound(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}

	repo := database.NewFarmerRepository(testDB)
	farmer, err := repo.GetByID(context.Background(), "nonexistent-id")
	if err != nil {
		t.Fatalf("Missing farmer should not error: %v", err)
	}
	if farmer != nil {
		t.Error("Missing farmer should return nil")
	}
}

func TestCropRepository_CRUD(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}

	ctx := context.Background()
	farmerID := createTestFarmer(t, ctx)
	repo := database.NewCropRepository(testDB)

	id, err := repo.Create(ctx, &models.CropCreate{
		FarmerID:   farmerID,
		Nickname:   "North field",
		CropType:   models.CropTypeRice,
		SowingDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		SoilType:   models.SoilTypeAlluvial,
		Region:     "Nashik",
	})
	if err != nil {
		t.Fatalf("Create plot failed: %v", err)
	}

	crop, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("Get plot failed: %v", err)
	}
	if crop == nil {
		t.Fatal("Plot should exist after creation")
	}
	if crop.CropType != models.CropTypeRice {
		t.Errorf("Crop type = %q, want %q", crop.CropType, models.CropTypeRice)
	}

	err = repo.Replace(ctx, id, &models.CropCreate{
		FarmerID:   farmerID,
		Nickname:   "North field",
		CropType:   models.CropTypeWheat,
		SowingDate: time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC),
		SoilType:   models.SoilTypeBlack,
		Region:     "Nashik",
	})
	if err != nil {
		t.Fatalf("Replace plot failed: %v", err)
	}
	replaced, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("Get plot after replace failed: %v", err)
	}
	if replaced.CropType != models.CropTypeWheat {
		t.Errorf("Crop type after replace = %q, want %q", replaced.CropType, models.CropTypeWheat)
	}

	plots, err := repo.GetByFarmerID(ctx, farmerID)
	if err != nil {
		t.Fatalf("Get plots by farmer failed: %v", err)
	}
	if len(plots) != 1 {
		t.Errorf("Farmer should have 1 plot, got %d", len(plots))
	}

	if err := repo.Delete(ctx, id, farmerID); err != nil {
		t.Fatalf("Delete plot failed: %v", err)
	}
	plots, err = repo.GetByFarmerID(ctx, farmerID)
	if err != nil {
		t.Fatalf("Get plots after delete failed: %v", err)
	}
	if len(plots) != 0 {
		t.Errorf("Farmer should have 0 plots after delete, got %d", len(plots))
	}
}

func TestCropRepository_BulkInsert(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}

	ctx := context.Background()
	farmerID := createTestFarmer(t, ctx)
	repo := database.NewCropRepository(testDB)

	batchID := "batch-" + time.Now().Format("20060102150405")
	crops := []*models.CropCreate{
		{FarmerID: farmerID, Nickname: "Plot A", CropType: models.CropTypeRice, SowingDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), SoilType: models.SoilTypeAlluvial, BatchID: batchID},
		{FarmerID: farmerID, Nickname: "Plot B", CropType: models.CropTypeCotton, SowingDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), SoilType: models.SoilTypeBlack, BatchID: batchID},
	}

	result, err := repo.BulkInsert(ctx, crops)
	if err != nil {
		t.Fatalf("Bulk insert failed: %v", err)
	}
	if result.InsertedCount != 2 {
		t.Errorf("Inserted count = %d, want 2", result.InsertedCount)
	}

	count, err := repo.CountByBatchID(ctx, batchID)
	if err != nil {
		t.Fatalf("Count by batch failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Batch count = %d, want 2", count)
	}
}

func TestWeatherRepository_SnapshotRoundTrip(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}

	ctx := context.Background()
	repo := database.NewWeatherRepository(testDB)
	region := "test-region-" + time.Now().Format("150405.000")

	days := []models.WeatherDay{
		{Date: "2026-03-01", TempC: 31.5, Condition: models.WeatherSunny, PrecipChance: 10},
		{Date: "2026-03-02", TempC: 29.0, Condition: models.WeatherRainy, PrecipChance: 80},
	}

	if _, err := repo.SaveSnapshot(ctx, region, days); err != nil {
		t.Fatalf("Save snapshot failed: %v", err)
	}

	snapshot, err := repo.GetLatest(ctx, region)
	if err != nil {
		t.Fatalf("Get latest snapshot failed: %v", err)
	}
	if snapshot == nil {
		t.Fatal("Snapshot should exist after save")
	}
	if len(snapshot.Days) != 2 {
		t.Fatalf("Snapshot has %d days, want 2", len(snapshot.Days))
	}
	if snapshot.Days[1].Condition != models.WeatherRainy {
		t.Errorf("Day 2 condition = %q, want %q", snapshot.Days[1].Condition, models.WeatherRainy)
	}
	if snapshot.Days[1].PrecipChance != 80 {
		t.Errorf("Day 2 precip chance = %d, want 80", snapshot.Days[1].PrecipChance)
	}
}

func TestWeatherRepository_GetLatest_NoSnapshot(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}

	repo := database.NewWeatherRepository(testDB)
	snapshot, err := repo.GetLatest(context.Background(), "region-with-no-snapshots")
	if err != nil {
		t.Fatalf("Missing snapshot should not error: %v", err)
	}
	if snapshot != nil {
		t.Error("Missing snapshot should return nil")
	}
}

func TestInsightRepository_ReplacePreservesOrder(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}

	ctx := context.Background()
	farmerID := createTestFarmer(t, ctx)
	repo := database.NewInsightRepository(testDB)

	insights := []models.Insight{
		{PlotID: "plot-1", PlotName: "A", Title: "Heavy rain warning", Priority: models.PriorityCritical, Category: models.CategoryWeather, ActionDate: "01 Mar 2026"},
		{PlotID: "plot-1", PlotName: "A", Title: "Flowering stage pest watch", Priority: models.PriorityWarning, Category: models.CategoryPest, ActionDate: "01 Mar 2026"},
		{PlotID: "plot-1", PlotName: "A", Title: "Flowering stage fertilizer plan", Priority: models.PriorityNormal, Category: models.CategoryFertilizer, ActionDate: "01 Mar 2026"},
	}

	if err := repo.ReplaceForFarmer(ctx, farmerID, insights, time.Now()); err != nil {
		t.Fatalf("Replace insights failed: %v", err)
	}

	records, err := repo.GetByFarmerID(ctx, farmerID, 0)
	if err != nil {
		t.Fatalf("Get insights failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Got %d insight records, want 3", len(records))
	}
	for i, record := range records {
		if record.Title != insights[i].Title {
			t.Errorf("Record %d title = %q, want %q", i, record.Title, insights[i].Title)
		}
	}

	// A second replace swaps the whole set.
	if err := repo.ReplaceForFarmer(ctx, farmerID, insights[:1], time.Now()); err != nil {
		t.Fatalf("Second replace failed: %v", err)
	}
	records, err = repo.GetByFarmerID(ctx, farmerID, 0)
	if err != nil {
		t.Fatalf("Get insights after second replace failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Got %d insight records after replace, want 1", len(records))
	}

	critical, err := repo.CountByPriority(ctx, farmerID, models.PriorityCritical)
	if err != nil {
		t.Fatalf("Count by priority failed: %v", err)
	}
	if critical != 1 {
		t.Errorf("Critical count = %d, want 1", critical)
	}
}

func TestInsightRepository_GetByFarmerID_Limit(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}

	ctx := context.Background()
	farmerID := createTestFarmer(t, ctx)
	repo := database.NewInsightRepository(testDB)

	insights := []models.Insight{
		{PlotID: "plot-1", PlotName: "A", Title: "One", Priority: models.PriorityNormal, Category: models.CategorySoil, ActionDate: "01 Mar 2026"},
		{PlotID: "plot-1", PlotName: "A", Title: "Two", Priority: models.PriorityNormal, Category: models.CategorySoil, ActionDate: "01 Mar 2026"},
		{PlotID: "plot-1", PlotName: "A", Title: "Three", Priority: models.PriorityNormal, Category: models.CategorySoil, ActionDate: "01 Mar 2026"},
	}
	if err := repo.ReplaceForFarmer(ctx, farmerID, insights, time.Now()); err != nil {
		t.Fatalf("Replace insights failed: %v", err)
	}

	records, err := repo.GetByFarmerID(ctx, farmerID, 2)
	if err != nil {
		t.Fatalf("Get insights with limit failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Got %d records with limit 2, want 2", len(records))
	}
	if len(records) == 2 && records[0].Title != "One" {
		t.Errorf("First record title = %q, want %q", records[0].Title, "One")
	}
}
