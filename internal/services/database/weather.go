package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"crop-advisory-engine/internal/models"
)

// WeatherRepository handles weather snapshot database operations.
type WeatherRepository struct {
	db *DB
}

// NewWeatherRepository creates a new weather repository.
func NewWeatherRepository(db *DB) *WeatherRepository {
	return &WeatherRepository{db: db}
}

// SaveSnapshot stores a forecast snapshot for a region. The forecast
// days are stored as a JSONB document since the engine always consumes
// the snapshot whole.
func (r *WeatherRepository) SaveSnapshot(ctx context.Context, region string, days []models.WeatherDay) (int64, error) {
	payload, err := json.Marshal(days)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal forecast days: %w", err)
	}

	query := `
		INSERT INTO weather_snapshots (region, days, fetched_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int64
	err = r.db.QueryRowContext(ctx, query, region, payload, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save weather snapshot: %w", err)
	}

	return id, nil
}

// GetLatest retrieves the most recent forecast snapshot for a region.
func (r *WeatherRepository) GetLatest(ctx context.Context, region string) (*models.WeatherSnapshot, error) {
	query := `
		SELECT id, region, days, fetched_at
		FROM weather_snapshots
		WHERE region = $1
		ORDER BY fetched_at DESC
		LIMIT 1`

	var snapshot models.WeatherSnapshot
	var payload []byte

	err := r.db.QueryRowContext(ctx, query, region).Scan(
		&snapshot.ID,
		&snapshot.Region,
		&payload,
		&snapshot.FetchedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weather snapshot: %w", err)
	}

	if err := json.Unmarshal(payload, &snapshot.Days); err != nil {
		return nil, fmt.Errorf("failed to unmarshal forecast days: %w", err)
	}

	return &snapshot, nil
}

// DeleteOlderThan removes snapshots fetched before the cutoff. Keeps
// the table from growing unbounded under scheduled syncs.
func (r *WeatherRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	affected, err := r.db.ExecContext(ctx,
		"DELETE FROM weather_snapshots WHERE fetched_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}
	return affected, nil
}
