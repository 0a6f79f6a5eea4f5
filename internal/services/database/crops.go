package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"crop-advisory-engine/internal/models"
)

// CropRepository handles plot database operations.
type CropRepository struct {
	db *DB
}

// NewCropRepository creates a new crop repository.
func NewCropRepository(db *DB) *CropRepository {
	return &CropRepository{db: db}
}

// Create registers a new plot and returns its generated ID.
func (r *CropRepository) Create(ctx context.Context, crop *models.CropCreate) (string, error) {
	query := `
		INSERT INTO plots (id, farmer_id, nickname, crop_type, sowing_date, soil_type, region, batch_id, created_at, updated_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, true)
		RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		crop.FarmerID,
		crop.Nickname,
		string(crop.CropType),
		crop.SowingDate,
		string(crop.SoilType),
		crop.Region,
		crop.BatchID,
		time.Now().UTC(),
	).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to create plot: %w", err)
	}

	return id, nil
}

// Replace overwrites every editable field of an existing plot.
// Edits are whole-record replacements keyed by id.
func (r *CropRepository) Replace(ctx context.Context, id string, crop *models.CropCreate) error {
	query := `
		UPDATE plots SET
			nickname = $1,
			crop_type = $2,
			sowing_date = $3,
			soil_type = $4,
			region = $5,
			updated_at = $6
		WHERE id = $7 AND farmer_id = $8 AND is_active = true`

	affected, err := r.db.ExecContext(ctx, query,
		crop.Nickname,
		string(crop.CropType),
		crop.SowingDate,
		string(crop.SoilType),
		crop.Region,
		time.Now().UTC(),
		id,
		crop.FarmerID,
	)
	if err != nil {
		return fmt.Errorf("failed to replace plot: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("plot %s not found", id)
	}
	return nil
}

// GetByID retrieves a plot by its ID.
func (r *CropRepository) GetByID(ctx context.Context, id string) (*models.Crop, error) {
	query := `
		SELECT id, farmer_id, nickname, crop_type, sowing_date, soil_type, region, batch_id, created_at, updated_at, is_active
		FROM plots
		WHERE id = $1 AND is_active = true`

	var crop models.Crop
	var cropType, soilType string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&crop.ID,
		&crop.FarmerID,
		&crop.Nickname,
		&cropType,
		&crop.SowingDate,
		&soilType,
		&crop.Region,
		&crop.BatchID,
		&crop.CreatedAt,
		&crop.UpdatedAt,
		&crop.IsActive,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plot: %w", err)
	}

	crop.CropType = models.CropType(cropType)
	crop.SoilType = models.SoilType(soilType)
	return &crop, nil
}

// GetByFarmerID retrieves all active plots of a farmer in registration order.
func (r *CropRepository) GetByFarmerID(ctx context.Context, farmerID string) ([]*models.Crop, error) {
	query := `
		SELECT id, farmer_id, nickname, crop_type, sowing_date, soil_type, region, batch_id, created_at, updated_at, is_active
		FROM plots
		WHERE farmer_id = $1 AND is_active = true
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plots: %w", err)
	}
	defer rows.Close()

	var crops []*models.Crop
	for rows.Next() {
		var crop models.Crop
		var cropType, soilType string

		err := rows.Scan(
			&crop.ID,
			&crop.FarmerID,
			&crop.Nickname,
			&cropType,
			&crop.SowingDate,
			&soilType,
			&crop.Region,
			&crop.BatchID,
			&crop.CreatedAt,
			&crop.UpdatedAt,
			&crop.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plot: %w", err)
		}

		crop.CropType = models.CropType(cropType)
		crop.SoilType = models.SoilType(soilType)
		crops = append(crops, &crop)
	}

	return crops, nil
}

// Delete soft-deletes a plot.
func (r *CropRepository) Delete(ctx context.Context, id, farmerID string) error {
	affected, err := r.db.ExecContext(ctx,
		"UPDATE plots SET is_active = false, updated_at = $1 WHERE id = $2 AND farmer_id = $3",
		time.Now().UTC(), id, farmerID)
	if err != nil {
		return fmt.Errorf("failed to delete plot: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("plot %s not found", id)
	}
	return nil
}

// BulkInsert registers multiple plots from a CSV import batch.
func (r *CropRepository) BulkInsert(ctx context.Context, crops []*models.CropCreate) (*models.BulkInsertResult, error) {
	result := &models.BulkInsertResult{
		InsertedCount: 0,
		FailedCount:   0,
		Errors:        []string{},
	}

	// Use a transaction for bulk insert
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, crop := range crops {
			_, err := tx.Exec(ctx, `
				INSERT INTO plots (id, farmer_id, nickname, crop_type, sowing_date, soil_type, region, batch_id, created_at, updated_at, is_active)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, true)`,
				uuid.New().String(),
				crop.FarmerID,
				crop.Nickname,
				string(crop.CropType),
				crop.SowingDate,
				string(crop.SoilType),
				crop.Region,
				crop.BatchID,
				time.Now().UTC(),
			)

			if err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("plot %s: %v", crop.Nickname, err))
			} else {
				result.InsertedCount++
			}
		}
		return nil
	})

	if err != nil {
		return result, fmt.Errorf("bulk insert failed: %w", err)
	}

	return result, nil
}

// CountByBatchID returns the number of plots in an import batch.
func (r *CropRepository) CountByBatchID(ctx context.Context, batchID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plots WHERE batch_id = $1", batchID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count plots: %w", err)
	}
	return count, nil
}
