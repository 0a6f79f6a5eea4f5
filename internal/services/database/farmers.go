package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"crop-advisory-engine/internal/models"
)

// FarmerRepository handles farmer database operations.
type FarmerRepository struct {
	db *DB
}

// NewFarmerRepository creates a new farmer repository.
func NewFarmerRepository(db *DB) *FarmerRepository {
	return &FarmerRepository{db: db}
}

// Create inserts a new farmer into the database.
func (r *FarmerRepository) Create(ctx context.Context, farmer *models.FarmerCreate) (string, error) {
	query := `
		INSERT INTO farmers (id, name, email, language, region, created_at, updated_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $6, true)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			language = EXCLUDED.language,
			region = EXCLUDED.region,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		farmer.Name,
		farmer.Email,
		string(farmer.Language),
		farmer.Region,
		time.Now().UTC(),
	).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to create farmer: %w", err)
	}

	return id, nil
}

// GetByID retrieves a farmer by their ID.
func (r *FarmerRepository) GetByID(ctx context.Context, id string) (*models.Farmer, error) {
	query := `
		SELECT id, name, email, language, region, created_at, updated_at, is_active
		FROM farmers
		WHERE id = $1 AND is_active = true`

	var farmer models.Farmer
	var language string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&farmer.ID,
		&farmer.Name,
		&farmer.Email,
		&language,
		&farmer.Region,
		&farmer.CreatedAt,
		&farmer.UpdatedAt,
		&farmer.IsActive,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get farmer: %w", err)
	}

	farmer.Language = models.Language(language)
	return &farmer, nil
}

// GetByEmail retrieves a farmer by their email address.
func (r *FarmerRepository) GetByEmail(ctx context.Context, email string) (*models.Farmer, error) {
	query := `
		SELECT id, name, email, language, region, created_at, updated_at, is_active
		FROM farmers
		WHERE email = $1 AND is_active = true`

	var farmer models.Farmer
	var language string

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&farmer.ID,
		&farmer.Name,
		&farmer.Email,
		&language,
		&farmer.Region,
		&farmer.CreatedAt,
		&farmer.UpdatedAt,
		&farmer.IsActive,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get farmer: %w", err)
	}

	farmer.Language = models.Language(language)
	return &farmer, nil
}

// GetAllActive retrieves all active farmers.
func (r *FarmerRepository) GetAllActive(ctx context.Context) ([]*models.Farmer, error) {
	query := `
		SELECT id, name, email, language, region, created_at, updated_at, is_active
		FROM farmers
		WHERE is_active = true
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query farmers: %w", err)
	}
	defer rows.Close()

	var farmers []*models.Farmer
	for rows.Next() {
		var farmer models.Farmer
		var language string

		err := rows.Scan(
			&farmer.ID,
			&farmer.Name,
			&farmer.Email,
			&language,
			&farmer.Region,
			&farmer.CreatedAt,
			&farmer.UpdatedAt,
			&farmer.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan farmer: %w", err)
		}

		farmer.Language = models.Language(language)
		farmers = append(farmers, &farmer)
	}

	return farmers, nil
}

// UpdateLanguage changes a farmer's preferred display language.
func (r *FarmerRepository) UpdateLanguage(ctx context.Context, id string, lang models.Language) error {
	affected, err := r.db.ExecContext(ctx,
		"UPDATE farmers SET language = $1, updated_at = $2 WHERE id = $3 AND is_active = true",
		string(lang), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update language: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("farmer %s not found", id)
	}
	return nil
}

// Deactivate soft-deletes a farmer.
func (r *FarmerRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE farmers SET is_active = false, updated_at = $1 WHERE id = $2",
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate farmer: %w", err)
	}
	return nil
}
