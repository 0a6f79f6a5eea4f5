package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"crop-advisory-engine/internal/models"
)

// InsightRepository caches computed insights per farmer. The advisory
// engine recomputes from scratch on every run; this cache only serves
// reads between runs and the email digest.
type InsightRepository struct {
	db *DB
}

// NewInsightRepository creates a new insight repository.
func NewInsightRepository(db *DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// ReplaceForFarmer atomically swaps the cached insights of a farmer for
// a freshly computed set. Ordinal position preserves the engine's
// per-plot priority ordering.
func (r *InsightRepository) ReplaceForFarmer(ctx context.Context, farmerID string, insights []models.Insight, computedAt time.Time) error {
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM insights WHERE farmer_id = $1", farmerID); err != nil {
			return fmt.Errorf("failed to clear cached insights: %w", err)
		}

		for i, ins := range insights {
			_, err := tx.Exec(ctx, `
				INSERT INTO insights (farmer_id, plot_id, plot_name, title, description, priority, category, action_date, ordinal, computed_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				farmerID,
				ins.PlotID,
				ins.PlotName,
				ins.Title,
				ins.Description,
				string(ins.Priority),
				string(ins.Category),
				ins.ActionDate,
				i,
				computedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert insight: %w", err)
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to replace insights: %w", err)
	}

	return nil
}

// GetByFarmerID retrieves cached insights for a farmer in their
// computed order. A limit of 0 returns all rows.
func (r *InsightRepository) GetByFarmerID(ctx context.Context, farmerID string, limit int) ([]*models.InsightRecord, error) {
	query := `
		SELECT id, farmer_id, plot_id, plot_name, title, description, priority, category, action_date, computed_at
		FROM insights
		WHERE farmer_id = $1
		ORDER BY ordinal`

	args := []interface{}{farmerID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var records []*models.InsightRecord
	for rows.Next() {
		var rec models.InsightRecord
		var priority, category string

		err := rows.Scan(
			&rec.ID,
			&rec.FarmerID,
			&rec.PlotID,
			&rec.PlotName,
			&rec.Title,
			&rec.Description,
			&priority,
			&category,
			&rec.ActionDate,
			&rec.ComputedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}

		rec.Priority = models.InsightPriority(priority)
		rec.Category = models.InsightCategory(category)
		records = append(records, &rec)
	}

	return records, nil
}

// CountByPriority returns the number of cached insights of a farmer at
// a given priority.
func (r *InsightRepository) CountByPriority(ctx context.Context, farmerID string, priority models.InsightPriority) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM insights WHERE farmer_id = $1 AND priority = $2",
		farmerID, string(priority)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count insights: %w", err)
	}
	return count, nil
}
