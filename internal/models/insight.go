// Package models defines the data structures for the crop advisory engine.
package models

import (
	"time"
)

// InsightPriority represents the urgency of an insight.
type InsightPriority string

const (
	PriorityCritical InsightPriority = "critical"
	PriorityWarning  InsightPriority = "warning"
	PriorityNormal   InsightPriority = "normal"
)

// Rank returns the sort rank of a priority; lower ranks sort first.
func (p InsightPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityWarning:
		return 1
	default:
		return 2
	}
}

// InsightCategory represents the advisory domain an insight belongs to.
type InsightCategory string

const (
	CategoryWeather    InsightCategory = "weather"
	CategorySoil       InsightCategory = "soil"
	CategoryPest       InsightCategory = "pest"
	CategoryFertilizer InsightCategory = "fertilizer"
)

// Insight is the engine's output entity: a single actionable advisory for
// one plot. Insights are value objects, freshly computed on every
// invocation and never persisted by the engine itself.
type Insight struct {
	PlotID      string          `json:"plot_id"`
	PlotName    string          `json:"plot_name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    InsightPriority `json:"priority"`
	Category    InsightCategory `json:"category"`
	ActionDate  string          `json:"action_date"`
}

// InsightRecord is a cached insight row as stored by the caller. Caching is
// a caller concern; the compiler always recomputes from scratch.
type InsightRecord struct {
	ID          int64           `json:"id" db:"id"`
	FarmerID    string          `json:"farmer_id" db:"farmer_id"`
	PlotID      string          `json:"plot_id" db:"plot_id"`
	PlotName    string          `json:"plot_name" db:"plot_name"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Priority    InsightPriority `json:"priority" db:"priority"`
	Category    InsightCategory `json:"category" db:"category"`
	ActionDate  string          `json:"action_date" db:"action_date"`
	ComputedAt  time.Time       `json:"computed_at" db:"computed_at"`
}
