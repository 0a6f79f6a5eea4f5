// Package models defines the data structures for the crop advisory engine.
package models

import (
	"time"
)

// WeatherCondition represents the forecast condition for a single day.
type WeatherCondition string

const (
	WeatherSunny  WeatherCondition = "sunny"
	WeatherRainy  WeatherCondition = "rainy"
	WeatherCloudy WeatherCondition = "cloudy"
	WeatherStorm  WeatherCondition = "storm"
)

// ValidWeatherConditions returns all valid weather condition values.
func ValidWeatherConditions() []WeatherCondition {
	return []WeatherCondition{WeatherSunny, WeatherRainy, WeatherCloudy, WeatherStorm}
}

// IsValid checks if the weather condition is valid.
func (w WeatherCondition) IsValid() bool {
	for _, valid := range ValidWeatherConditions() {
		if w == valid {
			return true
		}
	}
	return false
}

// WeatherDay is a single forecast sample. Index 0 of a snapshot is today;
// the snapshot is ordered ascending by date and its length is caller-supplied.
type WeatherDay struct {
	Date         string           `json:"date" db:"date"`
	TempC        float64          `json:"temp_c" db:"temp_c"`
	Condition    WeatherCondition `json:"condition" db:"condition"`
	PrecipChance int              `json:"precip_chance" db:"precip_chance"`
}

// WeatherSnapshot is a stored forecast for a region at a point in time.
type WeatherSnapshot struct {
	ID        int64        `json:"id" db:"id"`
	Region    string       `json:"region" db:"region"`
	Days      []WeatherDay `json:"days" db:"days"`
	FetchedAt time.Time    `json:"fetched_at" db:"fetched_at"`
}

// AppState is the immutable snapshot the insight compiler consumes.
// The engine never reads ambient mutable state; callers assemble this
// from storage (or memory) and pass it by value.
type AppState struct {
	Crops    []Crop       `json:"crops"`
	Weather  []WeatherDay `json:"weather"`
	Language Language     `json:"language"`
}
