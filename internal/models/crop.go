// Package models defines the data structures for the crop advisory engine.
package models

import (
	"time"
)

// CropType represents the cultivated crop of a plot.
type CropType string

const (
	CropTypeRice       CropType = "rice"
	CropTypeWheat      CropType = "wheat"
	CropTypeMaize      CropType = "maize"
	CropTypeCotton     CropType = "cotton"
	CropTypeSugarcane  CropType = "sugarcane"
	CropTypePulses     CropType = "pulses"
	CropTypeVegetables CropType = "vegetables"
)

// ValidCropTypes returns all valid crop type values.
func ValidCropTypes() []CropType {
	return []CropType{
		CropTypeRice,
		CropTypeWheat,
		CropTypeMaize,
		CropTypeCotton,
		CropTypeSugarcane,
		CropTypePulses,
		CropTypeVegetables,
	}
}

// IsValid checks if the crop type is valid.
func (c CropType) IsValid() bool {
	for _, valid := range ValidCropTypes() {
		if c == valid {
			return true
		}
	}
	return false
}

// SoilType represents the soil classification of a plot.
type SoilType string

const (
	SoilTypeAlluvial SoilType = "alluvial"
	SoilTypeBlack    SoilType = "black"
	SoilTypeRed      SoilType = "red"
	SoilTypeLaterite SoilType = "laterite"
	SoilTypeSandy    SoilType = "sandy"
)

// ValidSoilTypes returns all valid soil type values.
func ValidSoilTypes() []SoilType {
	return []SoilType{
		SoilTypeAlluvial,
		SoilTypeBlack,
		SoilTypeRed,
		SoilTypeLaterite,
		SoilTypeSandy,
	}
}

// IsValid checks if the soil type is valid.
func (s SoilType) IsValid() bool {
	for _, valid := range ValidSoilTypes() {
		if s == valid {
			return true
		}
	}
	return false
}

// Crop represents a farmer-registered plot under cultivation.
// Plots are replaced by id on edit, never mutated field by field.
type Crop struct {
	ID         string    `json:"id" db:"id"`
	FarmerID   string    `json:"farmer_id" db:"farmer_id"`
	Nickname   string    `json:"nickname" db:"nickname"`
	CropType   CropType  `json:"crop_type" db:"crop_type"`
	SowingDate time.Time `json:"sowing_date" db:"sowing_date"`
	SoilType   SoilType  `json:"soil_type" db:"soil_type"`
	Region     string    `json:"region" db:"region"`
	BatchID    string    `json:"batch_id,omitempty" db:"batch_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	IsActive   bool      `json:"is_active" db:"is_active"`
}

// CropCreate represents the data needed to register a new plot.
type CropCreate struct {
	FarmerID   string    `json:"farmer_id" validate:"required"`
	Nickname   string    `json:"nickname" validate:"required,min=1,max=100"`
	CropType   CropType  `json:"crop_type" validate:"required"`
	SowingDate time.Time `json:"sowing_date" validate:"required"`
	SoilType   SoilType  `json:"soil_type" validate:"required"`
	Region     string    `json:"region,omitempty"`
	BatchID    string    `json:"batch_id,omitempty"`
}

// CSVCropRow represents a row from a bulk plot import CSV file.
type CSVCropRow struct {
	Nickname   string `csv:"nickname"`
	CropType   string `csv:"crop_type"`
	SowingDate string `csv:"sowing_date"`
	SoilType   string `csv:"soil_type"`
	Region     string `csv:"region"`
}

// BulkInsertResult contains the results of a bulk insert operation.
type BulkInsertResult struct {
	InsertedCount int      `json:"inserted_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
}
