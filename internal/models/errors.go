// Package models defines the data structures for the crop advisory engine.
package models

import (
	"errors"
	"strings"
	"time"
)

// Common errors
var (
	ErrInvalidCropType    = errors.New("invalid crop type")
	ErrInvalidSoilType    = errors.New("invalid soil type")
	ErrInvalidSowingDate  = errors.New("invalid sowing date")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmptyNickname      = errors.New("nickname cannot be empty")
	ErrEmptyFarmerID      = errors.New("farmer_id cannot be empty")
	ErrEmptyFarmerName    = errors.New("farmer name cannot be empty")
	ErrInvalidPrecipRange = errors.New("precipitation chance must be between 0 and 100")
)

// NormalizeCropType converts common crop name variations to standard values.
func NormalizeCropType(s string) CropType {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	typeMap := map[string]CropType{
		"rice":         CropTypeRice,
		"paddy":        CropTypeRice,
		"dhan":         CropTypeRice,
		"wheat":        CropTypeWheat,
		"gehu":         CropTypeWheat,
		"maize":        CropTypeMaize,
		"corn":         CropTypeMaize,
		"makka":        CropTypeMaize,
		"cotton":       CropTypeCotton,
		"kapas":        CropTypeCotton,
		"sugarcane":    CropTypeSugarcane,
		"sugar_cane":   CropTypeSugarcane,
		"ganna":        CropTypeSugarcane,
		"pulses":       CropTypePulses,
		"pulse":        CropTypePulses,
		"dal":          CropTypePulses,
		"lentils":      CropTypePulses,
		"gram":         CropTypePulses,
		"vegetables":   CropTypeVegetables,
		"vegetable":    CropTypeVegetables,
		"veg":          CropTypeVegetables,
		"sabzi":        CropTypeVegetables,
		"horticulture": CropTypeVegetables,
	}

	if mapped, ok := typeMap[normalized]; ok {
		return mapped
	}

	// Return as-is if no mapping found (will fail validation)
	return CropType(normalized)
}

// NormalizeSoilType converts common soil name variations to standard values.
func NormalizeSoilType(s string) SoilType {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	typeMap := map[string]SoilType{
		"alluvial":     SoilTypeAlluvial,
		"alluvium":     SoilTypeAlluvial,
		"black":        SoilTypeBlack,
		"black_cotton": SoilTypeBlack,
		"regur":        SoilTypeBlack,
		"red":          SoilTypeRed,
		"red_soil":     SoilTypeRed,
		"laterite":     SoilTypeLaterite,
		"lateritic":    SoilTypeLaterite,
		"sandy":        SoilTypeSandy,
		"sand":         SoilTypeSandy,
		"sandy_loam":   SoilTypeSandy,
	}

	if mapped, ok := typeMap[normalized]; ok {
		return mapped
	}

	return SoilType(normalized)
}

// NormalizeWeatherCondition converts provider condition strings to standard values.
func NormalizeWeatherCondition(s string) WeatherCondition {
	normalized := strings.ToLower(strings.TrimSpace(s))

	condMap := map[string]WeatherCondition{
		"sunny":         WeatherSunny,
		"clear":         WeatherSunny,
		"fair":          WeatherSunny,
		"rainy":         WeatherRainy,
		"rain":          WeatherRainy,
		"drizzle":       WeatherRainy,
		"showers":       WeatherRainy,
		"cloudy":        WeatherCloudy,
		"clouds":        WeatherCloudy,
		"overcast":      WeatherCloudy,
		"partly_cloudy": WeatherCloudy,
		"storm":         WeatherStorm,
		"thunderstorm":  WeatherStorm,
		"cyclone":       WeatherStorm,
		"squall":        WeatherStorm,
	}

	if mapped, ok := condMap[normalized]; ok {
		return mapped
	}

	return WeatherCondition(normalized)
}

// ValidateCropCreate validates plot registration data. A future sowing date
// is accepted here; the engine simply clamps elapsed days to zero.
func ValidateCropCreate(c *CropCreate) error {
	if strings.TrimSpace(c.FarmerID) == "" {
		return ErrEmptyFarmerID
	}

	if strings.TrimSpace(c.Nickname) == "" {
		return ErrEmptyNickname
	}

	if !c.CropType.IsValid() {
		return ErrInvalidCropType
	}

	if !c.SoilType.IsValid() {
		return ErrInvalidSoilType
	}

	if c.SowingDate.IsZero() {
		return ErrInvalidSowingDate
	}

	return nil
}

// ValidateFarmerCreate validates farmer registration data.
func ValidateFarmerCreate(f *FarmerCreate) error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyFarmerName
	}

	if !isValidEmail(f.Email) {
		return ErrInvalidEmail
	}

	if f.Language == "" {
		f.Language = LanguageEnglish
	}

	return nil
}

// ValidateWeatherDay validates a single forecast sample.
func ValidateWeatherDay(d *WeatherDay) error {
	if d.PrecipChance < 0 || d.PrecipChance > 100 {
		return ErrInvalidPrecipRange
	}
	return nil
}

// ParseSowingDate parses a sowing date in the formats bulk imports use.
// Time-of-day is always discarded.
func ParseSowingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidSowingDate
	}

	layouts := []string{"2006-01-02", "02/01/2006", "02-01-2006", time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, ErrInvalidSowingDate
}

// isValidEmail performs basic email validation.
func isValidEmail(email string) bool {
	if email == "" {
		return false
	}

	// Basic check: must contain @ and have content before and after
	atIndex := strings.Index(email, "@")
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	// Must have a dot after @
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex <= atIndex+1 || dotIndex == len(email)-1 {
		return false
	}

	return true
}
