// Package models defines the data structures for the crop advisory engine.
package models

import (
	"time"
)

// Language represents the farmer's preferred display language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageMarathi Language = "mr"
)

// ValidLanguages returns all supported language values.
func ValidLanguages() []Language {
	return []Language{LanguageEnglish, LanguageHindi, LanguageMarathi}
}

// IsValid checks if the language is supported.
func (l Language) IsValid() bool {
	for _, valid := range ValidLanguages() {
		if l == valid {
			return true
		}
	}
	return false
}

// Farmer represents a registered farmer who owns plots.
type Farmer struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Language  Language  `json:"language" db:"language"`
	Region    string    `json:"region" db:"region"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	IsActive  bool      `json:"is_active" db:"is_active"`
}

// FarmerCreate represents the data needed to register a new farmer.
type FarmerCreate struct {
	Name     string   `json:"name" validate:"required,min=1,max=100"`
	Email    string   `json:"email" validate:"required,email"`
	Language Language `json:"language,omitempty"`
	Region   string   `json:"region,omitempty"`
}
