package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"crop-advisory-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
	ErrInvalidRowData = errors.New("invalid row data")
)

// RequiredColumns defines the columns that must be present in the CSV.
var RequiredColumns = []string{
	"nickname",
	"crop_type",
	"sowing_date",
	"soil_type",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	// nickname aliases
	"plot":       "nickname",
	"plot_name":  "nickname",
	"plot name":  "nickname",
	"plotname":   "nickname",
	"name":       "nickname",
	"field":      "nickname",
	"field_name": "nickname",

	// crop_type aliases
	"crop":      "crop_type",
	"croptype":  "crop_type",
	"crop type": "crop_type",
	"cultivar":  "crop_type",

	// sowing_date aliases
	"sowingdate":    "sowing_date",
	"sowing date":   "sowing_date",
	"sown":          "sowing_date",
	"sown_on":       "sowing_date",
	"planting_date": "sowing_date",
	"plantingdate":  "sowing_date",
	"date_sown":     "sowing_date",

	// soil_type aliases
	"soil":      "soil_type",
	"soiltype":  "soil_type",
	"soil type": "soil_type",

	// region aliases
	"district": "region",
	"area":     "region",
	"location": "region",
	"taluka":   "region",
}

// CSVParser handles parsing of plot import CSV files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseCrops parses CSV content and returns a slice of CropCreate objects.
func (p *CSVParser) ParseCrops(content, farmerID, batchID string) ([]*models.CropCreate, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	// Build column mapping
	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	// Parse data rows
	var crops []*models.CropCreate
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		crop, err := p.parseRow(record, farmerID, batchID)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		// Validate crop
		if err := models.ValidateCropCreate(crop); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		crops = append(crops, crop)
	}

	if len(crops) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return crops, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		// Normalize column name
		normalized := strings.ToLower(strings.TrimSpace(col))

		// Apply alias if exists
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}

		p.columnMapping[normalized] = i
	}

	// Check for required columns
	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow parses a single CSV row into a CropCreate object.
func (p *CSVParser) parseRow(record []string, farmerID, batchID string) (*models.CropCreate, error) {
	getValue := func(column string) (string, error) {
		idx, ok := p.columnMapping[column]
		if !ok {
			return "", fmt.Errorf("column %s not found", column)
		}
		if idx >= len(record) {
			return "", fmt.Errorf("column %s index out of range", column)
		}
		return strings.TrimSpace(record[idx]), nil
	}

	// Parse nickname
	nickname, err := getValue("nickname")
	if err != nil {
		return nil, err
	}

	// Parse crop_type
	cropStr, err := getValue("crop_type")
	if err != nil {
		return nil, err
	}
	cropType := models.NormalizeCropType(cropStr)

	// Parse sowing_date
	dateStr, err := getValue("sowing_date")
	if err != nil {
		return nil, err
	}
	sowingDate, err := models.ParseSowingDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid sowing_date: %w", err)
	}

	// Parse soil_type
	soilStr, err := getValue("soil_type")
	if err != nil {
		return nil, err
	}
	soilType := models.NormalizeSoilType(soilStr)

	// Region is optional
	region := ""
	if _, ok := p.columnMapping["region"]; ok {
		region, _ = getValue("region")
	}

	return &models.CropCreate{
		FarmerID:   farmerID,
		Nickname:   nickname,
		CropType:   cropType,
		SowingDate: sowingDate,
		SoilType:   soilType,
		Region:     region,
		BatchID:    batchID,
	}, nil
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Valid:          false,
		RowCount:       0,
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))

	// Read header
	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	// Normalize and check columns
	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		normalizedColumns[normalized] = true
		result.Columns = append(result.Columns, col)
	}

	// Check for required columns
	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	// Count rows
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
