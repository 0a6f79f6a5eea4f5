// Package weather fetches regional forecasts from an external provider.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"crop-advisory-engine/internal/models"
	"crop-advisory-engine/internal/utils"
)

// ForecastDays is the snapshot horizon requested from the provider.
const ForecastDays = 7

// Client calls the external weather API.
type Client struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewClient creates a weather API client.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// providerResponse mirrors the provider's forecast payload.
type providerResponse struct {
	Forecast []struct {
		Date         string  `json:"date"`
		TempC        float64 `json:"temp_c"`
		Condition    string  `json:"condition"`
		PrecipChance int     `json:"precip_chance"`
	} `json:"forecast"`
}

// FetchForecast retrieves the forecast for a region. Without a
// configured provider it returns a deterministic sample forecast so
// local development works offline.
func (c *Client) FetchForecast(ctx context.Context, region string, now time.Time) ([]models.WeatherDay, error) {
	if c.apiURL == "" || c.apiKey == "" {
		utils.Logger.Warn("Weather provider not configured, using sample forecast",
			zap.String("region", region))
		return SampleForecast(now), nil
	}

	reqURL := fmt.Sprintf("%s?region=%s&days=%d&key=%s",
		c.apiURL, url.QueryEscape(region), ForecastDays, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode forecast: %w", err)
	}

	days := make([]models.WeatherDay, 0, len(payload.Forecast))
	for _, d := range payload.Forecast {
		day := models.WeatherDay{
			Date:         d.Date,
			TempC:        d.TempC,
			Condition:    models.NormalizeWeatherCondition(d.Condition),
			PrecipChance: d.PrecipChance,
		}
		if err := models.ValidateWeatherDay(&day); err != nil {
			utils.Logger.Warn("Skipping invalid forecast day",
				zap.String("date", d.Date),
				zap.Error(err))
			continue
		}
		days = append(days, day)
	}

	if len(days) == 0 {
		return nil, fmt.Errorf("provider returned no usable forecast days")
	}

	return days, nil
}

// SampleForecast returns a fixed 7-day forecast anchored at now. Used
// when no provider is configured.
func SampleForecast(now time.Time) []models.WeatherDay {
	conditions := []models.WeatherCondition{
		models.WeatherSunny,
		models.WeatherSunny,
		models.WeatherCloudy,
		models.WeatherSunny,
		models.WeatherCloudy,
		models.WeatherSunny,
		models.WeatherSunny,
	}
	chances := []int{5, 10, 15, 5, 20, 10, 5}

	days := make([]models.WeatherDay, ForecastDays)
	for i := 0; i < ForecastDays; i++ {
		days[i] = models.WeatherDay{
			Date:         now.AddDate(0, 0, i).Format("2006-01-02"),
			TempC:        31.0,
			Condition:    conditions[i],
			PrecipChance: chances[i],
		}
	}
	return days
}
