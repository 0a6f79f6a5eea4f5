// Package diagnostics provides AI-assisted pest and disease diagnosis
// from farmer-submitted symptom descriptions.
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"crop-advisory-engine/internal/models"
)

// GeminiClient handles calls to the Gemini API.
type GeminiClient struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewGeminiClient creates a diagnostics client.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		apiURL: "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent",
		model:  "gemini-pro",
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// DiagnosisRequest describes the symptoms a farmer reported for a plot.
type DiagnosisRequest struct {
	CropType models.CropType `json:"crop_type"`
	Stage    string          `json:"stage"`
	Symptoms string          `json:"symptoms"`
	PhotoURL string          `json:"photo_url,omitempty"`
	Region   string          `json:"region,omitempty"`
}

// DiagnosisResponse is the structured diagnosis returned to the app.
type DiagnosisResponse struct {
	LikelyCause string   `json:"likely_cause"`
	Confidence  float64  `json:"confidence"`
	Treatment   string   `json:"treatment"`
	Preventive  []string `json:"preventive,omitempty"`
}

// Diagnose evaluates reported symptoms against the crop and its growth
// stage. Without an API key it returns a generic advisory so the app
// degrades instead of failing.
func (c *GeminiClient) Diagnose(ctx context.Context, req *DiagnosisRequest) (*DiagnosisResponse, error) {
	if c.apiKey == "" {
		return &DiagnosisResponse{
			LikelyCause: "Diagnosis unavailable",
			Confidence:  0,
			Treatment:   "AI diagnosis is not configured. Consult your local agricultural extension officer with a photo of the affected plants.",
		}, nil
	}

	prompt := c.buildPrompt(req)

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.1,
			"topK":            1,
			"topP":            1,
			"maxOutputTokens": 500,
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", c.apiURL, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return c.parseResponse(result)
}

// buildPrompt creates the diagnosis prompt.
func (c *GeminiClient) buildPrompt(req *DiagnosisRequest) string {
	return fmt.Sprintf(`You are an agronomist advising smallholder farmers in India. Diagnose the likely pest or disease from the report below.

CROP:
- Type: %s
- Growth stage: %s
- Region: %s

REPORTED SYMPTOMS:
%s

Respond ONLY with valid JSON in this exact format:
{
  "likely_cause": "name of pest or disease",
  "confidence": 0.0-1.0,
  "treatment": "Practical low-cost treatment steps",
  "preventive": ["measure1", "measure2"]
}

Consider:
1. Which pests and diseases are common for this crop at this stage?
2. Do the symptoms match a nutrient deficiency instead?
3. Prefer treatments available to smallholder farmers`,
		req.CropType, req.Stage, req.Region, req.Symptoms,
	)
}

// parseResponse extracts DiagnosisResponse from the API response.
func (c *GeminiClient) parseResponse(result map[string]interface{}) (*DiagnosisResponse, error) {
	candidates, ok := result["candidates"].([]interface{})
	if !ok || len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := candidates[0].(map[string]interface{})
	content := candidate["content"].(map[string]interface{})
	parts := content["parts"].([]interface{})
	if len(parts) == 0 {
		return nil, fmt.Errorf("no parts in response")
	}

	text := parts[0].(map[string]interface{})["text"].(string)

	// Extract JSON from response
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 {
		return nil, fmt.Errorf("no JSON found in response")
	}

	jsonStr := text[start : end+1]

	var response DiagnosisResponse
	if err := json.Unmarshal([]byte(jsonStr), &response); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &response, nil
}
