package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	s3service "crop-advisory-engine/internal/services/s3"
)

// PresignedURLHandler serves presigned S3 upload URLs so the mobile app
// can push diagnosis photos and plot import CSVs directly to the bucket.
type PresignedURLHandler struct {
	storage *s3service.Service
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string `json:"upload_url"`
	S3Key     string `json:"s3_key"`
	ExpiresIn int    `json:"expires_in"`
}

// uploadContentTypes maps allowed file extensions to their content types.
var uploadContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".csv":  "text/csv",
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler() (*PresignedURLHandler, error) {
	storage, err := s3service.NewService(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}

	return &PresignedURLHandler{storage: storage}, nil
}

// Handle processes presigned URL requests.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,OPTIONS",
		"Content-Type":                 "application/json",
	}

	if request.HTTPMethod == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	filename := request.QueryStringParameters["filename"]
	if filename == "" {
		filename = fmt.Sprintf("photo_%s.jpg", uuid.New().String()[:8])
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := uploadContentTypes[ext]
	if !ok {
		return errorResponse(headers, http.StatusBadRequest, "Only JPG, PNG and CSV files are allowed"), nil
	}

	prefix := s3service.PhotoPrefix
	if ext == ".csv" {
		prefix = s3service.ImportPrefix
	}
	if farmerID := sanitizeFilename(request.QueryStringParameters["farmer_id"]); farmerID != "" {
		prefix += farmerID + "/"
	}

	s3Key := fmt.Sprintf("%s%s/%s_%s",
		prefix,
		time.Now().UTC().Format("2006/01/02"),
		uuid.New().String()[:8],
		sanitizeFilename(filename),
	)

	result, err := h.storage.GeneratePresignedUploadURL(ctx, s3Key, contentType, 60)
	if err != nil {
		return errorResponse(headers, http.StatusInternalServerError, "Failed to generate upload URL"), nil
	}

	body, _ := json.Marshal(PresignedURLResponse{
		UploadURL: result.URL,
		S3Key:     result.Key,
		ExpiresIn: 3600,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// errorResponse builds a JSON error response with the given status.
func errorResponse(headers map[string]string, status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

// sanitizeFilename strips everything outside [a-zA-Z0-9._-] and caps
// the length so object keys stay predictable.
func sanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}

	sanitized := b.String()
	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}
	return sanitized
}
