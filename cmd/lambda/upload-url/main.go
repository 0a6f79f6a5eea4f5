// Upload URL Lambda entry point, serves presigned S3 upload URLs
package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"crop-advisory-engine/internal/handlers"
	"crop-advisory-engine/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	// Create handler
	handler, err := handlers.NewPresignedURLHandler()
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}

	// Start Lambda
	lambda.Start(handler.Handle)
}
