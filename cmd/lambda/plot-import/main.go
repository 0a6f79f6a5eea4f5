// Plot Import Lambda entry point, triggered by S3 uploads of plot CSVs
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
	handler, err := handlers.NewPlotImportHandler()
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}
	defer handler.Close()

	// Start Lambda
	lambda.Start(handler.Handle)
}
