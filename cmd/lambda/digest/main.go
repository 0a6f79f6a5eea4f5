// Advisory Digest Lambda entry point, wired to a scheduled trigger
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"crop-advisory-engine/internal/handlers"
	"crop-advisory-engine/internal/utils"
)

func handle(ctx context.Context) (handlers.DigestRunResult, error) {
	handler, err := handlers.NewDigestHandler(ctx)
	if err != nil {
		return handlers.DigestRunResult{}, err
	}
	defer handler.Close()

	return handler.Handle(ctx)
}

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	// Start Lambda
	lambda.Start(handle)
}
