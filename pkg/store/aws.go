package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// AWSConfig is shared by the DynamoDB and S3 backends.
type AWSConfig struct {
	Region   string
	Endpoint string // Optional custom endpoint (LocalStack, DynamoDB Local, MinIO)
}

// loadAWSConfig resolves credentials through the default chain. SDK retries
// are disabled: WithRetry owns the retry policy for every backend.
func loadAWSConfig(ctx context.Context, cfg AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}
