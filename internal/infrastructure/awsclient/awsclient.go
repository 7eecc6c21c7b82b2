// Package awsclient owns the process-wide AWS configuration and service clients.
// Clients are built once per process and reused across Lambda invocations on warm starts.
package awsclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"jan-server/services/lifelog-api/internal/config"
)

// Clients lazily constructs AWS service clients from one shared aws.Config.
type Clients struct {
	cfg    *config.Config
	awsCfg aws.Config

	s3Once     sync.Once
	s3Client   *s3.Client
	dynamoOnce sync.Once
	dynamo     *dynamodb.Client
	athenaOnce sync.Once
	athena     *athena.Client
	glueOnce   sync.Once
	glue       *glue.Client
}

var (
	sharedOnce sync.Once
	shared     *Clients
	sharedErr  error
)

// Shared returns the process-wide client set, loading the AWS configuration on first use.
// Later calls ignore their arguments and return the first result.
func Shared(ctx context.Context, cfg *config.Config) (*Clients, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = New(ctx, cfg)
	})
	return shared, sharedErr
}

// New loads an AWS configuration. Prefer Shared outside of tests.
func New(ctx context.Context, cfg *config.Config) (*Clients, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Clients{cfg: cfg, awsCfg: awsCfg}, nil
}

// S3 returns the shared S3 client.
func (c *Clients) S3() *s3.Client {
	c.s3Once.Do(func() {
		c.s3Client = s3.NewFromConfig(c.awsCfg, func(o *s3.Options) {
			if c.cfg.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(c.cfg.S3Endpoint)
			}
			o.UsePathStyle = c.cfg.S3UsePathStyle
		})
	})
	return c.s3Client
}

// DynamoDB returns the shared DynamoDB client.
func (c *Clients) DynamoDB() *dynamodb.Client {
	c.dynamoOnce.Do(func() {
		c.dynamo = dynamodb.NewFromConfig(c.awsCfg, func(o *dynamodb.Options) {
			if c.cfg.DynamoDBEndpoint != "" {
				o.BaseEndpoint = aws.String(c.cfg.DynamoDBEndpoint)
			}
		})
	})
	return c.dynamo
}

// Athena returns the shared Athena client.
func (c *Clients) Athena() *athena.Client {
	c.athenaOnce.Do(func() {
		c.athena = athena.NewFromConfig(c.awsCfg)
	})
	return c.athena
}

// Glue returns the shared Glue client.
func (c *Clients) Glue() *glue.Client {
	c.glueOnce.Do(func() {
		c.glue = glue.NewFromConfig(c.awsCfg)
	})
	return c.glue
}
