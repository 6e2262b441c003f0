// Package s3copy provides client initialization and configuration.
package s3copy

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/objectops/s3copy/errors"
	"github.com/objectops/s3copy/internal/s3api"
	"github.com/objectops/s3copy/s3copytypes"
)

// Client performs multipart copy operations against S3. It is safe for
// concurrent use: per-copy state lives in the orchestration, not here.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// rawClient holds the actual AWS S3 client for callers that need it
	rawClient *s3.Client

	// config holds the AWS configuration
	config aws.Config

	// clientCfg holds the resolved client-level defaults
	clientCfg s3copytypes.ClientConfig

	// logger receives orchestration events; a no-op logger by default
	logger *zap.Logger
}

// New creates a new copy client with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	client, err := s3copy.New(
//	    s3copy.WithRegion("us-west-2"),
//	    s3copy.WithMaxRetries(3),
//	)
func New(opts ...s3copytypes.Option) (*Client, error) {
	clientCfg := &s3copytypes.ClientConfig{
		MaxRetries:  3,
		Timeout:     0,
		Concurrency: 5,
		PartSize:    s3copytypes.DefaultPartSize,
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	// Apply region from options if specified, otherwise ensure a region is set
	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	// Handle custom HTTP client for timeout
	if clientCfg.CustomHTTPClient != nil {
		httpClient := clientCfg.CustomHTTPClient
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	} else if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	logger := clientCfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		s3Client:  s3Client,
		rawClient: s3Client,
		config:    cfg,
		clientCfg: *clientCfg,
		logger:    logger,
	}, nil
}

// NewWithClient creates a new copy client with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...s3copytypes.Option) *Client {
	clientCfg := &s3copytypes.ClientConfig{
		Concurrency: 5,
		PartSize:    s3copytypes.DefaultPartSize,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	logger := clientCfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		s3Client:  s3Client,
		config:    aws.Config{},
		clientCfg: *clientCfg,
		logger:    logger,
	}
}
