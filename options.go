// Package s3copy provides functional options for configuring client and copy behavior.
// These options follow the functional options pattern for clean, composable configuration.
package s3copy

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"

	"github.com/objectops/s3copy/s3copytypes"
)

// WithRegion sets the AWS region for copy operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) s3copytypes.Option {
	return func(c *s3copytypes.ClientConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of retry attempts the underlying SDK
// performs per request. Default is 3 retries. This module itself never retries.
func WithMaxRetries(maxRetries int) s3copytypes.Option {
	return func(c *s3copytypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual S3 requests.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) s3copytypes.Option {
	return func(c *s3copytypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets the default number of concurrent part copies per operation.
// Default is 5. Can be overridden per copy with WithCopyConcurrency.
func WithConcurrency(concurrency int) s3copytypes.Option {
	return func(c *s3copytypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithPartSize sets the default part size for multipart copies.
// Default is 50MB. Must be at least 5MiB; smaller values fail at copy time.
func WithPartSize(partSize int64) s3copytypes.Option {
	return func(c *s3copytypes.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3copytypes.Option {
	return func(c *s3copytypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
// Default is false (uses virtual-hosted style).
func WithForcePathStyle(forcePathStyle bool) s3copytypes.Option {
	return func(c *s3copytypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
// Use this when you need fine-grained control over AWS SDK configuration.
func WithAWSConfig(config *aws.Config) s3copytypes.Option {
	return func(c *s3copytypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient sets a custom HTTP client for S3 requests.
// This takes precedence over WithTimeout.
func WithCustomHTTPClient(client *http.Client) s3copytypes.Option {
	return func(c *s3copytypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithLogger sets the logger that receives orchestration events
// (initiate, per-part completion, finalize, abort). Default is a no-op logger.
func WithLogger(logger *zap.Logger) s3copytypes.Option {
	return func(c *s3copytypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithCopyPartSize overrides the part size for a single copy operation.
// Must be at least 5MiB; smaller values fail before any request is made.
func WithCopyPartSize(partSize int64) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.PartSize = partSize
	}
}

// WithCopyConcurrency overrides the number of concurrent part copies for a
// single copy operation.
func WithCopyConcurrency(concurrency int) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithCopyACL sets the canned ACL applied to the destination object.
// Default is private.
func WithCopyACL(acl s3copytypes.ObjectACL) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.ACL = acl
	}
}

// WithCopyStorageClass sets the storage class of the destination object.
func WithCopyStorageClass(storageClass s3copytypes.StorageClass) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.StorageClass = storageClass
	}
}

// WithCopySSE sets server-side encryption for the destination object.
func WithCopySSE(sse *s3copytypes.SSEConfig) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.SSE = sse
	}
}

// WithCopyMetadata sets user-defined metadata on the destination object.
func WithCopyMetadata(metadata map[string]string) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.Metadata = metadata
	}
}

// WithCopyContentType sets the content type of the destination object.
func WithCopyContentType(contentType string) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.ContentType = contentType
	}
}

// WithCopyContentDisposition sets the content disposition of the destination object.
func WithCopyContentDisposition(contentDisposition string) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.ContentDisposition = contentDisposition
	}
}

// WithCopyContentEncoding sets the content encoding of the destination object.
func WithCopyContentEncoding(contentEncoding string) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.ContentEncoding = contentEncoding
	}
}

// WithCopyContentLanguage sets the content language of the destination object.
func WithCopyContentLanguage(contentLanguage string) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.ContentLanguage = contentLanguage
	}
}

// WithCopyCacheControl sets the cache-control header of the destination object.
func WithCopyCacheControl(cacheControl string) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.CacheControl = cacheControl
	}
}

// WithCopyTagging sets the tag set of the destination object, as a
// URL-encoded query string (e.g. "team=infra&tier=cold").
func WithCopyTagging(tagging string) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.Tagging = tagging
	}
}

// WithCopyExpires sets the expiration time of the destination object.
func WithCopyExpires(expires time.Time) s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.Expires = &expires
	}
}

// WithDetectContentType derives the destination content type by sniffing the
// leading bytes of the source object, falling back to the destination key's
// extension. It only applies when no explicit content type is set.
func WithDetectContentType() s3copytypes.CopyOption {
	return func(c *s3copytypes.CopyOptionConfig) {
		c.DetectContentType = true
	}
}
