// Package s3copytypes provides shared type definitions for the s3copy module.
package s3copytypes

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"
)

// Protocol constants for multipart copy sizing.
const (
	// DefaultPartSize is the part size used when no override is given (50 MB).
	DefaultPartSize int64 = 50_000_000

	// MinPartSize is the smallest part S3 accepts in a multipart upload,
	// except for the final part (5 MiB).
	MinPartSize int64 = 5_242_880
)

// StorageClass represents the S3 storage class for the copied object.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassReducedRedundancy provides reduced redundancy storage
	StorageClassReducedRedundancy StorageClass = "REDUCED_REDUNDANCY"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA provides one zone infrequent access storage
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"

	// StorageClassDeepArchive provides Deep Archive storage
	StorageClassDeepArchive StorageClass = "DEEP_ARCHIVE"
)

// SSEType represents the server-side encryption type for the copied object.
type SSEType string

// Predefined server-side encryption types
const (
	// SSES3 uses S3-managed encryption keys
	SSES3 SSEType = "AES256"

	// SSEKMS uses AWS KMS-managed encryption keys
	SSEKMS SSEType = "aws:kms"
)

// ObjectACL represents the access control list for the copied object.
type ObjectACL string

// Predefined object ACLs
const (
	// ACLPrivate grants private access (default)
	ACLPrivate ObjectACL = "private"

	// ACLPublicRead grants public read access
	ACLPublicRead ObjectACL = "public-read"

	// ACLPublicReadWrite grants public read and write access
	ACLPublicReadWrite ObjectACL = "public-read-write"

	// ACLAuthenticatedRead grants authenticated users read access
	ACLAuthenticatedRead ObjectACL = "authenticated-read"

	// ACLOwnerRead grants bucket owner read access
	ACLOwnerRead ObjectACL = "bucket-owner-read"

	// ACLOwnerFullControl grants bucket owner full control
	ACLOwnerFullControl ObjectACL = "bucket-owner-full-control"
)

// SSEConfig contains server-side encryption configuration.
type SSEConfig struct {
	// Type is the encryption type (S3-managed or KMS)
	Type SSEType

	// KMSKeyID is the KMS key ID (required for SSE-KMS)
	KMSKeyID string
}

// CopyRequest describes one multipart copy: where to read from, where to
// write to, and how large the source object is. The request is immutable
// once the orchestration starts.
type CopyRequest struct {
	// SourceBucket is the bucket holding the object to copy
	SourceBucket string

	// SourceKey is the key of the object to copy
	SourceKey string

	// DestBucket is the bucket receiving the copy
	DestBucket string

	// DestKey is the key of the new object
	DestKey string

	// ObjectSize is the source object size in bytes. Zero means unknown;
	// the size is then discovered with a HeadObject call on the source.
	ObjectSize int64
}

// CopyResult contains the result of a completed multipart copy.
type CopyResult struct {
	// Bucket is the destination bucket
	Bucket string

	// Key is the destination object key
	Key string

	// Location is the URI of the newly created object
	Location string

	// ETag is the entity tag of the completed object
	ETag string

	// VersionID is the version ID if versioning is enabled on the destination
	VersionID string

	// Parts is the number of parts the copy was split into
	Parts int

	// Duration is how long the copy took
	Duration time.Duration
}

// ClientConfig holds configuration for the copy client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	MaxRetries       int
	Timeout          time.Duration
	Concurrency      int
	PartSize         int64
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
	Logger           *zap.Logger
}

// CopyOptionConfig holds per-copy configuration via functional options.
// Every field is optional; a zero value means the corresponding setting is
// omitted from the initiate request rather than sent empty.
type CopyOptionConfig struct {
	PartSize           int64
	Concurrency        int
	ACL                ObjectACL
	StorageClass       StorageClass
	SSE                *SSEConfig
	Metadata           map[string]string
	ContentType        string
	ContentDisposition string
	ContentEncoding    string
	ContentLanguage    string
	CacheControl       string
	Tagging            string
	Expires            *time.Time
	DetectContentType  bool
}

// Option is a functional option for configuring the copy client.
type Option func(*ClientConfig)

// CopyOption is a functional option for configuring a single copy operation.
type CopyOption func(*CopyOptionConfig)
