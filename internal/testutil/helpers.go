// Package testutil provides test helper functions.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StringPtr returns a pointer to the given string.
// This is useful for AWS SDK inputs that require string pointers.
func StringPtr(s string) *string {
	return aws.String(s)
}

// Int64Ptr returns a pointer to the given int64.
// This is useful for AWS SDK inputs that require int64 pointers.
func Int64Ptr(i int64) *int64 {
	return aws.Int64(i)
}

// Int32Ptr returns a pointer to the given int32.
// This is useful for AWS SDK inputs that require int32 pointers.
func Int32Ptr(i int32) *int32 {
	return aws.Int32(i)
}

// GenerateTestKey generates a test S3 object key with optional prefix.
// This helps ensure test isolation by using unique keys.
func GenerateTestKey(prefix string) string {
	timestamp := time.Now().UnixNano()
	random := rand.Int63n(100000)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%stest-object-%d-%d", prefix, timestamp, random)
}

// GenerateTestBucketName generates a valid test bucket name.
// Bucket names must be DNS-compliant and globally unique.
func GenerateTestBucketName(prefix string) string {
	timestamp := time.Now().Unix()
	random := rand.Int31n(10000)
	name := fmt.Sprintf("%s-%d-%d", prefix, timestamp, random)
	// Ensure DNS compliance
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

// CreateUploadPartCopyOutput creates a test UploadPartCopyOutput with the given ETag.
// This is useful for mocking part copy operations.
func CreateUploadPartCopyOutput(etag string) *s3.UploadPartCopyOutput {
	return &s3.UploadPartCopyOutput{
		CopyPartResult: &types.CopyPartResult{
			ETag: StringPtr(etag),
		},
	}
}

// CreateListPartsOutput creates a test ListPartsOutput with one part entry per
// given part number. This is useful for mocking cleanup verification.
func CreateListPartsOutput(partNumbers ...int32) *s3.ListPartsOutput {
	parts := make([]types.Part, 0, len(partNumbers))
	for _, n := range partNumbers {
		parts = append(parts, types.Part{
			PartNumber: Int32Ptr(n),
			ETag:       StringPtr(fmt.Sprintf(`"etag-part-%d"`, n)),
			Size:       Int64Ptr(5 * 1024 * 1024),
		})
	}
	return &s3.ListPartsOutput{Parts: parts}
}

// CreateHeadObjectOutput creates a test HeadObjectOutput reporting the given size.
// This is useful for mocking source size discovery.
func CreateHeadObjectOutput(size int64) *s3.HeadObjectOutput {
	return &s3.HeadObjectOutput{
		ContentLength: Int64Ptr(size),
		ETag:          StringPtr(`"test-etag"`),
	}
}
