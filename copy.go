// Package s3copy provides the public multipart copy operation.
package s3copy

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	s3copyerrors "github.com/objectops/s3copy/errors"
	"github.com/objectops/s3copy/internal/operations/copy"
	"github.com/objectops/s3copy/internal/validation"
	"github.com/objectops/s3copy/s3copytypes"
)

const (
	// DefaultContentType is the content type used when detection finds nothing
	DefaultContentType = "application/octet-stream"

	// sniffLen is how many leading bytes of the source are fetched for
	// content-type detection
	sniffLen = 3072
)

// CopyObjectMultipart copies a large object server-side by splitting it into
// byte-range parts and copying them concurrently into a multipart upload
// session on the destination. No object data flows through the client.
//
// Required request fields: source bucket/key, destination bucket/key. If
// ObjectSize is zero the source is headed to discover it. Destination
// settings (ACL, storage class, metadata, encryption, content headers) are
// configured via CopyOption parameters; unset settings are omitted from the
// initiate request.
//
// Returns:
//   - *CopyResult: Location, ETag and part count of the completed object
//   - error: Returns an error if the copy fails; a partial copy never survives
//
// Errors:
//   - ErrInvalidInput: If bucket/key parameters are invalid or the part size
//     is below the 5MiB floor (checked before any request is sent)
//   - ErrCopyAborted: If a part copy failed and the session was aborted cleanly
//   - ErrAbortIncomplete: If the abort left parts behind (listing attached)
//   - Network errors or AWS SDK errors wrapped in Error type
//
// Example:
//
//	result, err := client.CopyObjectMultipart(ctx, &s3copytypes.CopyRequest{
//	    SourceBucket: "data",
//	    SourceKey:    "exports/big.bin",
//	    DestBucket:   "archive",
//	    DestKey:      "2026/big.bin",
//	    ObjectSize:   30 << 30,
//	}, s3copy.WithCopyStorageClass(s3copytypes.StorageClassGlacier))
func (c *Client) CopyObjectMultipart(
	ctx context.Context,
	req *s3copytypes.CopyRequest,
	opts ...s3copytypes.CopyOption,
) (*s3copytypes.CopyResult, error) {
	if req == nil {
		return nil, s3copyerrors.NewError("copyObjectMultipart", s3copyerrors.ErrInvalidInput).
			WithMessage("request cannot be nil")
	}
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	config := &s3copytypes.CopyOptionConfig{
		PartSize:    c.clientCfg.PartSize,
		Concurrency: c.clientCfg.Concurrency,
	}
	for _, opt := range opts {
		opt(config)
	}

	if config.DetectContentType && config.ContentType == "" {
		config.ContentType = c.detectContentType(ctx, req.SourceBucket, req.SourceKey, req.DestKey)
	}

	copier := copy.NewCopier(c.s3Client, c.logger)
	return copier.Copy(ctx, req, config)
}

// validateRequest checks all request fields before any network call.
func (c *Client) validateRequest(req *s3copytypes.CopyRequest) error {
	if err := validation.ValidateBucketName(req.SourceBucket); err != nil {
		return s3copyerrors.NewError("copyObjectMultipart", s3copyerrors.ErrInvalidInput).
			WithBucket(req.SourceBucket).
			WithKey(req.SourceKey).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(req.SourceKey); err != nil {
		return s3copyerrors.NewError("copyObjectMultipart", s3copyerrors.ErrInvalidInput).
			WithBucket(req.SourceBucket).
			WithKey(req.SourceKey).
			WithMessage(err.Error())
	}
	if err := validation.ValidateBucketName(req.DestBucket); err != nil {
		return s3copyerrors.NewError("copyObjectMultipart", s3copyerrors.ErrInvalidInput).
			WithBucket(req.DestBucket).
			WithKey(req.DestKey).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(req.DestKey); err != nil {
		return s3copyerrors.NewError("copyObjectMultipart", s3copyerrors.ErrInvalidInput).
			WithBucket(req.DestBucket).
			WithKey(req.DestKey).
			WithMessage(err.Error())
	}
	if req.ObjectSize < 0 {
		return s3copyerrors.NewError("copyObjectMultipart", s3copyerrors.ErrInvalidInput).
			WithBucket(req.SourceBucket).
			WithKey(req.SourceKey).
			WithMessage("object size cannot be negative")
	}

	// A multipart copy onto the same location would replace the object with
	// itself; reject it as a caller mistake.
	if req.SourceBucket == req.DestBucket && req.SourceKey == req.DestKey {
		return s3copyerrors.NewError("copyObjectMultipart", s3copyerrors.ErrInvalidInput).
			WithBucket(req.SourceBucket).
			WithKey(req.SourceKey).
			WithMessage("cannot copy object to itself")
	}

	return nil
}

// detectContentType sniffs the head of the source object to determine the
// destination content type, falling back to extension-based detection on any
// failure. Detection is best-effort: it never fails the copy.
func (c *Client) detectContentType(ctx context.Context, srcBucket, srcKey, dstKey string) string {
	output, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(srcBucket),
		Key:    aws.String(srcKey),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", sniffLen-1)),
	})
	if err != nil || output.Body == nil {
		return c.detectContentTypeFromExtension(dstKey)
	}
	defer output.Body.Close()

	if mt, err := mimetype.DetectReader(output.Body); err == nil && mt != nil {
		return mt.String()
	}

	return c.detectContentTypeFromExtension(dstKey)
}

// detectContentTypeFromExtension detects content type from the key extension.
func (c *Client) detectContentTypeFromExtension(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}
