// Package copy orchestrates server-side multipart copy of large objects.
// It drives the whole protocol against S3: initiate a multipart upload on the
// destination, fan out one UploadPartCopy call per planned byte range,
// join the results into an ordered part manifest, and either complete the
// upload or abort it and verify that no parts were left behind.
package copy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/objectops/s3copy/errors"
	"github.com/objectops/s3copy/internal/partition"
	"github.com/objectops/s3copy/internal/s3api"
	"github.com/objectops/s3copy/s3copytypes"
)

// defaultConcurrency bounds concurrent part copies when no override is given.
const defaultConcurrency = 5

// Copier performs multipart copy operations. It owns the upload session for
// the duration of one request: only the Copier completes or aborts it, and it
// does so exactly once per run.
type Copier struct {
	s3Client s3api.S3API
	logger   *zap.Logger
}

// NewCopier creates a new multipart copy handler.
func NewCopier(s3Client s3api.S3API, logger *zap.Logger) *Copier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Copier{
		s3Client: s3Client,
		logger:   logger,
	}
}

// Copy runs one multipart copy end to end and returns the completion result.
//
// Any part copy failure triggers the abort path: the upload is aborted, the
// part listing is checked, and the caller receives either an AbortError
// (clean abort) or an AbortIncompleteError (parts left behind), both wrapping
// the original failure. A failed complete call is returned as-is with no
// implicit abort.
func (c *Copier) Copy(
	ctx context.Context,
	req *s3copytypes.CopyRequest,
	config *s3copytypes.CopyOptionConfig,
) (*s3copytypes.CopyResult, error) {
	startTime := time.Now()

	objectSize := req.ObjectSize
	if objectSize == 0 {
		discovered, err := c.headSourceSize(ctx, req)
		if err != nil {
			return nil, err
		}
		objectSize = discovered
	}

	partSize := s3copytypes.DefaultPartSize
	if config != nil && config.PartSize > 0 {
		partSize = config.PartSize
	}

	// Plan before touching the network so invalid sizing fails fast.
	ranges, err := partition.Plan(objectSize, partSize)
	if err != nil {
		return nil, err
	}

	uploadID, err := c.initiate(ctx, req, config)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("multipart copy initiated",
		zap.String("upload_id", uploadID),
		zap.String("source", req.SourceBucket+"/"+req.SourceKey),
		zap.String("destination", req.DestBucket+"/"+req.DestKey),
		zap.Int64("object_size", objectSize),
		zap.Int("parts", len(ranges)))

	parts, copyErr := c.copyParts(ctx, req, uploadID, ranges, c.getConcurrency(config))
	if copyErr != nil {
		return nil, c.abortAndVerify(ctx, req, uploadID, copyErr)
	}

	return c.complete(ctx, req, uploadID, parts, startTime)
}

// headSourceSize discovers the source object size when the request omits it.
func (c *Copier) headSourceSize(ctx context.Context, req *s3copytypes.CopyRequest) (int64, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(req.SourceBucket),
		Key:    aws.String(req.SourceKey),
	}

	output, err := c.s3Client.HeadObject(ctx, input)
	if err != nil {
		return 0, errors.NewObjectError("headSource", req.SourceBucket, req.SourceKey, err).
			WithMessage("failed to get source object metadata")
	}
	return aws.ToInt64(output.ContentLength), nil
}

// getConcurrency returns the configured concurrency level or the default.
func (c *Copier) getConcurrency(config *s3copytypes.CopyOptionConfig) int {
	if config != nil && config.Concurrency > 0 {
		return config.Concurrency
	}
	return defaultConcurrency
}

// initiate creates the multipart upload session on the destination with the
// requested object settings folded in. Unset optional settings are omitted
// from the request entirely, never sent as empty values.
func (c *Copier) initiate(
	ctx context.Context,
	req *s3copytypes.CopyRequest,
	config *s3copytypes.CopyOptionConfig,
) (string, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(req.DestBucket),
		Key:    aws.String(req.DestKey),
	}
	applyCopyOptions(input, config)

	output, err := c.s3Client.CreateMultipartUpload(ctx, input)
	if err != nil {
		return "", errors.NewObjectError("initiateMultipartCopy", req.DestBucket, req.DestKey, err)
	}

	return aws.ToString(output.UploadId), nil
}

// applyCopyOptions applies per-copy destination settings to the initiate input.
func applyCopyOptions(input *s3.CreateMultipartUploadInput, config *s3copytypes.CopyOptionConfig) {
	// ACL defaults to private for security
	acl := s3copytypes.ACLPrivate
	if config != nil && config.ACL != "" {
		acl = config.ACL
	}
	input.ACL = awstypes.ObjectCannedACL(acl)

	if config == nil {
		return
	}

	if config.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(config.StorageClass)
	}
	if len(config.Metadata) > 0 {
		input.Metadata = config.Metadata
	}
	if config.ContentType != "" {
		input.ContentType = aws.String(config.ContentType)
	}
	if config.ContentDisposition != "" {
		input.ContentDisposition = aws.String(config.ContentDisposition)
	}
	if config.ContentEncoding != "" {
		input.ContentEncoding = aws.String(config.ContentEncoding)
	}
	if config.ContentLanguage != "" {
		input.ContentLanguage = aws.String(config.ContentLanguage)
	}
	if config.CacheControl != "" {
		input.CacheControl = aws.String(config.CacheControl)
	}
	if config.Tagging != "" {
		input.Tagging = aws.String(config.Tagging)
	}
	if config.Expires != nil {
		input.Expires = config.Expires
	}

	applySSEOptions(input, config.SSE)
}

// applySSEOptions applies server-side encryption options to the initiate input.
func applySSEOptions(input *s3.CreateMultipartUploadInput, sse *s3copytypes.SSEConfig) {
	if sse == nil {
		return
	}

	switch sse.Type {
	case s3copytypes.SSEKMS:
		input.ServerSideEncryption = awstypes.ServerSideEncryptionAwsKms
		if sse.KMSKeyID != "" {
			input.SSEKMSKeyId = aws.String(sse.KMSKeyID)
		}
	default:
		input.ServerSideEncryption = awstypes.ServerSideEncryptionAes256
	}
}

// copyParts copies all planned ranges concurrently and joins the results into
// a part manifest ordered by ascending part number. Dispatch and completion
// order are irrelevant: each worker writes its CompletedPart into the slot
// keyed by its own part number, so no locking is needed.
//
// If any part fails, the remaining in-flight copies still settle (the results
// channel is buffered for all of them) but their outcomes are discarded; the
// first failure is returned.
func (c *Copier) copyParts(
	ctx context.Context,
	req *s3copytypes.CopyRequest,
	uploadID string,
	ranges []partition.Range,
	concurrency int,
) ([]awstypes.CompletedPart, error) {
	type partResult struct {
		partNumber int32
		etag       string
		err        error
	}

	results := make(chan partResult, len(ranges))
	parts := make([]awstypes.CompletedPart, len(ranges))

	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(partNumber int32, byteRange partition.Range) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			etag, err := c.copyPart(ctx, req, uploadID, partNumber, byteRange)
			results <- partResult{
				partNumber: partNumber,
				etag:       etag,
				err:        err,
			}
		}(int32(i+1), r)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		parts[result.partNumber-1] = awstypes.CompletedPart{
			ETag:       aws.String(result.etag),
			PartNumber: aws.Int32(result.partNumber),
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return parts, nil
}

// copyPart issues a single UploadPartCopy call for one byte range and returns
// the part's ETag. Errors surface to the caller unchanged; retrying is the
// SDK's business, not ours.
func (c *Copier) copyPart(
	ctx context.Context,
	req *s3copytypes.CopyRequest,
	uploadID string,
	partNumber int32,
	byteRange partition.Range,
) (string, error) {
	input := &s3.UploadPartCopyInput{
		Bucket:          aws.String(req.DestBucket),
		Key:             aws.String(req.DestKey),
		CopySource:      aws.String(req.SourceBucket + "/" + req.SourceKey),
		CopySourceRange: aws.String(byteRange.String()),
		UploadId:        aws.String(uploadID),
		PartNumber:      aws.Int32(partNumber),
	}

	output, err := c.s3Client.UploadPartCopy(ctx, input)
	if err != nil {
		return "", errors.NewObjectError("copyPart", req.DestBucket, req.DestKey, err).
			WithMessage(fmt.Sprintf("failed to copy part %d", partNumber))
	}

	c.logger.Debug("part copied",
		zap.String("upload_id", uploadID),
		zap.Int32("part_number", partNumber),
		zap.Int64("bytes", byteRange.Length()))

	return aws.ToString(output.CopyPartResult.ETag), nil
}

// complete finalizes the multipart upload with the ordered part manifest.
// A failed complete is returned as-is; the session is left for the operator
// rather than aborted behind the caller's back.
func (c *Copier) complete(
	ctx context.Context,
	req *s3copytypes.CopyRequest,
	uploadID string,
	parts []awstypes.CompletedPart,
	startTime time.Time,
) (*s3copytypes.CopyResult, error) {
	input := &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(req.DestBucket),
		Key:      aws.String(req.DestKey),
		UploadId: aws.String(uploadID),
		MultipartUpload: &awstypes.CompletedMultipartUpload{
			Parts: parts,
		},
	}

	output, err := c.s3Client.CompleteMultipartUpload(ctx, input)
	if err != nil {
		return nil, errors.NewObjectError("completeMultipartCopy", req.DestBucket, req.DestKey, err)
	}

	c.logger.Info("multipart copy completed",
		zap.String("upload_id", uploadID),
		zap.String("destination", req.DestBucket+"/"+req.DestKey),
		zap.Int("parts", len(parts)),
		zap.Duration("duration", time.Since(startTime)))

	return &s3copytypes.CopyResult{
		Bucket:    req.DestBucket,
		Key:       req.DestKey,
		Location:  aws.ToString(output.Location),
		ETag:      aws.ToString(output.ETag),
		VersionID: aws.ToString(output.VersionId),
		Parts:     len(parts),
		Duration:  time.Since(startTime),
	}, nil
}

// abortAndVerify aborts the upload session after a part copy failure, then
// lists its parts to verify the abort actually removed them. The copy itself
// failed either way, so every return path is an error: a clean abort yields
// an AbortError, leftover parts yield an AbortIncompleteError, and failures
// of the abort or list calls themselves propagate as transport errors.
func (c *Copier) abortAndVerify(
	ctx context.Context,
	req *s3copytypes.CopyRequest,
	uploadID string,
	cause error,
) error {
	c.logger.Warn("part copy failed, aborting multipart copy",
		zap.String("upload_id", uploadID),
		zap.Error(cause))

	abortInput := &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(req.DestBucket),
		Key:      aws.String(req.DestKey),
		UploadId: aws.String(uploadID),
	}
	if _, err := c.s3Client.AbortMultipartUpload(ctx, abortInput); err != nil {
		return errors.NewObjectError("abortMultipartCopy", req.DestBucket, req.DestKey, err).
			WithMessage(fmt.Sprintf("abort failed after part copy error: %v", cause))
	}

	listInput := &s3.ListPartsInput{
		Bucket:   aws.String(req.DestBucket),
		Key:      aws.String(req.DestKey),
		UploadId: aws.String(uploadID),
	}
	listOutput, err := c.s3Client.ListParts(ctx, listInput)
	if err != nil {
		return errors.NewObjectError("listParts", req.DestBucket, req.DestKey, err).
			WithMessage(fmt.Sprintf("cleanup verification failed after part copy error: %v", cause))
	}

	if len(listOutput.Parts) > 0 {
		leftover := make([]errors.LeftoverPart, 0, len(listOutput.Parts))
		for _, p := range listOutput.Parts {
			leftover = append(leftover, errors.LeftoverPart{
				PartNumber: aws.ToInt32(p.PartNumber),
				ETag:       aws.ToString(p.ETag),
				Size:       aws.ToInt64(p.Size),
			})
		}
		c.logger.Error("abort left parts behind",
			zap.String("upload_id", uploadID),
			zap.Int("leftover_parts", len(leftover)))
		return &errors.AbortIncompleteError{
			UploadID: uploadID,
			Parts:    leftover,
			Cause:    cause,
		}
	}

	c.logger.Info("multipart copy aborted cleanly",
		zap.String("upload_id", uploadID))

	return &errors.AbortError{
		UploadID: uploadID,
		Cause:    cause,
	}
}
