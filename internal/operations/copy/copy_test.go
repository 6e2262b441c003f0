// Package copy provides unit tests for the multipart copy orchestration.
package copy

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objectops/s3copy/errors"
	"github.com/objectops/s3copy/internal/testutil"
	"github.com/objectops/s3copy/s3copytypes"
)

func testRequest(size int64) *s3copytypes.CopyRequest {
	return &s3copytypes.CopyRequest{
		SourceBucket: "src-bucket",
		SourceKey:    "src-key",
		DestBucket:   "dst-bucket",
		DestKey:      "dst-key",
		ObjectSize:   size,
	}
}

func TestCopier_Copy_Success(t *testing.T) {
	// 120MB at the default 50MB part size: three parts, the last one 20MB.
	const objectSize = 120_000_000

	var copied int32
	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			assert.Equal(t, "dst-bucket", aws.ToString(input.Bucket))
			assert.Equal(t, "dst-key", aws.ToString(input.Key))
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil
		},
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			atomic.AddInt32(&copied, 1)
			assert.Equal(t, "upload-1", aws.ToString(input.UploadId))
			assert.Equal(t, "src-bucket/src-key", aws.ToString(input.CopySource))

			switch aws.ToInt32(input.PartNumber) {
			case 1:
				assert.Equal(t, "bytes=0-49999999", aws.ToString(input.CopySourceRange))
			case 2:
				assert.Equal(t, "bytes=50000000-99999999", aws.ToString(input.CopySourceRange))
			case 3:
				assert.Equal(t, "bytes=100000000-119999999", aws.ToString(input.CopySourceRange))
			default:
				t.Errorf("unexpected part number %d", aws.ToInt32(input.PartNumber))
			}
			return testutil.CreateUploadPartCopyOutput(etagFor(aws.ToInt32(input.PartNumber))), nil
		},
		CompleteMultipartUploadFunc: func(ctx context.Context, input *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
			require.NotNil(t, input.MultipartUpload)
			require.Len(t, input.MultipartUpload.Parts, 3)
			for i, part := range input.MultipartUpload.Parts {
				assert.Equal(t, int32(i+1), aws.ToInt32(part.PartNumber))
				assert.Equal(t, etagFor(int32(i+1)), aws.ToString(part.ETag))
			}
			return &s3.CompleteMultipartUploadOutput{
				Location: aws.String("https://dst-bucket.s3.amazonaws.com/dst-key"),
				ETag:     aws.String(`"final-etag"`),
			}, nil
		},
		AbortMultipartUploadFunc: func(ctx context.Context, input *s3.AbortMultipartUploadInput, opts ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
			t.Error("abort must not be called on the success path")
			return nil, nil
		},
	}

	copier := NewCopier(mock, nil)
	result, err := copier.Copy(context.Background(), testRequest(objectSize), nil)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int32(3), atomic.LoadInt32(&copied))
	assert.Equal(t, "dst-bucket", result.Bucket)
	assert.Equal(t, "dst-key", result.Key)
	assert.Equal(t, "https://dst-bucket.s3.amazonaws.com/dst-key", result.Location)
	assert.Equal(t, `"final-etag"`, result.ETag)
	assert.Equal(t, 3, result.Parts)
}

// TestCopier_Copy_ManifestOrder forces parts to complete in reverse order and
// checks that the manifest handed to CompleteMultipartUpload is still sorted
// by ascending part number.
func TestCopier_Copy_ManifestOrder(t *testing.T) {
	// Four full 50MB parts.
	const objectSize = 200_000_000

	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-ord")}, nil
		},
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			// Lower part numbers finish last.
			n := aws.ToInt32(input.PartNumber)
			time.Sleep(time.Duration(5-n) * 10 * time.Millisecond)
			return testutil.CreateUploadPartCopyOutput(etagFor(n)), nil
		},
		CompleteMultipartUploadFunc: func(ctx context.Context, input *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
			require.Len(t, input.MultipartUpload.Parts, 4)
			for i, part := range input.MultipartUpload.Parts {
				assert.Equal(t, int32(i+1), aws.ToInt32(part.PartNumber))
				assert.Equal(t, etagFor(int32(i+1)), aws.ToString(part.ETag))
			}
			return &s3.CompleteMultipartUploadOutput{ETag: aws.String(`"ok"`)}, nil
		},
	}

	copier := NewCopier(mock, nil)
	result, err := copier.Copy(context.Background(), testRequest(objectSize), nil)

	require.NoError(t, err)
	assert.Equal(t, 4, result.Parts)
}

func TestCopier_Copy_PartFailureAbortsCleanly(t *testing.T) {
	const objectSize = 200_000_000

	partErr := stderrors.New("part copy exploded")
	var aborted, listed int32

	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-fail")}, nil
		},
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			if aws.ToInt32(input.PartNumber) == 2 {
				return nil, partErr
			}
			return testutil.CreateUploadPartCopyOutput(etagFor(aws.ToInt32(input.PartNumber))), nil
		},
		CompleteMultipartUploadFunc: func(ctx context.Context, input *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
			t.Error("complete must not be called after a part failure")
			return nil, nil
		},
		AbortMultipartUploadFunc: func(ctx context.Context, input *s3.AbortMultipartUploadInput, opts ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
			atomic.AddInt32(&aborted, 1)
			assert.Equal(t, "upload-fail", aws.ToString(input.UploadId))
			return &s3.AbortMultipartUploadOutput{}, nil
		},
		ListPartsFunc: func(ctx context.Context, input *s3.ListPartsInput, opts ...func(*s3.Options)) (*s3.ListPartsOutput, error) {
			atomic.AddInt32(&listed, 1)
			assert.Equal(t, "upload-fail", aws.ToString(input.UploadId))
			return &s3.ListPartsOutput{}, nil
		},
	}

	copier := NewCopier(mock, nil)
	result, err := copier.Copy(context.Background(), testRequest(objectSize), nil)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, int32(1), atomic.LoadInt32(&aborted))
	assert.Equal(t, int32(1), atomic.LoadInt32(&listed))

	// Clean abort is still reported as a failure, wrapping the original cause.
	assert.True(t, errors.IsCopyAborted(err))
	assert.True(t, stderrors.Is(err, partErr))

	var abortErr *errors.AbortError
	require.True(t, stderrors.As(err, &abortErr))
	assert.Equal(t, "upload-fail", abortErr.UploadID)
}

func TestCopier_Copy_AbortLeavesPartsBehind(t *testing.T) {
	const objectSize = 100_000_000

	partErr := stderrors.New("throttled")
	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-dirty")}, nil
		},
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			return nil, partErr
		},
		ListPartsFunc: func(ctx context.Context, input *s3.ListPartsInput, opts ...func(*s3.Options)) (*s3.ListPartsOutput, error) {
			return testutil.CreateListPartsOutput(1, 2), nil
		},
	}

	copier := NewCopier(mock, nil)
	_, err := copier.Copy(context.Background(), testRequest(objectSize), nil)

	require.Error(t, err)
	assert.True(t, errors.IsAbortIncomplete(err))
	assert.False(t, errors.IsCopyAborted(err))
	assert.True(t, stderrors.Is(err, partErr))

	var incomplete *errors.AbortIncompleteError
	require.True(t, stderrors.As(err, &incomplete))
	assert.Equal(t, "upload-dirty", incomplete.UploadID)
	require.Len(t, incomplete.Parts, 2)
	assert.Equal(t, int32(1), incomplete.Parts[0].PartNumber)
	assert.Equal(t, int32(2), incomplete.Parts[1].PartNumber)
}

func TestCopier_Copy_AbortCallFails(t *testing.T) {
	abortErr := stderrors.New("abort rejected")
	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-x")}, nil
		},
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			return nil, stderrors.New("part failed")
		},
		AbortMultipartUploadFunc: func(ctx context.Context, input *s3.AbortMultipartUploadInput, opts ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
			return nil, abortErr
		},
		ListPartsFunc: func(ctx context.Context, input *s3.ListPartsInput, opts ...func(*s3.Options)) (*s3.ListPartsOutput, error) {
			t.Error("list must not be called when abort itself fails")
			return nil, nil
		},
	}

	copier := NewCopier(mock, nil)
	_, err := copier.Copy(context.Background(), testRequest(100_000_000), nil)

	require.Error(t, err)
	// A failed abort call is a transport failure, not an abort outcome.
	assert.False(t, errors.IsCopyAborted(err))
	assert.False(t, errors.IsAbortIncomplete(err))
	assert.True(t, stderrors.Is(err, abortErr))
}

func TestCopier_Copy_ListPartsCallFails(t *testing.T) {
	listErr := stderrors.New("listing rejected")
	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-x")}, nil
		},
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			return nil, stderrors.New("part failed")
		},
		ListPartsFunc: func(ctx context.Context, input *s3.ListPartsInput, opts ...func(*s3.Options)) (*s3.ListPartsOutput, error) {
			return nil, listErr
		},
	}

	copier := NewCopier(mock, nil)
	_, err := copier.Copy(context.Background(), testRequest(100_000_000), nil)

	require.Error(t, err)
	assert.False(t, errors.IsCopyAborted(err))
	assert.False(t, errors.IsAbortIncomplete(err))
	assert.True(t, stderrors.Is(err, listErr))
}

func TestCopier_Copy_InitiateFailure(t *testing.T) {
	initErr := stderrors.New("no such bucket")
	var abortCalled int32
	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return nil, initErr
		},
		AbortMultipartUploadFunc: func(ctx context.Context, input *s3.AbortMultipartUploadInput, opts ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
			atomic.AddInt32(&abortCalled, 1)
			return nil, nil
		},
	}

	copier := NewCopier(mock, nil)
	_, err := copier.Copy(context.Background(), testRequest(100_000_000), nil)

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, initErr))
	// No session exists yet, so there is nothing to clean up.
	assert.Equal(t, int32(0), atomic.LoadInt32(&abortCalled))
}

func TestCopier_Copy_CompleteFailureNoImplicitAbort(t *testing.T) {
	completeErr := stderrors.New("complete rejected")
	var abortCalled int32
	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-z")}, nil
		},
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			return testutil.CreateUploadPartCopyOutput(etagFor(aws.ToInt32(input.PartNumber))), nil
		},
		CompleteMultipartUploadFunc: func(ctx context.Context, input *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
			return nil, completeErr
		},
		AbortMultipartUploadFunc: func(ctx context.Context, input *s3.AbortMultipartUploadInput, opts ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
			atomic.AddInt32(&abortCalled, 1)
			return nil, nil
		},
	}

	copier := NewCopier(mock, nil)
	_, err := copier.Copy(context.Background(), testRequest(100_000_000), nil)

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, completeErr))
	assert.Equal(t, int32(0), atomic.LoadInt32(&abortCalled))
}

func TestCopier_Copy_InvalidPartSizeMakesNoCalls(t *testing.T) {
	var calls int32
	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			atomic.AddInt32(&calls, 1)
			return &s3.CreateMultipartUploadOutput{}, nil
		},
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			atomic.AddInt32(&calls, 1)
			return nil, nil
		},
	}

	copier := NewCopier(mock, nil)
	config := &s3copytypes.CopyOptionConfig{PartSize: s3copytypes.MinPartSize - 1}
	_, err := copier.Copy(context.Background(), testRequest(100_000_000), config)

	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestCopier_Copy_SizeDiscovery(t *testing.T) {
	var headCalled int32
	mock := &testutil.MockS3Client{
		HeadObjectFunc: func(ctx context.Context, input *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			atomic.AddInt32(&headCalled, 1)
			assert.Equal(t, "src-bucket", aws.ToString(input.Bucket))
			assert.Equal(t, "src-key", aws.ToString(input.Key))
			return testutil.CreateHeadObjectOutput(120_000_000), nil
		},
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-head")}, nil
		},
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			return testutil.CreateUploadPartCopyOutput(etagFor(aws.ToInt32(input.PartNumber))), nil
		},
		CompleteMultipartUploadFunc: func(ctx context.Context, input *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
			require.Len(t, input.MultipartUpload.Parts, 3)
			return &s3.CompleteMultipartUploadOutput{}, nil
		},
	}

	copier := NewCopier(mock, nil)
	result, err := copier.Copy(context.Background(), testRequest(0), nil)

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&headCalled))
	assert.Equal(t, 3, result.Parts)
}

func TestCopier_Copy_ConcurrencyBound(t *testing.T) {
	// Ten full parts with a bound of 2: inflight must never exceed the bound.
	const objectSize = 500_000_000

	var mu sync.Mutex
	inflight, maxInflight := 0, 0

	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-c")}, nil
		},
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			mu.Lock()
			inflight++
			if inflight > maxInflight {
				maxInflight = inflight
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inflight--
			mu.Unlock()
			return testutil.CreateUploadPartCopyOutput(etagFor(aws.ToInt32(input.PartNumber))), nil
		},
		CompleteMultipartUploadFunc: func(ctx context.Context, input *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
			return &s3.CompleteMultipartUploadOutput{}, nil
		},
	}

	copier := NewCopier(mock, nil)
	config := &s3copytypes.CopyOptionConfig{Concurrency: 2}
	result, err := copier.Copy(context.Background(), testRequest(objectSize), config)

	require.NoError(t, err)
	assert.Equal(t, 10, result.Parts)
	assert.LessOrEqual(t, maxInflight, 2)
	assert.Greater(t, maxInflight, 0)
}

func TestApplyCopyOptions_OmitsUnsetFields(t *testing.T) {
	input := &s3.CreateMultipartUploadInput{}
	applyCopyOptions(input, nil)

	// ACL always defaults to private; everything else stays unset.
	assert.Equal(t, "private", string(input.ACL))
	assert.Nil(t, input.ContentType)
	assert.Nil(t, input.ContentDisposition)
	assert.Nil(t, input.ContentEncoding)
	assert.Nil(t, input.ContentLanguage)
	assert.Nil(t, input.CacheControl)
	assert.Nil(t, input.Tagging)
	assert.Nil(t, input.Expires)
	assert.Nil(t, input.Metadata)
	assert.Empty(t, string(input.StorageClass))
	assert.Empty(t, string(input.ServerSideEncryption))
	assert.Nil(t, input.SSEKMSKeyId)
}

func TestApplyCopyOptions_SetsProvidedFields(t *testing.T) {
	expires := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	config := &s3copytypes.CopyOptionConfig{
		ACL:                s3copytypes.ACLPublicRead,
		StorageClass:       s3copytypes.StorageClassStandardIA,
		Metadata:           map[string]string{"owner": "data-eng"},
		ContentType:        "application/json",
		ContentDisposition: "attachment",
		ContentEncoding:    "gzip",
		ContentLanguage:    "en-US",
		CacheControl:       "max-age=3600",
		Tagging:            "team=infra",
		Expires:            &expires,
		SSE: &s3copytypes.SSEConfig{
			Type:     s3copytypes.SSEKMS,
			KMSKeyID: "kms-key-1",
		},
	}

	input := &s3.CreateMultipartUploadInput{}
	applyCopyOptions(input, config)

	assert.Equal(t, "public-read", string(input.ACL))
	assert.Equal(t, "STANDARD_IA", string(input.StorageClass))
	assert.Equal(t, "data-eng", input.Metadata["owner"])
	assert.Equal(t, "application/json", aws.ToString(input.ContentType))
	assert.Equal(t, "attachment", aws.ToString(input.ContentDisposition))
	assert.Equal(t, "gzip", aws.ToString(input.ContentEncoding))
	assert.Equal(t, "en-US", aws.ToString(input.ContentLanguage))
	assert.Equal(t, "max-age=3600", aws.ToString(input.CacheControl))
	assert.Equal(t, "team=infra", aws.ToString(input.Tagging))
	assert.Equal(t, expires, *input.Expires)
	assert.Equal(t, "aws:kms", string(input.ServerSideEncryption))
	assert.Equal(t, "kms-key-1", aws.ToString(input.SSEKMSKeyId))
}

func etagFor(partNumber int32) string {
	return fmt.Sprintf(`"etag-%d"`, partNumber)
}
