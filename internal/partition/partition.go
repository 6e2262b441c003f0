// Package partition computes the byte-range plan for a multipart copy.
// Given an object size and a target part size it emits the ordered, contiguous
// ranges that each UploadPartCopy call will cover.
package partition

import (
	"fmt"

	"github.com/objectops/s3copy/errors"
	"github.com/objectops/s3copy/s3copytypes"
)

// Range is one inclusive byte range [Start, End] of the source object.
// Part numbers are assigned by the caller as index+1 in emission order.
type Range struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the range covers.
func (r Range) Length() int64 {
	return r.End - r.Start + 1
}

// String formats the range in the bytes=start-end form UploadPartCopy expects.
func (r Range) String() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// Plan splits an object of objectSize bytes into ordered copy ranges of
// partSize bytes each.
//
// The ranges are contiguous, non-overlapping, and cover exactly
// [0, objectSize-1]. A trailing remainder shorter than MinPartSize is not
// emitted as its own range; it is absorbed into the final full-size range,
// since S3 rejects parts below the minimum when the upload has more than one
// part. An object smaller than partSize always yields exactly one range, even
// below MinPartSize: the minimum applies only to multi-part uploads.
func Plan(objectSize, partSize int64) ([]Range, error) {
	if objectSize <= 0 {
		return nil, errors.NewError("plan", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("object size must be positive, got %d", objectSize))
	}
	if partSize < s3copytypes.MinPartSize {
		return nil, errors.NewError("plan", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("part size %d is below the minimum %d", partSize, s3copytypes.MinPartSize))
	}

	n := objectSize / partSize
	remainder := objectSize % partSize

	// Object fits in a single part. Valid even below the minimum part size.
	if n == 0 {
		return []Range{{Start: 0, End: objectSize - 1}}, nil
	}

	ranges := make([]Range, 0, n+1)
	for i := int64(0); i < n; i++ {
		r := Range{Start: i * partSize, End: (i+1)*partSize - 1}
		if i == n-1 && remainder > 0 && remainder < s3copytypes.MinPartSize {
			// Widen the final full-size range to absorb a sub-minimum tail.
			r.End += remainder
		}
		ranges = append(ranges, r)
	}

	if remainder >= s3copytypes.MinPartSize {
		ranges = append(ranges, Range{Start: n * partSize, End: n*partSize + remainder - 1})
	}

	return ranges, nil
}
