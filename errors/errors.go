// Package errors provides error types and handling for multipart copy operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a copy operation error with context about the operation that failed.
// It wraps the underlying AWS SDK error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "initiateMultipartCopy", "copyPart")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3copy.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3copy.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3copy.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3copy.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for common copy operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3copy: invalid input")

	// ErrCopyAborted indicates that a multipart copy failed and the upload
	// session was aborted with all copied parts verified removed
	ErrCopyAborted = errors.New("s3copy: multipart copy aborted")

	// ErrAbortIncomplete indicates that the abort call succeeded but a
	// subsequent part listing still reported leftover parts
	ErrAbortIncomplete = errors.New("s3copy: abort passed but copy parts were not removed")

	// ErrObjectNotFound indicates that the source object does not exist
	ErrObjectNotFound = errors.New("s3copy: object not found")
)

// LeftoverPart describes an uploaded part that survived an abort call.
type LeftoverPart struct {
	// PartNumber is the 1-based part number reported by the listing
	PartNumber int32

	// ETag is the entity tag of the leftover part
	ETag string

	// Size is the part size in bytes
	Size int64
}

// AbortError is returned when a part copy failed and the resulting abort
// completed cleanly. It is always an error outcome: a clean abort only means
// no parts were leaked, not that the copy succeeded.
type AbortError struct {
	// UploadID identifies the aborted multipart upload session
	UploadID string

	// Cause is the part copy failure that triggered the abort
	Cause error
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	return fmt.Sprintf("%v (upload %s): %v", ErrCopyAborted, e.UploadID, e.Cause)
}

// Unwrap returns the original part copy failure so the cause chain survives.
func (e *AbortError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches the aborted-copy sentinel.
func (e *AbortError) Is(target error) bool {
	return target == ErrCopyAborted
}

// AbortIncompleteError is returned when the abort call succeeded but the
// verification listing still shows uploaded parts. This signals a potential
// storage-side inconsistency that requires operator attention.
type AbortIncompleteError struct {
	// UploadID identifies the upload session that failed to clean up
	UploadID string

	// Parts is the listing of parts that were not removed
	Parts []LeftoverPart

	// Cause is the part copy failure that triggered the abort
	Cause error
}

// Error implements the error interface.
func (e *AbortIncompleteError) Error() string {
	return fmt.Sprintf("%v (upload %s, %d parts remain): %v",
		ErrAbortIncomplete, e.UploadID, len(e.Parts), e.Cause)
}

// Unwrap returns the original part copy failure so the cause chain survives.
func (e *AbortIncompleteError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches the incomplete-abort sentinel.
func (e *AbortIncompleteError) Is(target error) bool {
	return target == ErrAbortIncomplete
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCopyAborted checks if an error indicates an aborted multipart copy.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsCopyAborted(err error) bool {
	return errors.Is(err, ErrCopyAborted)
}

// IsAbortIncomplete checks if an error indicates an abort that left parts behind.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsAbortIncomplete(err error) bool {
	return errors.Is(err, ErrAbortIncomplete)
}
