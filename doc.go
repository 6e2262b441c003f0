// Package s3copy performs server-side multipart copy of large S3 objects.
//
// Simple CopyObject tops out at 5GB and copies serially; this package splits
// a copy into byte-range parts, issues the part copies concurrently against
// the destination's multipart upload session, and reconciles the outcome into
// a single result: either a completed object or a verified-clean abort.
//
// Basic usage:
//
//	client, err := s3copy.New(s3copy.WithRegion("us-east-1"))
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.CopyObjectMultipart(ctx, &s3copytypes.CopyRequest{
//	    SourceBucket: "my-bucket",
//	    SourceKey:    "raw/dataset.parquet",
//	    DestBucket:   "archive-bucket",
//	    DestKey:      "2026/dataset.parquet",
//	    ObjectSize:   52 * 1024 * 1024 * 1024,
//	}, s3copy.WithCopyStorageClass(s3copytypes.StorageClassStandardIA))
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("copied to %s in %v\n", result.Location, result.Duration)
//
// A failed part copy always aborts the upload session and verifies the parts
// were removed. A clean abort is still reported as an error (the copy did not
// happen); check it with errors.IsCopyAborted. If the verification listing
// still shows parts, errors.IsAbortIncomplete matches and the listing is
// attached to the error for operator attention.
//
// This package performs no retries of its own: retry policy belongs to the
// AWS SDK's client configuration, and a failed orchestration is safe to rerun
// per request.
package s3copy
