package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/multiform/core/storage"
)

// classifyS3Error converts S3 errors to storage-domain errors, keeping
// classification consistent across operations for retry logic and
// user-facing messages.
func classifyS3Error(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Context errors take priority for proper cancellation handling.
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s operation", storage.ErrOperationTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s operation", storage.ErrOperationCanceled, operation)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", storage.ErrFileNotFound, err)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return storage.ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); code {
		case "AccessDenied":
			return fmt.Errorf("%w: %s operation", storage.ErrAccessDenied, operation)
		case "RequestTimeout":
			return fmt.Errorf("%w: %s operation", storage.ErrOperationTimeout, operation)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s operation", storage.ErrServiceUnavailable, operation) // Retryable
		case "NoSuchKey":
			return fmt.Errorf("%w: %s", storage.ErrFileNotFound, err)
		case "NoSuchBucket":
			return storage.ErrBucketNotFound
		default:
			return fmt.Errorf("%w: %s operation failed (code: %s): %v", storage.ErrStoreFailed, operation, code, err)
		}
	}

	return fmt.Errorf("%w: %s operation: %v", storage.ErrStoreFailed, operation, err)
}
