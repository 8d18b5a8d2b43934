package client

import "errors"

// Error kinds surfaced by the SDK. Each failed call leaves prior state
// untouched and is independently retriable by re-invoking the same operation;
// the SDK itself never retries.
var (
	// ErrValidation marks malformed local input: an empty file set or a
	// threshold outside the accepted range.
	ErrValidation = errors.New("validation error")

	// ErrSubmission marks a rejected or unreachable batch submission.
	ErrSubmission = errors.New("submission error")

	// ErrFetch marks a rejected or unreachable read operation.
	ErrFetch = errors.New("fetch error")
)
