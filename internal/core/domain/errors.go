package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared across the batch lifecycle. Adapters match on the kind
// with IsKind and map it to a transport status; the wrapped chain keeps the
// original cause for logs.
var (
	ErrBatchNotFound    = errors.New("batch not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")

	// ErrTemporary marks infrastructure failures that exhausted their retry
	// budget; callers may resubmit the same request later.
	ErrTemporary = errors.New("temporary failure")
)

// WrapError tags err with a kind and the failing operation. The kind stays
// matchable through errors.Is; the message reads "operation: kind: cause".
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}
