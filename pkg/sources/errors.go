package sources

import (
	"errors"
	"fmt"
)

var ErrFetch = errors.New("fetch failed")

// FetchError is the only failure kind a Source reports. Every FetchError is
// treated as transient: the retry policy does not look further than this type.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// IsRetryable reports whether err came from a Source call.
func IsRetryable(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}
