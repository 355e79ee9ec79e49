package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound means a source has no content for a name. It is
	// never retried and, outside the registry root, means "no content".
	ErrSourceNotFound = errors.New("catalog: source not found")
	// ErrRootUnresolved is returned when the registry root has no content
	// anywhere. It wraps ErrSourceNotFound.
	ErrRootUnresolved = fmt.Errorf("catalog: registry root unresolved: %w", ErrSourceNotFound)
	// ErrListUnsupported is returned by sources that cannot enumerate.
	ErrListUnsupported = errors.New("catalog: listing not supported")
)

// TransientFetchError wraps connection-level failures that may succeed on
// a later attempt.
type TransientFetchError struct {
	Name string
	Err  error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("catalog: fetch %s: %v", e.Name, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// PermanentError indicates a failure that will not resolve with retries
// (bad response encoding, forbidden path, ...).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrSourceNotFound, name)
}

// IsTransient reports whether err is worth another attempt.
func IsTransient(err error) bool {
	var te *TransientFetchError
	return errors.As(err, &te)
}
