package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced document does not exist
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when a Mutate could not be applied after repeated concurrent modification
	ErrConflict = errors.New("document was modified concurrently")

	// ErrDuplicate is returned when a write violates a uniqueness constraint
	ErrDuplicate = errors.New("document violates unique constraint")
)

// TransportError wraps a failure of the underlying store or network.
// The original cause is kept for logging and errors.Is/As.
type TransportError struct {
	Err        error
	Op         string
	Collection string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("store %s on %s failed: %v", e.Op, e.Collection, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err as a TransportError
func NewTransportError(op, collection string, err error) error {
	return &TransportError{Op: op, Collection: collection, Err: err}
}

// IsTransport reports whether err is (or wraps) a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
