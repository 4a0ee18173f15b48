package stamp

import (
	"errors"
	"fmt"
)

// StampError describes a failure while stamping a document
type StampError struct {
	Op    string `json:"operation"`
	Field int    `json:"field"` // index of the offending placement, -1 when not field specific
	Err   error  `json:"error"`
}

func (e *StampError) Error() string {
	if e.Field >= 0 {
		return fmt.Sprintf("stamp %s failed for field %d: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("stamp %s failed: %v", e.Op, e.Err)
}

func (e *StampError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrNoPages = errors.New("document has no pages")
	ErrEmpty   = errors.New("document is empty")
)

func opError(op string, err error) error {
	return &StampError{Op: op, Field: -1, Err: err}
}

func fieldError(op string, index int, err error) error {
	return &StampError{Op: op, Field: index, Err: err}
}
