package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrNotFound            = errors.New("not_found")
)

// UnsupportedProducerError is returned when no handler is registered for a
// producer code.
type UnsupportedProducerError struct {
	Code string
}

func (e *UnsupportedProducerError) Error() string {
	return fmt.Sprintf("unsupported producer: %q", e.Code)
}

// BusinessRule marks the error as caused by input data.
func (e *UnsupportedProducerError) BusinessRule() bool { return true }
