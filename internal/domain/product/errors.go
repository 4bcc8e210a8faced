package product

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductInvalid  = errors.New("stored product is invalid")
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotFoundError is returned when no valid product exists for ID. It always
// matches ErrProductNotFound; Cause is ErrProductInvalid when a row exists
// but no longer passes validation.
type NotFoundError struct {
	ID    uuid.UUID
	Cause error
}

func NewNotFoundError(id uuid.UUID) *NotFoundError {
	return &NotFoundError{ID: id}
}

func NewInvalidProductError(id uuid.UUID) *NotFoundError {
	return &NotFoundError{ID: id, Cause: ErrProductInvalid}
}

func (e *NotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("product with uuid=%s not found: %v", e.ID, e.Cause)
	}
	return fmt.Sprintf("product with uuid=%s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}
