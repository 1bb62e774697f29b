package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrUnauthorized      = errors.New("unauthorized")       // 401
	ErrInsufficientStock = errors.New("insufficient stock") // 400
	ErrAlreadyReviewed   = errors.New("already reviewed")   // 400
)

// DuplicateOrderError is returned when an idempotency key was already used.
type DuplicateOrderError struct {
	OrderID uuid.UUID
}

func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf("order %s already created with this idempotency key", e.OrderID)
}

func (e *DuplicateOrderError) Unwrap() error { return ErrConflict }

// Caller is the authenticated user a request acts for.
type Caller struct {
	ID   uuid.UUID
	Role string
	Name string
}

func (c Caller) IsAdmin() bool { return c.Role == "admin" }

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s not found", ErrNotFound, what)
	}
	return err
}
