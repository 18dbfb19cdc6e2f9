package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds shared by the services. Handlers map them to HTTP status codes
// with errors.Is; wrapped errors keep the detail for logs.
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrRetryLimitExceeded = errors.New("retry limit exceeded")
	ErrNoTargets          = errors.New("no target users")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrStoreFailure       = errors.New("store failure")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrProtectedAccount   = errors.New("account is protected")
)

// storeError classifies a persistence error: a missing row becomes
// ErrNotFound, anything else ErrStoreFailure.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreFailure, err)
}

// invalid wraps a validation failure
func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}
