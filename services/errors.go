package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrStoreClosed       = errors.New("store is closed")
	ErrAlreadyInCart     = errors.New("item already in cart")
	ErrNotOrderable      = errors.New("only optional dishes can be ordered")
	ErrSubmitFailed      = errors.New("order submission failed")
	ErrInvalidWindow     = errors.New("invalid operating window")
	ErrInvalidDish       = errors.New("invalid dish")
	ErrNoSession         = errors.New("no active session")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrEmailRequired     = errors.New("email required")
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
	ErrWeakPassword      = errors.New("password too short")
)

// ValidationError reports the first order form check that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ThrottleError is returned by SignIn while a login cooldown is running.
type ThrottleError struct {
	WaitSeconds int
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("login throttled for %ds", e.WaitSeconds)
}
