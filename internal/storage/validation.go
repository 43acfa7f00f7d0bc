package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/claimflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidClaim = errors.New("invalid claim")
	ErrInvalidUser  = errors.New("invalid user")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateClaim validates a claim before it touches the database.
func validateClaim(claim *model.Claim) error {
	if claim == nil {
		return fmt.Errorf("%w: claim", ErrNilParameter)
	}
	if claim.EmployeeID <= 0 {
		return fmt.Errorf("%w: missing employee ID", ErrInvalidClaim)
	}
	if strings.TrimSpace(claim.EmployeeName) == "" {
		return fmt.Errorf("%w: missing employee name", ErrInvalidClaim)
	}
	if strings.TrimSpace(claim.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidClaim)
	}
	if !claim.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidClaim, claim.Category)
	}
	if claim.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidClaim)
	}
	if strings.TrimSpace(claim.ReceiptReference) == "" {
		return fmt.Errorf("%w: missing receipt reference", ErrInvalidClaim)
	}
	if !claim.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidClaim, claim.Status)
	}
	return nil
}

// validateUser validates a user record.
func validateUser(user *model.User) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(user.Username) == "" {
		return fmt.Errorf("%w: missing username", ErrInvalidUser)
	}
	if user.PasswordHash == "" {
		return fmt.Errorf("%w: missing password hash", ErrInvalidUser)
	}
	if strings.TrimSpace(user.FullName) == "" {
		return fmt.Errorf("%w: missing full name", ErrInvalidUser)
	}
	if !user.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidUser, user.Role)
	}
	return nil
}
