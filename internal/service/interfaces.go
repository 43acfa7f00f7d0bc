// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/claimflow/internal/model"
)

// ClaimFilter defines filtering options for claim queries. Nil fields are
// ignored.
type ClaimFilter struct {
	EmployeeID *int64
	Status     *model.Status
	Category   *model.Category
	Limit      int
	Offset     int
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Claim operations
	CreateClaim(ctx context.Context, claim *model.Claim) error
	GetClaim(ctx context.Context, id int64) (*model.Claim, error)
	ListClaims(ctx context.Context, filter ClaimFilter) ([]model.Claim, error)
	// UpdateClaim is a full replace guarded by the claim's version: it fails
	// with common.ErrConflict if the stored row advanced since the read.
	UpdateClaim(ctx context.Context, claim *model.Claim) error
	DeleteClaim(ctx context.Context, id int64) error

	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
