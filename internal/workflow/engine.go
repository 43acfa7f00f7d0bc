package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/claimflow/internal/attachment"
	"github.com/Veraticus/claimflow/internal/common"
	"github.com/Veraticus/claimflow/internal/model"
	"github.com/Veraticus/claimflow/internal/service"
)

// Engine owns every mutation of claim state. All other components treat the
// claim set as read-only.
type Engine struct {
	store service.Storage
	now   func() time.Time
}

// New creates a workflow engine backed by the given store.
func New(store service.Storage) *Engine {
	return &Engine{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateClaimInput carries everything an employee submits with a new claim.
type CreateClaimInput struct {
	EmployeeID       int64
	EmployeeName     string
	Title            string
	Description      string
	Category         model.Category
	Amount           float64
	ReceiptReference string
}

// CreateClaim validates the submission and persists a new pending claim.
// Nothing is persisted when validation fails.
func (e *Engine) CreateClaim(ctx context.Context, in CreateClaimInput) (*model.Claim, error) {
	if in.EmployeeID <= 0 {
		return nil, fmt.Errorf("%w: employee id is required", common.ErrValidation)
	}
	if strings.TrimSpace(in.EmployeeName) == "" {
		return nil, fmt.Errorf("%w: employee name is required", common.ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if !in.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", common.ErrValidation, in.Category)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrValidation)
	}
	if err := attachment.ValidateReference(in.ReceiptReference); err != nil {
		return nil, err
	}

	claim := &model.Claim{
		EmployeeID:       in.EmployeeID,
		EmployeeName:     strings.TrimSpace(in.EmployeeName),
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Category:         in.Category,
		Amount:           in.Amount,
		ReceiptReference: in.ReceiptReference,
		Status:           model.StatusPending,
	}

	if err := e.store.CreateClaim(ctx, claim); err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}
	return claim, nil
}

// GetClaim fetches a claim, enforcing that employees only see their own.
func (e *Engine) GetClaim(ctx context.Context, id int64, role model.Role, viewerID int64) (*model.Claim, error) {
	claim, err := e.store.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == model.RoleEmployee && claim.EmployeeID != viewerID {
		return nil, fmt.Errorf("claim %d does not belong to employee %d: %w", id, viewerID, common.ErrForbidden)
	}
	return claim, nil
}

// ListClaims returns claims visible to the viewer. Employees are scoped to
// their own claims regardless of what the filter asks for; managers and
// finance see the full set.
func (e *Engine) ListClaims(ctx context.Context, role model.Role, viewerID int64, filter service.ClaimFilter) ([]model.Claim, error) {
	if role == model.RoleEmployee {
		filter.EmployeeID = &viewerID
	}
	return e.store.ListClaims(ctx, filter)
}

// DeleteClaim hard-removes a claim. Only the owning employee may delete,
// and only while the claim is still pending; a claim that has entered the
// approval chain is retained for audit.
func (e *Engine) DeleteClaim(ctx context.Context, id int64, role model.Role, viewerID int64) error {
	claim, err := e.store.GetClaim(ctx, id)
	if err != nil {
		return err
	}
	if role != model.RoleEmployee || claim.EmployeeID != viewerID {
		return fmt.Errorf("claim %d can only be deleted by its owner: %w", id, common.ErrForbidden)
	}
	if claim.Status != model.StatusPending {
		return fmt.Errorf("claim %d is %s, only pending claims can be deleted: %w",
			id, claim.Status, common.ErrIllegalTransition)
	}
	return e.store.DeleteClaim(ctx, id)
}

// Transition validates and applies a single state transition. It is the one
// place claim state changes.
//
// A lost optimistic-concurrency race surfaces as common.ErrConflict,
// propagated unchanged: the caller re-fetches and re-decides rather than
// the engine retrying blindly.
func (e *Engine) Transition(ctx context.Context, id int64, role model.Role, actorID int64, action model.Action, notes string) (*model.Claim, error) {
	claim, err := e.store.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	ed, ok := findEdge(claim.Status, action)
	if !ok {
		return nil, fmt.Errorf("action %q is not valid for claim %d in status %q: %w",
			action, id, claim.Status, common.ErrIllegalTransition)
	}
	if role != ed.role {
		return nil, fmt.Errorf("action %q on claim %d requires role %q: %w",
			action, id, ed.role, common.ErrForbidden)
	}
	// A rejection without a reason is not permitted.
	if action == model.ActionReject && strings.TrimSpace(notes) == "" {
		return nil, fmt.Errorf("%w: rejection requires notes", common.ErrValidation)
	}

	now := e.now()
	claim.Status = ed.to

	// Stamp the stage fields once, when the decision is made. Marking an
	// approved claim paid keeps the stamps from the finance approval.
	switch {
	case ed.role == model.RoleManager:
		claim.ManagerID = &actorID
		claim.ManagerDecidedAt = &now
		if n := strings.TrimSpace(notes); n != "" {
			claim.ManagerNotes = &n
		}
	case ed.role == model.RoleFinance && action != model.ActionMarkPaid:
		claim.FinanceID = &actorID
		claim.FinanceDecidedAt = &now
		if n := strings.TrimSpace(notes); n != "" {
			claim.FinanceNotes = &n
		}
	}

	if err := e.store.UpdateClaim(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// Stats computes aggregate statistics for the viewer over the current claim
// set. It is a plain fold over a snapshot read: concurrent transitions may
// land immediately after, which is an accepted staleness window.
func (e *Engine) Stats(ctx context.Context, role model.Role, viewerID int64) (*model.Stats, error) {
	var filter service.ClaimFilter
	if role == model.RoleEmployee {
		filter.EmployeeID = &viewerID
	}
	claims, err := e.store.ListClaims(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(role, viewerID, claims)
	return &stats, nil
}
