// Package model defines the core domain models used throughout the application.
package model

import "time"

// Status is the state-machine variable of a claim.
type Status string

// Claim status constants. A claim starts as StatusPending and only ever
// moves forward: manager decision, then finance decision, then payment.
const (
	StatusPending         Status = "pending"
	StatusApprovedManager Status = "approved_manager"
	StatusRejectedManager Status = "rejected_manager"
	StatusApprovedFinance Status = "approved_finance"
	StatusRejectedFinance Status = "rejected_finance"
	StatusCompleted       Status = "completed"
)

// Valid reports whether s is a known claim status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApprovedManager, StatusRejectedManager,
		StatusApprovedFinance, StatusRejectedFinance, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined out of s.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejectedManager, StatusRejectedFinance, StatusCompleted:
		return true
	}
	return false
}

// Category classifies what a claim was spent on.
type Category string

// Claim category constants.
const (
	CategoryTransport     Category = "transport"
	CategoryAccommodation Category = "accommodation"
	CategoryMeals         Category = "meals"
	CategoryOfficeSupply  Category = "office_supply"
	CategoryOther         Category = "other"
)

// Valid reports whether c is a known claim category.
func (c Category) Valid() bool {
	switch c {
	case CategoryTransport, CategoryAccommodation, CategoryMeals,
		CategoryOfficeSupply, CategoryOther:
		return true
	}
	return false
}

// Action is a workflow action an actor can take on a claim.
type Action string

// Workflow action constants.
const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionMarkPaid Action = "mark_paid"
)

// Claim is a single expense reimbursement request moving through the
// approval chain. Everything set at creation is immutable afterwards; the
// stage fields (manager_*, finance_*) are each populated exactly once by
// the transition engine.
type Claim struct {
	ID               int64      `json:"id" db:"id"`
	EmployeeID       int64      `json:"employee_id" db:"employee_id"`
	EmployeeName     string     `json:"employee_name" db:"employee_name"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	Category         Category   `json:"category" db:"category"`
	Amount           float64    `json:"amount" db:"amount"`
	ReceiptReference string     `json:"receipt_reference" db:"receipt_reference"`
	Status           Status     `json:"status" db:"status"`
	SubmittedDate    time.Time  `json:"submitted_date" db:"submitted_date"`
	ManagerID        *int64     `json:"manager_id,omitempty" db:"manager_id"`
	ManagerNotes     *string    `json:"manager_notes,omitempty" db:"manager_notes"`
	ManagerDecidedAt *time.Time `json:"manager_decided_at,omitempty" db:"manager_decided_at"`
	FinanceID        *int64     `json:"finance_id,omitempty" db:"finance_id"`
	FinanceNotes     *string    `json:"finance_notes,omitempty" db:"finance_notes"`
	FinanceDecidedAt *time.Time `json:"finance_decided_at,omitempty" db:"finance_decided_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`

	// Version guards read-modify-write cycles. The store refuses to save a
	// claim whose stored version has advanced since this copy was read.
	Version int64 `json:"version" db:"version"`
}

// Stats aggregates a claim set from one viewer's perspective.
type Stats struct {
	TotalSubmitted int     `json:"total_submitted"`
	TotalPending   int     `json:"total_pending"`
	TotalApproved  int     `json:"total_approved"`
	TotalRejected  int     `json:"total_rejected"`
	TotalAmount    float64 `json:"total_amount"`
}
