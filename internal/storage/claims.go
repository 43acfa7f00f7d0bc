package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/claimflow/internal/common"
	"github.com/Veraticus/claimflow/internal/model"
	"github.com/Veraticus/claimflow/internal/service"
)

const claimColumns = `id, employee_id, employee_name, title, description, category, amount,
	receipt_reference, status, submitted_date, manager_id, manager_notes, manager_decided_at,
	finance_id, finance_notes, finance_decided_at, created_at, updated_at, version`

// CreateClaim persists a new claim and fills in its assigned id and
// timestamps. The claim is stored exactly as submitted; the store stamps
// submitted_date, created_at, updated_at and the initial version.
func (s *SQLiteStorage) CreateClaim(ctx context.Context, claim *model.Claim) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClaim(claim); err != nil {
		return err
	}

	now := time.Now().UTC()
	claim.SubmittedDate = now
	claim.CreatedAt = now
	claim.UpdatedAt = now
	claim.Version = 1

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (
			employee_id, employee_name, title, description, category, amount,
			receipt_reference, status, submitted_date, created_at, updated_at, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		claim.EmployeeID,
		claim.EmployeeName,
		claim.Title,
		claim.Description,
		claim.Category,
		claim.Amount,
		claim.ReceiptReference,
		claim.Status,
		claim.SubmittedDate,
		claim.CreatedAt,
		claim.UpdatedAt,
		claim.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert claim: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get claim id: %w", err)
	}
	claim.ID = id

	return nil
}

// GetClaim fetches a single claim by id.
func (s *SQLiteStorage) GetClaim(ctx context.Context, id int64) (*model.Claim, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = ?`, id)

	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("claim %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get claim %d: %w", id, err)
	}
	return claim, nil
}

// ListClaims returns claims matching the filter, newest submissions first.
func (s *SQLiteStorage) ListClaims(ctx context.Context, filter service.ClaimFilter) ([]model.Claim, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + claimColumns + ` FROM claims`
	var conditions []string
	var args []any

	if filter.EmployeeID != nil {
		conditions = append(conditions, "employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, *filter.Category)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY submitted_date DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var claims []model.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, *claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claims: %w", err)
	}

	return claims, nil
}

// UpdateClaim replaces the stored claim, guarded by its version. The update
// only lands if the stored version still matches the one this copy was read
// at; otherwise the caller lost a race and gets common.ErrConflict. On
// success the claim's version and updated_at reflect the stored row.
func (s *SQLiteStorage) UpdateClaim(ctx context.Context, claim *model.Claim) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClaim(claim); err != nil {
		return err
	}

	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE claims SET
			status = ?,
			manager_id = ?,
			manager_notes = ?,
			manager_decided_at = ?,
			finance_id = ?,
			finance_notes = ?,
			finance_decided_at = ?,
			updated_at = ?,
			version = version + 1
		WHERE id = ? AND version = ?
	`,
		claim.Status,
		claim.ManagerID,
		claim.ManagerNotes,
		claim.ManagerDecidedAt,
		claim.FinanceID,
		claim.FinanceNotes,
		claim.FinanceDecidedAt,
		now,
		claim.ID,
		claim.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update claim %d: %w", claim.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		// Either the row is gone or its version advanced under us.
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM claims WHERE id = ?`, claim.ID).Scan(&exists)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("claim %d: %w", claim.ID, common.ErrNotFound)
		case err != nil:
			return fmt.Errorf("failed to check claim %d: %w", claim.ID, err)
		default:
			return fmt.Errorf("claim %d was modified concurrently: %w", claim.ID, common.ErrConflict)
		}
	}

	claim.Version++
	claim.UpdatedAt = now

	return nil
}

// DeleteClaim removes a claim permanently. Authorization (owner, still
// pending) is the caller's responsibility.
func (s *SQLiteStorage) DeleteClaim(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM claims WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete claim %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("claim %d: %w", id, common.ErrNotFound)
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanClaim(row scanner) (*model.Claim, error) {
	var claim model.Claim
	err := row.Scan(
		&claim.ID,
		&claim.EmployeeID,
		&claim.EmployeeName,
		&claim.Title,
		&claim.Description,
		&claim.Category,
		&claim.Amount,
		&claim.ReceiptReference,
		&claim.Status,
		&claim.SubmittedDate,
		&claim.ManagerID,
		&claim.ManagerNotes,
		&claim.ManagerDecidedAt,
		&claim.FinanceID,
		&claim.FinanceNotes,
		&claim.FinanceDecidedAt,
		&claim.CreatedAt,
		&claim.UpdatedAt,
		&claim.Version,
	)
	if err != nil {
		return nil, err
	}
	return &claim, nil
}
