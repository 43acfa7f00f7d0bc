package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS users (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					username TEXT UNIQUE NOT NULL,
					password_hash TEXT NOT NULL,
					full_name TEXT NOT NULL,
					email TEXT UNIQUE NOT NULL,
					role TEXT NOT NULL CHECK (role IN ('employee', 'manager', 'finance')),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS claims (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					employee_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					employee_name TEXT NOT NULL,
					title TEXT NOT NULL,
					description TEXT NOT NULL,
					category TEXT NOT NULL CHECK (category IN ('transport', 'accommodation', 'meals', 'office_supply', 'other')),
					amount REAL NOT NULL CHECK (amount > 0),
					receipt_reference TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved_manager', 'rejected_manager', 'approved_finance', 'rejected_finance', 'completed')),
					submitted_date DATETIME NOT NULL,
					manager_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
					manager_notes TEXT,
					manager_decided_at DATETIME,
					finance_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
					finance_notes TEXT,
					finance_decided_at DATETIME,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL,
					version INTEGER NOT NULL DEFAULT 1
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add claim and user indexes",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_claims_employee_id ON claims(employee_id)`,
				`CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status)`,
				`CREATE INDEX IF NOT EXISTS idx_claims_submitted_date ON claims(submitted_date)`,
				`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
				`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion returns the schema version the database is currently at.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return current, nil
}

// Migrate brings the database schema up to the expected version, applying
// each pending migration in its own transaction.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		// PRAGMA doesn't support placeholders
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("Applied migration",
			"version", m.Version,
			"description", m.Description)
	}

	var final int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&final); err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("schema version %d does not match expected version %d", final, ExpectedSchemaVersion)
	}

	return nil
}
