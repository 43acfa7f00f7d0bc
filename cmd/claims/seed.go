package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/claimflow/internal/auth"
	"github.com/Veraticus/claimflow/internal/cli"
	"github.com/Veraticus/claimflow/internal/common"
	"github.com/Veraticus/claimflow/internal/model"
	"github.com/Veraticus/claimflow/internal/service"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo accounts",
		Long: `Create a manager account, a finance account, and a batch of employee
accounts for local development and demos. Existing usernames are left alone,
so the command is safe to run repeatedly.`,
		RunE: runSeed,
	}

	cmd.Flags().Int("employees", 50, "number of employee accounts to create")
	cmd.Flags().String("password", "changeme123", "password for every seeded account")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	employees, _ := cmd.Flags().GetInt("employees")
	password, _ := cmd.Flags().GetString("password")

	if employees < 0 {
		return fmt.Errorf("employees must not be negative")
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	seeds := []model.User{
		{Username: "manager1", FullName: "Demo Manager", Email: "manager1@company.com", Role: model.RoleManager},
		{Username: "finance1", FullName: "Demo Finance", Email: "finance1@company.com", Role: model.RoleFinance},
	}
	for i := 1; i <= employees; i++ {
		seeds = append(seeds, model.User{
			Username: fmt.Sprintf("employee%d", i),
			FullName: fmt.Sprintf("Employee %d", i),
			Email:    fmt.Sprintf("employee%d@company.com", i),
			Role:     model.RoleEmployee,
		})
	}

	bar := progressbar.NewOptions(len(seeds),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Seeding accounts...[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	var created, skipped int
	for i := range seeds {
		user := seeds[i]
		user.PasswordHash = hash

		ok, seedErr := seedUser(ctx, store, &user)
		if seedErr != nil {
			return fmt.Errorf("failed to seed user %s: %w", user.Username, seedErr)
		}
		if ok {
			created++
		} else {
			skipped++
		}
		if barErr := bar.Add(1); barErr != nil {
			slog.Warn("Failed to update progress bar", "error", barErr)
		}
	}

	summary := fmt.Sprintf("  • Created: %d accounts\n", created) +
		fmt.Sprintf("  • Skipped: %d accounts (already exist)\n", skipped) +
		fmt.Sprintf("  • Password for new accounts: %s", password)
	fmt.Println(cli.RenderBox("Seeding Complete", summary))

	return nil
}

// seedUser creates the user unless the username is already taken. It
// reports whether a row was inserted.
func seedUser(ctx context.Context, store service.Storage, user *model.User) (bool, error) {
	_, err := store.GetUserByUsername(ctx, user.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return false, err
	}

	if err := store.CreateUser(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}
