package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claimflow/internal/cli"
	"github.com/Veraticus/claimflow/internal/model"
	"github.com/Veraticus/claimflow/internal/workflow"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show claim statistics",
		Long:  `Print aggregate claim counts and the total approved amount across all employees.`,
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	// The CLI is an operator surface, so use the unscoped finance view.
	stats, err := workflow.New(store).Stats(ctx, model.RoleFinance, 0)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	content := fmt.Sprintf("%s%d\n", cli.LabelStyle.Render("Submitted"), stats.TotalSubmitted) +
		fmt.Sprintf("%s%d\n", cli.LabelStyle.Render("In review"), stats.TotalPending) +
		fmt.Sprintf("%s%d\n", cli.LabelStyle.Render("Approved"), stats.TotalApproved) +
		fmt.Sprintf("%s%d\n", cli.LabelStyle.Render("Rejected"), stats.TotalRejected) +
		fmt.Sprintf("%s%.2f", cli.LabelStyle.Render("Approved amount"), stats.TotalAmount)

	fmt.Println(cli.RenderBox(cli.ChartIcon+" Claim Statistics", content))

	return nil
}
