package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/claimflow/internal/api"
	"github.com/Veraticus/claimflow/internal/attachment"
	"github.com/Veraticus/claimflow/internal/config"
	"github.com/Veraticus/claimflow/internal/workflow"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the claim API server",
		Long: `Start the HTTP API that employees, managers, and finance staff use
to submit and settle expense claims.

The server runs until interrupted and shuts down gracefully.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address (overrides server.addr)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is not set; configure it or export CLAIMFLOW_JWT_SECRET")
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	uploads, err := attachment.NewStore(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize upload store: %w", err)
	}

	server := api.NewServer(workflow.New(store), store, uploads, cfg.JWT.Secret, cfg.JWT.TTL)

	slog.Info("Starting claim API server",
		"addr", cfg.Server.Addr,
		"database", cfg.Database.Path,
		"uploads", cfg.Uploads.Dir)

	return server.Run(ctx, cfg.Server.Addr)
}
