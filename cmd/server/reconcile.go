package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/api"
)

var reconcileUser string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute derived profile scores once and exit",
	Long: `Recomputes calibration, calm score and views-changed for every profile,
or for a single user with --user. Exits non-zero if any profile failed.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileUser, "user", "", "reconcile only this user ID")
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	var owner uuid.UUID
	if reconcileUser != "" {
		id, err := uuid.Parse(reconcileUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		owner = id
	}

	ctx := cmd.Context()
	logger, pool, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer pool.Close()

	gen, emb := api.NewClients(logger)
	svcs := api.NewServices(pool, nil, gen, emb, logger)

	if owner != uuid.Nil {
		if err := svcs.Reconciler.ReconcileOwner(ctx, owner); err != nil {
			return fmt.Errorf("reconcile %s: %w", owner, err)
		}
		logger.Info("reconciled profile", zap.String("user_id", owner.String()))
		return nil
	}
	return svcs.Reconciler.RunOnce(ctx)
}
