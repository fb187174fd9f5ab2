package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"schoolku_backend/internals/configs"
	database "schoolku_backend/internals/databases"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the fee ledger schema",
	Long: `Creates the fee ledger tables, the partial unique indexes and CHECK constraints,
and seeds the document number counters from existing invoice and receipt numbers.
Safe to run repeatedly.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Duration("timeout", 2*time.Minute, "Abort the migration after this long")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := configs.WithComponent("migrate")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	db, closeFn, err := openDB()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	start := time.Now()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info().Dur("took", time.Since(start)).Msg("migration complete")
	return nil
}
