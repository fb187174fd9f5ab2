package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/finance/billings/service"
	"schoolku_backend/internals/features/finance/billings/store"
	"schoolku_backend/internals/helpers/dbtime"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "feesctl",
	Short: "Operator tools for the school fee ledger",
	Long: `feesctl runs maintenance and reporting tasks against the fee ledger database.

Connection settings come from the same environment as the API server
(DATABASE_URL or DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME, APP_TIMEZONE).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	log := configs.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// openDB connects with the package-level DSN and returns a closer.
func openDB() (*gorm.DB, func(), error) {
	db, err := database.Open(database.DSN())
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}

func openService() (*service.Service, func(), error) {
	db, closeFn, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	dbtime.DefaultLocation = configs.Location
	svc := service.New(store.NewPostgresStore(db),
		service.WithLocation(configs.Location),
		service.WithLogger(configs.WithComponent("feesctl")),
	)
	return svc, closeFn, nil
}
