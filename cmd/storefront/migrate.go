package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/nlstn/go-storefront/internal/config"
	"github.com/nlstn/go-storefront/internal/repository"
)

var migrateFlags = map[string]cobraflags.Flag{
	configFlag: configFlagDef(),
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE:  runMigrate,
	}
	cobraflags.RegisterMap(cmd, migrateFlags)
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(migrateFlags[configFlag].GetString(), nil)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	opts := cfg.Database.RepositoryOptions()
	opts.AutoMigrate = false
	db, err := repository.Default(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := repository.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if err := repository.Migrate(cmd.Context(), db); err != nil {
		return err
	}
	logger.Info("database migrated", "driver", cfg.Database.Driver)
	fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
	return nil
}
