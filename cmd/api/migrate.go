package main

import (
	"fmt"

	"github.com/geocoder89/bookmarkhub/internal/config"
	"github.com/geocoder89/bookmarkhub/internal/db"
	"github.com/geocoder89/bookmarkhub/internal/observability"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log := observability.NewLogger(cfg.Env)

		if err := db.MigrateUp(cfg.DBURL, nil); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		log.Info("migrations applied")
		return nil
	},
}
