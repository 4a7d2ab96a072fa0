package main

import (
	"fmt"
	"time"

	"github.com/opticnet/fiberplan/internal/calendar"
	"github.com/opticnet/fiberplan/internal/config"
	"github.com/opticnet/fiberplan/internal/db"
	"github.com/opticnet/fiberplan/internal/deadline"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the FiberPlan database",
		Long:  "Connects to the configured database and migrates all tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded config from %s (%s)\n", configPath, cfg.Database.Driver)

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	fmt.Fprintln(out, "FiberPlan database initialized successfully.")
	return nil
}

// openFromConfig loads config, opens the database, and builds the deadline
// engine for the configured time zone.
func openFromConfig(configPath string) (*config.Config, *gorm.DB, *deadline.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return cfg, gormDB, deadline.New(calendar.SouthAfrica(loc)), nil
}

// parseDate parses a YYYY-MM-DD argument in the engine's time zone.
func parseDate(eng *deadline.Engine, s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, eng.Calendar().Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}
