package main

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/opticnet/fiberplan/internal/dashboard"
	"github.com/opticnet/fiberplan/internal/notify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		noSweep    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the status API and the scheduled deadline sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, noSweep)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	cmd.Flags().BoolVar(&noSweep, "no-sweep", false, "disable the scheduled deadline sweep")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, noSweep bool) error {
	cfg, gormDB, eng, err := openFromConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !noSweep {
		var notifier notify.Notifier
		if cfg.Notify.SlackToken != "" && cfg.Notify.SlackChannel != "" {
			slack, err := notify.NewSlack(notify.SlackOpts{
				Token:     cfg.Notify.SlackToken,
				ChannelID: cfg.Notify.SlackChannel,
			})
			if err != nil {
				return err
			}
			notifier = slack
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Slack not configured; sweep results will only be logged")
		}

		c := cron.New()
		if _, err := c.AddFunc(cfg.Notify.Cron, func() {
			alerts, err := notify.Sweep(gormDB, eng, notifier)
			if err != nil {
				log.Printf("sweep: %v", err)
				return
			}
			log.Printf("sweep: %d phase(s) need attention", len(alerts))
		}); err != nil {
			return fmt.Errorf("schedule sweep %q: %w", cfg.Notify.Cron, err)
		}
		c.Start()
		defer c.Stop()
		fmt.Fprintf(cmd.OutOrStdout(), "Deadline sweep scheduled: %s\n", cfg.Notify.Cron)
	}

	return dashboard.Start(ctx, dashboard.StartOpts{
		DB:     gormDB,
		Engine: eng,
		Port:   cfg.Dashboard.Port,
		Out:    cmd.OutOrStdout(),
	})
}
