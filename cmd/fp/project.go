package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opticnet/fiberplan/internal/models"
	"github.com/opticnet/fiberplan/internal/phase"
	"github.com/opticnet/fiberplan/internal/project"
	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project lifecycle commands",
	}

	cmd.AddCommand(newProjectCreateCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectShowCmd())
	cmd.AddCommand(newProjectSetAnchorCmd())
	cmd.AddCommand(newProjectSetDurationsCmd())
	return cmd
}

func newProjectCreateCmd() *cobra.Command {
	var (
		configPath string
		name       string
		siteCode   string
		anchor     string
		durations  []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project with deadlines computed from the survey date",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, eng, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			anchorDate, err := parseDate(eng, anchor)
			if err != nil {
				return err
			}
			overrides, err := parseDurations(durations)
			if err != nil {
				return err
			}
			p, err := project.Create(gormDB, eng, cfg.PhaseDurations(), project.CreateOpts{
				Name:       name,
				SiteCode:   siteCode,
				AnchorDate: anchorDate,
				Durations:  overrides,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.ID, p.Name)
			printPhases(cmd, p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	cmd.Flags().StringVarP(&name, "name", "n", "", "project name (required)")
	cmd.Flags().StringVar(&siteCode, "site", "", "site code")
	cmd.Flags().StringVarP(&anchor, "survey-date", "s", "", "site-survey date, YYYY-MM-DD (required)")
	cmd.Flags().StringArrayVarP(&durations, "duration", "d", nil, "per-phase override, e.g. build=25 (repeatable)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("survey-date")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, _, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			projects, err := project.List(gormDB)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range projects {
				fmt.Fprintf(out, "%s  %-30s  site=%s  survey=%s\n",
					p.ID, p.Name, p.SiteCode, p.AnchorDate.Format("2006-01-02"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	return cmd
}

func newProjectShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project's phases and deadlines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, _, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			p, err := project.Get(gormDB, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  site=%s  survey=%s\n",
				p.ID, p.Name, p.SiteCode, p.AnchorDate.Format("2006-01-02"))
			printPhases(cmd, p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	return cmd
}

func newProjectSetAnchorCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "set-anchor <project-id> <date>",
		Short: "Change the site-survey date and recalculate all deadlines",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, eng, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			anchorDate, err := parseDate(eng, args[1])
			if err != nil {
				return err
			}
			p, err := project.SetAnchor(gormDB, eng, args[0], anchorDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recalculated %s from survey date %s\n",
				p.ID, p.AnchorDate.Format("2006-01-02"))
			printPhases(cmd, p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	return cmd
}

func newProjectSetDurationsCmd() *cobra.Command {
	var (
		configPath string
		durations  []string
	)

	cmd := &cobra.Command{
		Use:   "set-durations <project-id>",
		Short: "Change phase durations and recalculate all deadlines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, eng, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			updates, err := parseDurations(durations)
			if err != nil {
				return err
			}
			if len(updates) == 0 {
				return fmt.Errorf("at least one --duration is required")
			}
			p, err := project.SetDurations(gormDB, eng, args[0], updates)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recalculated %s\n", p.ID)
			printPhases(cmd, p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	cmd.Flags().StringArrayVarP(&durations, "duration", "d", nil, "per-phase change, e.g. build=25 (repeatable)")
	return cmd
}

// parseDurations parses name=days pairs into a duration table.
func parseDurations(pairs []string) (phase.Durations, error) {
	d := make(phase.Durations, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid duration %q: expected name=days", pair)
		}
		days, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", pair, err)
		}
		d[phase.Name(name)] = days
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// printPhases renders a project's phase table.
func printPhases(cmd *cobra.Command, p *models.Project) {
	out := cmd.OutOrStdout()
	for _, ph := range p.Phases {
		deadline := "skipped"
		if ph.Deadline != nil {
			deadline = ph.Deadline.Format("2006-01-02")
		}
		done := " "
		if ph.IsComplete {
			done = "✓"
		}
		fmt.Fprintf(out, "  [%s] %-13s %3dd  %s\n", done, ph.Name, ph.AllowedDays, deadline)
	}
}
