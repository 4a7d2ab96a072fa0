package main

import (
	"fmt"

	"github.com/opticnet/fiberplan/internal/phase"
	"github.com/opticnet/fiberplan/internal/project"
	"github.com/spf13/cobra"
)

func newPhaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Phase commands",
	}

	cmd.AddCommand(newPhaseCompleteCmd())
	cmd.AddCommand(newPhaseOverrideCmd())
	return cmd
}

func newPhaseCompleteCmd() *cobra.Command {
	var (
		configPath string
		who        string
	)

	cmd := &cobra.Command{
		Use:   "complete <project-id> <phase>",
		Short: "Mark a phase complete",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, _, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := project.Complete(gormDB, args[0], phase.Name(args[1]), who); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s/%s complete\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	cmd.Flags().StringVar(&who, "by", "", "who completed the phase")
	return cmd
}

func newPhaseOverrideCmd() *cobra.Command {
	var (
		configPath string
		newAnchor  string
	)

	cmd := &cobra.Command{
		Use:   "override <project-id> <phase> <deadline>",
		Short: "Set a phase's deadline directly and recalculate later phases",
		Long: `Sets one phase's deadline to an explicit date and recomputes every phase
after it in the chain. Earlier phases are untouched. If the phase is half of
a mirror pair its partner is pinned to the same date. An optional --survey-date
is persisted but does not displace the explicitly set deadline.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, eng, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			newDeadline, err := parseDate(eng, args[2])
			if err != nil {
				return err
			}
			opts := project.OverrideOpts{
				Phase:    phase.Name(args[1]),
				Deadline: newDeadline,
			}
			if newAnchor != "" {
				anchorDate, err := parseDate(eng, newAnchor)
				if err != nil {
					return err
				}
				opts.NewAnchor = &anchorDate
			}
			p, err := project.OverrideDeadline(gormDB, eng, args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pinned %s/%s to %s\n", p.ID, args[1], newDeadline.Format("2006-01-02"))
			printPhases(cmd, p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	cmd.Flags().StringVar(&newAnchor, "survey-date", "", "simultaneously change the site-survey date, YYYY-MM-DD")
	return cmd
}
