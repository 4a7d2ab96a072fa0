package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/opticnet/fiberplan/internal/calendar"
	"github.com/opticnet/fiberplan/internal/config"
	"github.com/spf13/cobra"
)

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Business-day calendar commands",
	}

	cmd.AddCommand(newCalendarCheckCmd())
	cmd.AddCommand(newCalendarHolidaysCmd())
	return cmd
}

// calendarFromConfig builds the calendar without opening the database.
func calendarFromConfig(configPath string) (*calendar.Calendar, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return calendar.SouthAfrica(loc), nil
}

func newCalendarCheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check <date>",
		Short: "Report whether a date is a business day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := calendarFromConfig(configPath)
			if err != nil {
				return err
			}
			d, err := time.ParseInLocation("2006-01-02", args[0], cal.Location())
			if err != nil {
				return fmt.Errorf("parse date %q: expected YYYY-MM-DD: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			switch {
			case cal.IsBusinessDay(d):
				fmt.Fprintf(out, "%s (%s) is a business day\n", args[0], d.Weekday())
			case cal.IsHoliday(d):
				fmt.Fprintf(out, "%s (%s) is a public holiday\n", args[0], d.Weekday())
			default:
				fmt.Fprintf(out, "%s (%s) is a weekend\n", args[0], d.Weekday())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	return cmd
}

func newCalendarHolidaysCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "holidays <year>",
		Short: "List all public holidays in a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse year %q: %w", args[0], err)
			}
			cal, err := calendarFromConfig(configPath)
			if err != nil {
				return err
			}
			set := cal.HolidaysForYear(year)
			dates := make([]time.Time, 0, len(set))
			for d := range set {
				dates = append(dates, d)
			}
			sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

			out := cmd.OutOrStdout()
			for _, d := range dates {
				fmt.Fprintf(out, "%s  %s\n", d.Format("2006-01-02"), d.Weekday())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fiberplan.yaml", "path to FiberPlan config file")
	return cmd
}
