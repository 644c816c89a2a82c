package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/daybook/internal/calendar"
	"github.com/username/daybook/internal/daemon"
	"github.com/username/daybook/internal/ics"
	"github.com/username/daybook/internal/pager"
)

func agendaCmd() *cobra.Command {
	var fromStr string
	var days int

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "List events day by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			from, err := a.parseDay(fromStr)
			if err != nil {
				return err
			}

			printAgenda(out, a.store.Days(from, days, a.dateCtx), a.dateCtx)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "First day (YYYY-MM-DD, default today)")
	cmd.Flags().IntVarP(&days, "days", "n", 7, "Number of days")

	return cmd
}

func pageCmd() *cobra.Command {
	var fromStr string
	var unit string
	var jump int

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Show the page window around a day or month",
		Long:  "Show the previous, current and next pages (pager.size pages in total) around a day or month, optionally jumped forward or back",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			from, err := a.parseDay(fromStr)
			if err != nil {
				return err
			}

			switch unit {
			case "day":
				p, err := pager.NewDayPager(from, a.cfg.Pager.Size, a.dateCtx, logger)
				if err != nil {
					return err
				}
				p.Jump(jump)
				printDayPages(out, p, a.store)
			case "month":
				p, err := pager.NewMonthPager(from, a.cfg.Pager.Size, a.dateCtx, logger)
				if err != nil {
					return err
				}
				p.Jump(jump)
				printMonthPages(out, p, a.store)
			default:
				return fmt.Errorf("unknown unit %q, want day or month", unit)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "Anchor day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&unit, "unit", "day", "Page unit: day or month")
	cmd.Flags().IntVar(&jump, "jump", 0, "Pages to move away from the anchor")

	return cmd
}

func monthsCmd() *cobra.Command {
	var fromStr string
	var count int

	cmd := &cobra.Command{
		Use:   "months",
		Short: "Summarize events per month",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			from, err := a.parseDay(fromStr)
			if err != nil {
				return err
			}

			for _, m := range a.store.Months(from, count, a.dateCtx) {
				printMonthSummary(out, m, a.store.MonthEntries(m))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "Day inside the first month (default today)")
	cmd.Flags().IntVarP(&count, "count", "n", 3, "Number of months")

	return cmd
}

func gridCmd() *cobra.Command {
	var monthStr string

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print a month grid with event counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}

			month := calendar.NewMonth(time.Now(), a.dateCtx)
			if monthStr != "" {
				t, err := time.ParseInLocation("2006-01", monthStr, a.dateCtx.Location)
				if err != nil {
					return fmt.Errorf("invalid month %q: %w", monthStr, err)
				}
				month, err = calendar.MonthOf(t.Year(), t.Month(), a.dateCtx)
				if err != nil {
					return err
				}
			}

			printGrid(out, month, a.store.MonthEntries(month))
			return nil
		},
	}

	cmd.Flags().StringVar(&monthStr, "month", "", "Month (YYYY-MM, default current)")

	return cmd
}

func addCmd() *cobra.Command {
	var title, description, startStr, endStr string
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event to the calendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if useSample {
				return fmt.Errorf("add writes to source.ics_file and cannot be combined with --sample")
			}
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}

			start, err := a.parseDay(startStr)
			if err != nil {
				return err
			}
			end := start.Add(duration)
			if endStr != "" {
				if end, err = a.parseDay(endStr); err != nil {
					return err
				}
			}

			desc := mo.None[string]()
			if description != "" {
				desc = mo.Some(description)
			}

			entry, err := a.store.Add(title, desc, start, end)
			if err != nil {
				return err
			}
			if err := a.source.Append(entry, time.Now()); err != nil {
				return err
			}

			fmt.Fprintf(out, "Added %s  %s\n", entry.ID, formatEntry(entry, a.dateCtx))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Event title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Event description")
	cmd.Flags().StringVar(&startStr, "start", "", "Start (YYYY-MM-DDTHH:MM)")
	cmd.Flags().StringVar(&endStr, "end", "", "End (YYYY-MM-DDTHH:MM), overrides --duration")
	cmd.Flags().DurationVar(&duration, "duration", time.Hour, "Event length")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the loaded events as a flat .ics file",
		Long:  "Write every loaded event as a single VEVENT. Recurring series are written as their expanded instances inside source.window_days.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}

			w := out
			if output != "" && output != "-" {
				if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
					return fmt.Errorf("failed to create output path: %w", err)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			entries := a.store.Entries()
			if err := ics.Export(w, entries, time.Now()); err != nil {
				return err
			}
			logger.Info("Exported entries", zap.Int("count", len(entries)), zap.String("output", output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")

	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the calendar on a schedule and log today's agenda",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}

			var src daemon.Source = a.source
			if useSample {
				src = sampleSource{dateCtx: a.dateCtx}
			}

			d, err := daemon.New(a.store, src, a.cfg.Daemon.GetSchedule(), a.dateCtx, logger)
			if err != nil {
				return err
			}
			return d.Start()
		},
	}
}
