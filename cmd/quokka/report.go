package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pedif/Quokka/internal/app"
	"github.com/pedif/Quokka/internal/config"
	"github.com/pedif/Quokka/internal/domain"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the last week's feelings per day",
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	days, err := application.Journal().Week(ctx)
	if err != nil {
		return err
	}

	loc := application.Journal().Cal.Location()
	for _, day := range days {
		fmt.Printf("%s  most felt: %s  least felt: %s\n",
			time.UnixMilli(day.Start).In(loc).Format("Mon 2006-01-02"),
			day.MostFelt(), day.LeastFelt())
		for _, fd := range day.Durations() {
			if fd.Minutes <= 0 || fd.Feeling == domain.NoInput {
				continue
			}
			fmt.Printf("    %-10s %8s  %3d%%\n",
				fd.Feeling, formatMinutes(fd.Minutes), domain.PercentageOfDay(fd.Minutes))
		}
	}
	return nil
}

// formatMinutes renders a minute total like "1h 30m" or "45m".
func formatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
