package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pedif/Quokka/internal/app"
	"github.com/pedif/Quokka/internal/config"
)

var repairFinish bool

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Split an open action that crossed midnight, then exit",
	RunE:  runRepair,
}

func init() {
	repairCmd.Flags().BoolVar(&repairFinish, "finish", false, "Also end the open action now")
}

func runRepair(cmd *cobra.Command, args []string) error {
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

	var n int
	if repairFinish {
		n, err = application.Journal().FinishOngoing(ctx)
	} else {
		n, err = application.Journal().RepairOvernight(ctx)
	}
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("nothing to repair")
		return nil
	}
	fmt.Printf("applied %d operations\n", n)
	return nil
}
