package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Analyze uploaded résumés from the upload queue",
	Long: "Consume resume.uploaded events from RabbitMQ, analyze each stored résumé " +
		"against its requested skills (or the active job requirements) and save the result.",
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 4, "Events processed in parallel")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	if cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL environment variable (or amqp_url config) is required")
	}
	if err := requireDatabase(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := openDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.mq.Consumer().Run(ctx, workerConcurrency, d.service.HandleEvent)
}
