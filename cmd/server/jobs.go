package main

import (
	"fmt"

	"github.com/diewo77/go-billing/internal/jobs"
	"github.com/spf13/cobra"
)

var autoInvoiceCmd = &cobra.Command{
	Use:   "auto-invoice",
	Short: "Generate invoices from pending positions once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(func(a *app) jobs.Job { return jobs.NewAutoInvoiceJob(a.svc) })
	},
}

var autoSendCmd = &cobra.Command{
	Use:   "auto-send",
	Short: "Send created invoices once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(func(a *app) jobs.Job { return jobs.NewAutoSendJob(a.svc) })
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the recurring jobs through asynq",
	Long: `Run the recurring jobs through asynq. The run is registered with the
JOBS_CRON schedule as a unique task, so several workers may share REDIS_ADDR.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Jobs.RedisAddr == "" {
			return fmt.Errorf("worker needs REDIS_ADDR")
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		return jobs.NewWorker(cfg.Jobs, a.scheduler()).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(autoInvoiceCmd, autoSendCmd, workerCmd)
}

func runJob(build func(*app) jobs.Job) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	return build(a).Run(ctx)
}
