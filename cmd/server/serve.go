package main

import (
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API",
	Long: `Run the JSON API. Unless --no-jobs is given or REDIS_ADDR is set, the
recurring jobs run in-process every JOBS_INTERVAL.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("no-jobs", false, "Do not run the recurring jobs in-process")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")
	noJobs, _ := cmd.Flags().GetBool("no-jobs")

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	switch {
	case noJobs:
	case cfg.Jobs.RedisAddr != "":
		log.Info().Msg("REDIS_ADDR set, jobs are left to the worker")
	default:
		go a.scheduler().Start(ctx)
	}

	return server.Run(ctx, cfg.Server, server.New(a.db, a.svc))
}
