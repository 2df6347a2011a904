package batch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reformlab/reformer/internal/driver"
	"github.com/reformlab/reformer/internal/event"
	"github.com/reformlab/reformer/internal/export"
	"github.com/reformlab/reformer/internal/run"
	_ "github.com/reformlab/reformer/internal/simulator/equilib"
	"github.com/reformlab/reformer/pkg/db"
	"github.com/reformlab/reformer/pkg/env"
	"github.com/reformlab/reformer/pkg/log"
	"github.com/spf13/cobra"
)

const (
	usage   = "batch"
	short   = "Run one batch pass over a case matrix"
	long    = "This command drives the flowsheet engine over every case in the matrix CSV, persisting results and a checkpoint as it goes"
	example = "reformer batch --input matrix.csv --resume"
)

// Cmd is the batch command.
var Cmd = &cobra.Command{
	Use:        usage,
	Short:      short,
	Long:       long,
	Aliases:    []string{"b"},
	SuggestFor: []string{"run", "drive", "sweep"},
	Example:    example,
	RunE:       batch,
}

var flags struct {
	input       string
	model       string
	checkpoint  string
	cacheDir    string
	batchSize   int
	maxFailures int
	workers     int
	limit       int
	timeout     time.Duration
	pause       time.Duration
	resume      bool
	dryRun      bool
}

func init() {
	Cmd.Flags().StringVarP(&flags.input, "input", "i", "", "path to the case matrix CSV (required)")
	Cmd.Flags().StringVarP(&flags.model, "model", "m", "", "flowsheet model: registry name or file path (default built-in)")
	Cmd.Flags().StringVar(&flags.checkpoint, "checkpoint", "", "checkpoint file path (default <input>.checkpoint.json)")
	Cmd.Flags().StringVar(&flags.cacheDir, "cache-dir", "", "result cache directory")
	Cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "cases per engine session before an interval restart")
	Cmd.Flags().IntVar(&flags.maxFailures, "max-failures", 0, "consecutive failures before an engine restart")
	Cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "parallel engine sessions")
	Cmd.Flags().IntVar(&flags.limit, "limit", 0, "run at most N cases (0 means all)")
	Cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-case solve timeout")
	Cmd.Flags().DurationVar(&flags.pause, "pause", 0, "delay inserted at every interval restart")
	Cmd.Flags().BoolVar(&flags.resume, "resume", false, "skip cases already completed per checkpoint and database")
	Cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "plan the pass without solving anything")

	cobra.CheckErr(Cmd.MarkFlagRequired("input"))
}

func batch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("migrating database")
	if err := db.Migrate(); err != nil {
		return err
	}

	vars := env.Variables()
	cfg := configure(&vars)
	bus := event.New()

	if exportCfg := export.FromEnvironment(&vars); exportCfg.Enabled() && !cfg.DryRun {
		transport, err := export.BuildTransport(exportCfg)
		if err != nil {
			return err
		}

		sub := export.NewSubscriber(bus, transport, exportCfg.Transport, db.Connection())
		go func() {
			if err := sub.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error("result export exited", "error", err)
			}
		}()
	}

	d, err := driver.New(cfg, db.Connection(), bus)
	if err != nil {
		return err
	}
	defer d.Close()

	summary, err := d.WithStore(run.Default()).Run(ctx)
	if err != nil {
		return err
	}

	report(cmd, summary)

	if !summary.Succeeded() {
		os.Exit(1)
	}
	return nil
}

// configure layers the command flags over the environment defaults.
func configure(vars *env.Environment) driver.Config {
	cfg := driver.FromEnvironment(vars)

	cfg.Input = flags.input
	cfg.Model = flags.model
	cfg.CheckpointPath = flags.checkpoint
	cfg.Resume = flags.resume
	cfg.Limit = flags.limit
	cfg.DryRun = flags.dryRun

	if flags.batchSize > 0 {
		cfg.BatchSize = flags.batchSize
	}
	if flags.maxFailures > 0 {
		cfg.MaxFailures = flags.maxFailures
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.timeout > 0 {
		cfg.SolveTimeout = flags.timeout
	}
	if flags.pause > 0 {
		cfg.Pause = flags.pause
	}
	if flags.cacheDir != "" {
		cfg.CacheDir = flags.cacheDir
	}

	return cfg
}

func report(cmd *cobra.Command, s *driver.Summary) {
	out := cmd.OutOrStdout()

	if s.DryRun {
		fmt.Fprintf(out, "dry run: %d cases planned, %d already done\n", s.Total-s.Skipped, s.Skipped)
		return
	}

	fmt.Fprintf(out, "batch %s: %d/%d completed (%d converged, %d warning, %d failed, %d skipped)\n",
		s.BatchID, s.Completed, s.Total, s.Converged, s.Warning, s.Failed, s.Skipped)
}
