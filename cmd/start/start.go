package start

import (
	"context"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/reformlab/reformer/api"
	"github.com/reformlab/reformer/internal/driver"
	"github.com/reformlab/reformer/internal/event"
	"github.com/reformlab/reformer/internal/export"
	"github.com/reformlab/reformer/internal/flowsheet"
	"github.com/reformlab/reformer/internal/flowsheet/git"
	"github.com/reformlab/reformer/internal/run"
	"github.com/reformlab/reformer/internal/secret"
	_ "github.com/reformlab/reformer/internal/simulator/equilib"
	"github.com/reformlab/reformer/internal/sweep"
	"github.com/reformlab/reformer/pkg/db"
	"github.com/reformlab/reformer/pkg/env"
	"github.com/reformlab/reformer/pkg/log"
	"github.com/spf13/cobra"
)

const (
	usage   = "start"
	short   = "Start a reformer service instance"
	long    = "This command starts the reformer API, model registry sync, sweep scheduler, and result export"
	example = "reformer start"
)

var (
	// Cmd is the start command.
	Cmd = &cobra.Command{
		Use:        usage,
		Short:      short,
		Long:       long,
		Aliases:    []string{"s"},
		SuggestFor: []string{"serve", "launch", "boot", "up"},
		Example:    example,
		RunE:       start,
	}
)

var cancel context.CancelFunc

func start(cmd *cobra.Command, args []string) error {
	signalChan := make(chan os.Signal, 1)

	go func() {
		for s := range signalChan {
			switch s {
			case syscall.SIGUSR1:
				log.Info("dumping stack traces due to SIGUSR1 signal")
				if profile := pprof.Lookup("goroutine"); profile != nil {
					if err := profile.WriteTo(os.Stdout, 1); err != nil {
						log.Error("write goroutine profile", "error", err)
					}
				}
			case syscall.SIGINT:
				log.Info("gracefully shutting down due to SIGINT signal")
				shutdown()
				os.Exit(0)
			}
		}
	}()

	signal.Notify(signalChan, syscall.SIGUSR1, syscall.SIGINT)

	var errs = make(chan error)
	ctx, cancelFunc := context.WithCancel(context.Background())
	cancel = cancelFunc

	log.Info("migrating database")
	if err := db.Migrate(); err != nil {
		log.Fatal("database migration failure", "error", err)
	}

	vars := env.Variables()
	bus := event.New()
	importer := flowsheet.NewImporter(db.Connection())

	resolver, err := secret.FromEnvironment(vars)
	if err != nil {
		log.Fatal("secret resolver configuration failure", "error", err)
	}

	if len(vars.ModelGitSources) > 0 {
		go func() {
			log.Info("starting model registry git sync",
				"sources", len(vars.ModelGitSources),
				"once", vars.ModelGitOnce,
				"interval", vars.ModelGitInterval)
			err := git.WatchAll(ctx, importer, vars.ModelGitSources, vars.ModelGitInterval, vars.ModelGitOnce, resolver)
			if err != nil && ctx.Err() == nil {
				log.Error("model registry git sync exited", "error", err)
				errs <- err
			}
		}()
	}

	exportCfg := export.FromEnvironment(&vars)
	if exportCfg.Enabled() {
		transport, err := export.BuildTransport(exportCfg)
		if err != nil {
			log.Fatal("export transport configuration failure", "error", err)
		}

		sub := export.NewSubscriber(bus, transport, exportCfg.Transport, db.Connection())
		go func() {
			log.Info("starting result export", "transport", exportCfg.Transport)
			if err := sub.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error("result export exited", "error", err)
				errs <- err
			}
		}()
	}

	if vars.SweepSchedule != "" {
		scheduler, err := sweep.New(
			sweep.Config{Schedule: vars.SweepSchedule},
			bus,
			sweepRun(bus),
		)
		if err != nil {
			log.Fatal("sweep scheduler configuration failure", "error", err)
		}

		go func() {
			log.Info("starting sweep scheduler", "schedule", vars.SweepSchedule)
			if err := scheduler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error("sweep scheduler exited", "error", err)
				errs <- err
			}
		}()
	}

	go func() {
		log.Info("spinning up api")
		errs <- api.Start(ctx, bus)
	}()

	defer shutdown()

	return <-errs
}

// sweepRun builds the pass the scheduler fires: always a resume pass, so
// already-persisted cases are skipped and only gaps get re-solved.
func sweepRun(bus event.Bus) sweep.RunFunc {
	return func(ctx context.Context) (*driver.Summary, error) {
		vars := env.Variables()

		cfg := driver.FromEnvironment(&vars)
		cfg.Input = vars.SweepInput
		cfg.Model = vars.SweepModel
		cfg.Resume = true

		d, err := driver.New(cfg, db.Connection(), bus)
		if err != nil {
			return nil, err
		}
		defer d.Close()

		return d.WithStore(run.Default()).Run(ctx)
	}
}

func shutdown() {
	if cancel != nil {
		cancel()
	}
}
