package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/precedex/precedex/internal/app"
	"github.com/precedex/precedex/internal/config"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
	httpiface "github.com/precedex/precedex/internal/interfaces/http"
	"github.com/precedex/precedex/internal/interfaces/http/handlers"
	"github.com/precedex/precedex/pkg/errors"
)

func newServeCommand(opts *RootOptions) *cobra.Command {
	var snapshotOnly bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation API",
		Long:  "Loads the corpus (snapshot first, full rebuild as fallback) and serves the\nHTTP API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newCLILogger(cfg)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, log, snapshotOnly)
		},
	}

	cmd.Flags().BoolVar(&snapshotOnly, "snapshot-only", false, "serve from the stored snapshot without a database connection")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, log logging.Logger, snapshotOnly bool) error {
	a, err := app.New(ctx, cfg, log, app.Options{SkipDatabase: snapshotOnly})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := loadEngine(ctx, a, snapshotOnly); err != nil {
		return err
	}

	server := httpiface.NewServer(cfg.Server, httpiface.RouterConfig{
		StrategyHandler: handlers.NewStrategyHandler(a.Engine, log),
		CorpusHandler:   handlers.NewCorpusHandler(a.Engine, log),
		HealthHandler:   handlers.NewHealthHandler(a.Engine),
		Logger:          log,
		Metrics:         a.Metrics,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("received signal", logging.String("signal", sig.String()))
	case <-ctx.Done():
	}
	return server.Stop(context.Background())
}

// loadEngine prefers the persisted snapshot and falls back to a full
// rebuild from the case store.
func loadEngine(ctx context.Context, a *app.App, snapshotOnly bool) error {
	err := a.Engine.LoadFromSnapshot(ctx)
	if err == nil {
		return nil
	}
	if snapshotOnly {
		return err
	}

	a.Log.Info("snapshot unavailable, rebuilding from case store", logging.Err(err))
	if !errors.IsCode(err, errors.ErrCodeSnapshotNotFound) {
		a.Log.Warn("stored snapshot is unusable", logging.Err(err))
	}
	_, err = a.Engine.LoadFromStore(ctx)
	return err
}
