package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohmanhakim/product-aggregator/internal/build"
	"github.com/rohmanhakim/product-aggregator/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the aggregated catalog over HTTP.",
	Long: `serve starts the HTTP API:

  GET /health                  liveness
  GET /api/sources             registered providers
  GET /api/products            featured products of every catalog provider
  GET /api/products/:source    featured products of one provider
  GET /api/search?q=<query>    search across providers and enabled stores
  GET /metrics                 Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		app, err := NewApp(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app.Logger.Info("product aggregator starting",
			zap.String("version", build.FullVersion()),
			zap.String("addr", cfg.ListenAddr()),
		)
		return runServer(ctx, app)
	},
}

func runServer(ctx context.Context, app *App) error {
	srv := server.New(app.Catalog, app.Logger, app.Metrics)
	return srv.Run(ctx, app.Config.ListenAddr())
}
