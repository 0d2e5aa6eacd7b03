package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"airbnb-dashboard/api"
	"airbnb-dashboard/services"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the dataset and serve the dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		table, err := loadDataset(ctx)
		if err != nil {
			return err
		}

		svc, err := newAPI(newDashboard(table))
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return svc.Serve(cfg.ListenAddr)
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("[serve] Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return svc.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (env LISTEN_ADDR, default :8080)")
	bindFlag("listen_addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func newAPI(dashboard *services.DashboardService) (*api.APIService, error) {
	return api.NewAPIService(logger, dashboard, api.Options{
		AllowOrigins:  cfg.AllowOrigins,
		DefaultZoom:   cfg.DefaultZoom,
		DefaultRadius: cfg.DefaultRadius,
	})
}
