package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"airbnb-dashboard/config"
	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

var (
	cfgFile string
	v       = config.New()

	// Loaded once per invocation by the root PersistentPreRunE.
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "airbnb-dashboard",
	Short: "Interactive dashboard over an Inside Airbnb listings export",
	Long: `airbnb-dashboard loads a listings CSV (or a PostgreSQL table with the same
columns) once and serves a three-tab dashboard: price analysis, a neighbourhood
map and a room type breakdown.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		logger = utils.NewLoggerWith(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "YAML config file (optional)")
	f.String("dataset", "", "path to the listings CSV (env DATASET_PATH)")
	f.String("dsn", "", "read listings from this PostgreSQL DSN instead of a CSV (env DATASET_DSN)")
	f.String("table", "", "PostgreSQL table holding the listings (env DATASET_TABLE)")
	f.String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	f.String("log-format", "", "console or json (env LOG_FORMAT)")

	bindFlag("dataset_path", f.Lookup("dataset"))
	bindFlag("dataset_dsn", f.Lookup("dsn"))
	bindFlag("dataset_table", f.Lookup("table"))
	bindFlag("log_level", f.Lookup("log-level"))
	bindFlag("log_format", f.Lookup("log-format"))
}

// loadDataset reads and cleans the configured source. Load and schema
// errors are logged here; callers just return them.
func loadDataset(ctx context.Context) (models.Table, error) {
	var (
		reader storage.RawListingReader
		source string
	)

	if cfg.UsePostgres() {
		source = "postgres:" + cfg.DatasetTable
		r, err := storage.NewPostgresReader(ctx, cfg.DatasetDSN, cfg.DatasetTable, cfg.DBMaxRetries, logger)
		if err != nil {
			logger.Error("[dataset] %v", err)
			return nil, err
		}
		reader = r
	} else {
		source = cfg.DatasetPath
		reader = storage.NewCSVReader(cfg.DatasetPath)
	}
	defer reader.Close()

	table, err := services.LoadDataset(ctx, reader, services.NewCleaner(logger, source))
	if err != nil {
		logger.Error("[dataset] %v", err)
		return nil, err
	}

	logger.Info("[dataset] Loaded %d listings from %s", table.Len(), source)
	return table, nil
}

func newDashboard(table models.Table) *services.DashboardService {
	return services.NewDashboardService(logger, table, cfg.MapStyle)
}
