package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/config"
	"github.com/i474232898/air-quality-monitor/internal/logging"
	"github.com/i474232898/air-quality-monitor/internal/realtime"
	"github.com/i474232898/air-quality-monitor/internal/store"
)

var verbose bool

// rootCmd starts the server when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "airquality-monitor",
	Short: "Air quality sensor ingestion and dashboard API",
	Long: `Receives air quality readings (ppm, temperature, humidity, motion) from a
sensor device, stores them and serves latest, history, daily and monthly
statistics and a realtime snapshot over HTTP.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
}

// setup loads configuration and builds the logger shared by every command.
func setup() (*config.AppConfig, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logging.New(os.Stderr, level)
	slog.SetDefault(log)
	return cfg, log, nil
}

// openStore builds the configured store wrapped in a circuit breaker.
// The returned close func releases the underlying resources.
func openStore(cfg *config.AppConfig) (airquality.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return store.NewMemoryStore(), func() error { return nil }, nil
	default:
		sqlStore, err := store.OpenSQLStore(cfg.StoreDSN)
		if err != nil {
			return nil, nil, err
		}
		return store.NewBreakerStore("readings", sqlStore, cfg.BreakerTimeout), sqlStore.Close, nil
	}
}

func newService(cfg *config.AppConfig, st airquality.Store, log *slog.Logger, opts ...airquality.Option) *airquality.Service {
	base := []airquality.Option{
		airquality.WithLocation(cfg.BucketLocation),
		airquality.WithLogger(log),
		airquality.WithDriverName(cfg.StoreDriver),
	}
	return airquality.NewService(st, realtime.New(), append(base, opts...)...)
}
