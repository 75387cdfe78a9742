package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

var (
	statsDays   int
	statsMonths int
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the latest stored reading as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(svc *airquality.Service) error {
			r, err := svc.Latest(cmd.Context())
			if errors.Is(err, airquality.ErrNoData) {
				fmt.Fprintln(cmd.OutOrStdout(), "No data available")
				return nil
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), r)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"s"},
	Short:   "Print daily or monthly statistics",
}

var statsDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Print per-day statistics",
	Long: `Print per-day statistics computed from the stored readings.

Examples:
  airquality-monitor stats daily
  airquality-monitor stats daily --days 30`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(svc *airquality.Service) error {
			stats, err := svc.Daily(cmd.Context(), statsDays)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		})
	},
}

var statsMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Print per-month statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(svc *airquality.Service) error {
			stats, err := svc.Monthly(cmd.Context(), statsMonths)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		})
	},
}

func init() {
	statsDailyCmd.Flags().IntVar(&statsDays, "days", airquality.DefaultDailyDays, "Number of days to include")
	statsMonthlyCmd.Flags().IntVar(&statsMonths, "months", airquality.DefaultMonthlyCount, "Number of months to include")

	statsCmd.AddCommand(statsDailyCmd, statsMonthlyCmd)
	rootCmd.AddCommand(latestCmd, statsCmd)
}

func withService(fn func(*airquality.Service) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(newService(cfg, st, log))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
