package cmd

import (
	"github.com/spf13/cobra"

	"airbnb-dashboard/services"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a dataset overview: price statistics, room types, neighbourhood averages",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		insights := services.NewInsightService(logger)
		insights.Print(cmd.OutOrStdout(), insights.Generate(table), newDashboard(table).Averages())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
