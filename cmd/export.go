package cmd

import (
	"github.com/spf13/cobra"

	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
)

var (
	exportFlags  controlsFlags
	exportView   string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write one filtered dashboard table to a CSV file",
	Example: `  airbnb-dashboard export --range 100-150 -o cheap.csv
  airbnb-dashboard export --view neighbourhood --neighbourhood "Back Bay"
  airbnb-dashboard export --view room_type --room-type "Entire home/apt"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		dashboard := newDashboard(table)
		c := dashboard.WithDefaults(exportFlags.controls())
		if err := dashboard.Validate(c); err != nil {
			return err
		}

		rows, err := dashboard.Listings(exportView, c)
		if err != nil {
			return err
		}

		w, err := storage.NewCSVFileWriter(exportOutput)
		if err != nil {
			return err
		}
		if err := storage.WriteTable(w, rows); err != nil {
			return err
		}

		logger.Info("[export] Wrote %d listings to %s", rows.Len(), exportOutput)
		return nil
	},
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportView, "view", services.ViewPrice, "table to export: price, neighbourhood, room_type or all")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "./output/listings.csv", "CSV file to write")
	rootCmd.AddCommand(exportCmd)
}
