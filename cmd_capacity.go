package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Pridoh/Project-UKK-sub000/internal/config"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository/postgresql"
	"github.com/Pridoh/Project-UKK-sub000/internal/service"
	"github.com/spf13/cobra"
)

func capacityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capacity",
		Short: "Print the occupancy of every area and vehicle type",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := postgresql.NewDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			board, err := service.NewCapacityLedger(postgresql.NewStore(db)).Board(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "AREA\tVEHICLE TYPE\tTOTAL\tOCCUPIED\tAVAILABLE")
			for _, row := range board {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
					row.AreaCode, row.VehicleTypeCode, row.TotalSlots, row.Occupied, row.Available)
			}
			return w.Flush()
		},
	}
}
