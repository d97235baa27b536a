package main

import (
	"context"
	"log"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/config"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the tables, indexes and constraints if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := postgresql.NewDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := postgresql.ApplySchema(ctx, db); err != nil {
				return err
			}
			log.Println("Schema applied.")
			return nil
		},
	})
	return cmd
}
