package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "parking",
		Short: "Parking transaction engine",
	}

	rootCmd.AddCommand(
		serveCmd(),
		dbCmd(),
		capacityCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
