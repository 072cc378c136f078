// Command evalctl runs operator tasks against the evaluaciones database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "evalctl",
		Short:         "Operator tool for the evaluaciones service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (TOML), empty for defaults and environment")

	cmd.AddCommand(
		migrateCmd(&configPath),
		exportCmd(&configPath),
		digestCmd(&configPath),
		checkConfigCmd(&configPath),
	)

	return cmd
}
