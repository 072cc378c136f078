package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/evaluaciones/internal/app"
	"github.com/shrimpsizemoose/evaluaciones/internal/export"
	"github.com/shrimpsizemoose/evaluaciones/internal/models"
	"github.com/shrimpsizemoose/evaluaciones/internal/pin"
	"github.com/shrimpsizemoose/evaluaciones/internal/store"
)

func openStore(configPath string) (*app.Config, store.EvaluationStore, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	evalStore, err := app.NewStore(config.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return config, evalStore, nil
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, evalStore, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer evalStore.Close()

			if err := evalStore.ApplyMigrations(cmd.Context()); err != nil {
				return err
			}

			latest, err := store.Migrations()
			if err != nil {
				return err
			}
			if len(latest) > 0 {
				logger.Info.Printf("Schema is at version %s", latest[len(latest)-1].Version)
			}
			return nil
		},
	}
}

func exportCmd(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every evaluation as CSV, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, evalStore, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer evalStore.Close()

			evaluations, err := evalStore.ExportEvaluations(cmd.Context())
			if err != nil {
				return err
			}

			if out == "" {
				return export.WriteCSV(cmd.OutOrStdout(), evaluations)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := writeAndClose(f, evaluations); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			logger.Info.Printf("Exported %d evaluations to %s", len(evaluations), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, stdout when empty")
	return cmd
}

// writeAndClose reports a failed close too, since that is where buffered
// writes to disk can surface.
func writeAndClose(wc io.WriteCloser, evaluations []models.Evaluation) error {
	if err := export.WriteCSV(wc, evaluations); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

func digestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "digest <pin>",
		Short: "Print the stored digest of a student code under the configured pepper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := app.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			hasher := pin.NewHasher(config.Pin.Pepper)
			fmt.Fprintln(cmd.OutOrStdout(), hasher.Digest(pin.Normalize(args[0])))
			return nil
		},
	}
}

func checkConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := app.LoadConfig(*configPath)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "port:          %s\n", config.Server.Port)
			fmt.Fprintf(w, "database:      %s\n", app.DetectDBType(config.Database.DSN))
			fmt.Fprintf(w, "sessions:      %s\n", backend(config.Session.RedisURL))
			fmt.Fprintf(w, "session ttl:   %s\n", config.SessionTTL())
			fmt.Fprintf(w, "login limit:   %d per %s\n", config.LoginLimit.MaxAttempts, config.LoginWindow())
			fmt.Fprintf(w, "pin length:    %d-%d\n", config.Pin.MinLength, config.Pin.MaxLength)
			fmt.Fprintf(w, "pin pepper:    %t\n", config.Pin.Pepper != "")
			fmt.Fprintf(w, "metrics:       %t\n", config.Server.EnableMetrics)
			fmt.Fprintln(w, "config OK")
			return nil
		},
	}
}

func backend(redisURL string) string {
	if redisURL == "" {
		return "memory"
	}
	return "redis"
}
