// Command courtside serves and reports season statistics for an NBA season
// store.
//
// Usage:
//
//	courtside serve
//	courtside report --format json
//	courtside check
//	courtside cache purge
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/store"
)

const (
	serviceName    = "courtside"
	serviceVersion = "1.0.0"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Season statistics and head-to-head matchups",
		Version:       serviceVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context(), a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cfg, cmd.ErrOrStderr())
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default $COURTSIDE_CONFIG)")

	root.AddCommand(serveCmd(a))
	root.AddCommand(reportCmd(a))
	root.AddCommand(checkCmd(a))
	root.AddCommand(cacheCmd(a))
	return root
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore connects to the configured store and verifies its schema
func (a *app) openStore(ctx context.Context, observer store.QueryObserver) (*store.Database, error) {
	db, err := store.NewDatabase(a.cfg.DBDriver, a.cfg.DBDSN, store.Options{
		MaxOpenConns: a.cfg.DBMaxOpenConns,
		MaxIdleConns: a.cfg.DBMaxIdleConns,
		Observer:     observer,
	})
	if err != nil {
		return nil, err
	}

	info, err := db.VerifySchema(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store %s is not a season store: %w", a.cfg.DBDSN, err)
	}
	a.logger.Info("connected to store", "driver", a.cfg.DBDriver, "has_home_flag", info.HasHomeFlag)

	return db, nil
}
