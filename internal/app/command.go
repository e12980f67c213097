package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"farmflow-backend/config"
	"farmflow-backend/internal/db"
	"farmflow-backend/internal/log"
	"farmflow-backend/internal/seed"
)

const defaultConfigPath = "./config/config.yaml"

// Options holds the flags shared by every subcommand.
type Options struct {
	ConfigPath string
}

// AddFlags binds the options to fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigPath, "config", "c", o.ConfigPath,
		"Path to the YAML configuration file. Falls back to $CONFIG_PATH.")
}

func (o *Options) load() (*config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log.Init(log.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info("configuration loaded", "path", path)
	return cfg, nil
}

// NewRootCommand builds the farmflowd command tree. Running it without a
// subcommand starts the server.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	serve := func(cmd *cobra.Command, _ []string) error {
		cfg, err := opts.load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return Run(ctx, cfg)
	}

	root := &cobra.Command{
		Use:           "farmflowd",
		Short:         "FarmFlow machinery maintenance API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	opts.AddFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Seed the database and serve the HTTP API",
		RunE:  serve,
	})

	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Insert the baseline machine and missing maintenance items, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			gormDB, err := db.Init(&cfg.Database)
			if err != nil {
				return err
			}
			_, err = seed.EnsureSeedData(cmd.Context(), gormDB)
			return err
		},
	})

	root.SetContext(context.Background())
	return root
}
