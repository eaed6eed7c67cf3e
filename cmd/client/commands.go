package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/sessionkeeper/internal/client/app"
	"github.com/iudanet/sessionkeeper/internal/client/cli"
	"github.com/iudanet/sessionkeeper/internal/client/config"
	"github.com/iudanet/sessionkeeper/internal/client/iocli"
	"github.com/iudanet/sessionkeeper/internal/client/logger"
)

// runtime создается в PersistentPreRunE и закрывается в main после выполнения команды
type runtime struct {
	app     *app.App
	cli     *cli.Cli
	logSync func() error
}

func newRootCommand() (*cobra.Command, *runtime) {
	v := viper.New()
	config.SetDefaults(v)

	rt := &runtime{}
	var configFile string

	root := &cobra.Command{
		Use:           "sessionkeeper",
		Short:         "Keeps the client authentication session",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				v.SetConfigFile(configFile)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			log, logSync, err := logger.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			slog.SetDefault(log)
			rt.logSync = logSync

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("failed to open session: %w", err)
			}
			rt.app = a
			rt.cli = cli.New(iocli.NewStdio(), a.Store)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to config file")
	flags.String("server", "http://localhost:8080", "Profile service URL")
	flags.String("storage-driver", config.DriverBolt, "Storage driver (bolt, sqlite, redis)")
	flags.String("db", "sessionkeeper.db", "Path to local database")
	flags.String("redis-addr", "localhost:6379", "Redis address for the redis driver")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	bindings := map[string]string{
		"server":         "server",
		"storage.driver": "storage-driver",
		"storage.path":   "db",
		"redis.addr":     "redis-addr",
		"log.level":      "log-level",
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newTokensCommand(rt),
		&cobra.Command{
			Use:   "status",
			Short: "Show authentication status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.cli.RunStatus(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "profile",
			Short: "Fetch and show the user profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.cli.RunProfile(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "End the session and delete stored tokens",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.cli.RunLogout(cmd.Context())
			},
		},
	)

	return root, rt
}

func newTokensCommand(rt *runtime) *cobra.Command {
	tokens := &cobra.Command{
		Use:   "tokens",
		Short: "Manage stored tokens",
	}
	tokens.AddCommand(&cobra.Command{
		Use:   "set [ACCESS_TOKEN [REFRESH_TOKEN]]",
		Short: "Store an already issued token pair",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.cli.RunSetTokens(cmd.Context(), args)
		},
	})
	return tokens
}

func (rt *runtime) close() error {
	var err error
	if rt.app != nil {
		if cerr := rt.app.Close(); cerr != nil {
			slog.Error("failed to close storage", "error", cerr)
			err = cerr
		}
	}
	if rt.logSync != nil {
		// Sync на stderr возвращает EINVAL на некоторых системах
		_ = rt.logSync()
	}
	return err
}
