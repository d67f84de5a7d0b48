package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kisaansahayak/sahayak/config"
	"github.com/kisaansahayak/sahayak/internal/adapter/gateway"
	"github.com/kisaansahayak/sahayak/internal/history"
	"github.com/kisaansahayak/sahayak/internal/identity"
	"github.com/kisaansahayak/sahayak/internal/logging"
	"github.com/kisaansahayak/sahayak/internal/repository"
)

// app holds the stores and clients shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	kv      repository.Store
	users   *identity.Store
	history *history.Store
	gateway *gateway.Client
}

type rootOptions struct {
	verbose bool
	dbPath  string
	apiURL  string
	rules   string
}

// openStore opens the local chat database.
var openStore = func(path string) (repository.Store, error) {
	return repository.NewSQLiteStore(path)
}

// newRootCmd builds the command tree. The returned closer releases the local
// stores and must run after Execute whether or not the command failed.
func newRootCmd() (*cobra.Command, func() error) {
	opts := &rootOptions{}
	var a *app

	cmd := &cobra.Command{
		Use:   "kisaan",
		Short: "Chat with KisaanSahayak, the farming assistant",
		Long: `Terminal client for the KisaanSahayak farming assistant.

Conversations are stored locally and grouped into sessions by topic.

Quick Start:
  kisaan chat                          # Start a conversation
  kisaan history sessions              # Browse past sessions
  kisaan history export --format md    # Export your history`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["app"] != "true" {
				return nil
			}
			var err error
			a, err = newApp(opts)
			return err
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the local chat database (default $KISAAN_DB)")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", "", "Gateway API base URL (default $KISAAN_API_URL)")
	cmd.PersistentFlags().StringVar(&opts.rules, "rules", "", "TOML file with session rules (default $SESSION_RULES_FILE)")

	getApp := func() *app { return a }
	cmd.AddCommand(
		newChatCmd(getApp),
		newHistoryCmd(getApp),
		newUserCmd(getApp),
		newTipsCmd(getApp),
		newHealthCmd(getApp),
	)

	closeApp := func() error {
		if a == nil {
			return nil
		}
		_ = a.logger.Sync()
		err := a.kv.Close()
		a = nil
		return err
	}
	return cmd, closeApp
}

// needsApp marks cmd as requiring the local stores.
func needsApp(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations["app"] = "true"
	return cmd
}

func newApp(opts *rootOptions) (*app, error) {
	cfg := config.Load()
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	if opts.rules != "" {
		cfg.SessionRulesFile = opts.rules
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console")
	if err != nil {
		return nil, err
	}

	rules := history.DefaultRules()
	if cfg.SessionRulesFile != "" {
		rules, err = history.LoadRules(cfg.SessionRulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load session rules: %w", err)
		}
	}

	kv, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat database: %w", err)
	}

	users := identity.NewStore(kv, identity.WithLogger(logger))
	return &app{
		cfg:     cfg,
		logger:  logger,
		kv:      kv,
		users:   users,
		history: history.NewStore(kv, users, history.WithRules(rules), history.WithLogger(logger)),
		gateway: gateway.NewClient(cfg.APIURL, cfg.UpstreamTimeout, logger),
	}, nil
}
