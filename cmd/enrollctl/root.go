package main

import (
	"fmt"

	"enrollment-insights/internal/config"
	"enrollment-insights/internal/logging"
	"enrollment-insights/internal/obs"
	"enrollment-insights/internal/session"
	"enrollment-insights/internal/snapshot"
	"enrollment-insights/internal/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is what every subcommand works with, built once per invocation.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	metrics *obs.Metrics
	ctrl    *session.Controller
}

type rootFlags struct {
	configPath string
	live       bool
	liveSet    bool
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     app
	)

	root := &cobra.Command{
		Use:     "enrollctl",
		Short:   "Enrollment insights - live or static enrollment analytics",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags.liveSet = cmd.Flags().Changed("live")
			built, err := buildApp(flags)
			if err != nil {
				return err
			}
			a = *built
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (overrides ENROLLMENT_CONFIG)")
	root.PersistentFlags().BoolVar(&flags.live, "live", false, "force live mode on or off (default from LIVE_MODE)")

	root.AddCommand(
		newViewsCmd(&a),
		newExportCmd(&a),
		newServeCmd(&a),
		newVerifyCmd(&a),
		newStatusCmd(&a),
	)
	return root
}

func buildApp(flags rootFlags) (*app, error) {
	var (
		cfg config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flags.liveSet {
		cfg.LiveMode = flags.live
	}
	return newApp(cfg)
}

func newApp(cfg config.Config) (*app, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	static, err := snapshot.Load(cfg.StaticSnapshotPath)
	if err != nil {
		logger.Warn("static snapshot unavailable, starting empty", zap.String("path", cfg.StaticSnapshotPath), zap.Error(err))
		static = snapshot.Empty()
	}

	var metrics *obs.Metrics
	hooks := []obs.Hook{obs.NewLogHook(logger)}
	if cfg.MetricsEnabled {
		metrics = obs.NewMetrics()
		hooks = append(hooks, metrics)
	}
	hook := obs.Multi(hooks...)

	ctrl := session.New(static, source.NewFromConfig(cfg, hook, logger), session.Options{
		LiveMode: cfg.LiveMode,
		Timeout:  cfg.RefreshTimeout,
		Hook:     hook,
		Logger:   logger,
	})

	return &app{cfg: cfg, logger: logger, metrics: metrics, ctrl: ctrl}, nil
}

// start runs the initial refresh. A failed live refresh is not fatal: the
// static data stays active and the failure is only reported.
func (a *app) start(cmd *cobra.Command) {
	if err := a.ctrl.Start(cmd.Context()); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), warnColor.Sprintf("live data unavailable, using %s data: %v", a.ctrl.Status().Source, err))
	}
}
