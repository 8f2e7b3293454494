package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/victorgalvez56/nvim-voice/internal/config"
	"github.com/victorgalvez56/nvim-voice/internal/device"
	"github.com/victorgalvez56/nvim-voice/internal/device/usb"
	"github.com/victorgalvez56/nvim-voice/internal/keyboard"
	"github.com/victorgalvez56/nvim-voice/internal/keymapp"
	"github.com/victorgalvez56/nvim-voice/internal/logging"
)

// app holds what every subcommand shares once flags are parsed.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg    *config.Config
	logger *logging.Logger
}

const rootLong = `keymapctl reads the layout Keymapp last synced, falls back to a
standard 61-key board when none is available, and shows which physical keys
a Neovim key sequence presses.`

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "keymapctl",
		Short:        "Inspect ZSA keyboard layouts and resolve key sequences",
		Long:         rootLong,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to config file (default: search ./config.* then the data dir)")
	flags.StringVar(&a.dbPath, "db", "", "path to the Keymapp database (overrides config)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newLayoutCmd(a),
		newPositionsCmd(),
		newResolveCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return root
}

func (a *app) setup() error {
	path := a.configPath
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if path == "" {
		path = config.ConfigPath()
	}
	a.configPath = path

	if a.dbPath != "" {
		cfg.Keymapp.DatabasePath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	var warnings config.ValidationErrors
	if err := cfg.Validate(); err != nil {
		var verrs config.ValidationErrors
		if !errors.As(err, &verrs) || verrs.HasErrors() {
			return err
		}
		warnings = verrs.Warnings()
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	logging.SetDefault(logger)
	for _, w := range warnings {
		logger.Warn("config warning", "field", w.Field, "message", w.Message)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) close() error {
	if a.logger == nil {
		return nil
	}
	return a.logger.Close()
}

// newLogger maps the logging section of the config file onto the logger.
func newLogger(lc config.LoggingConfig) (*logging.Logger, error) {
	level, err := logging.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(lc.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(&logging.Config{
		Level:      level,
		Format:     format,
		Output:     lc.Output,
		Writer:     os.Stderr,
		FilePath:   lc.FilePath,
		MaxSize:    int64(lc.MaxSizeMB),
		MaxAge:     lc.MaxAgeDays,
		MaxBackups: lc.MaxBackups,
		Compress:   lc.Compress,
		Component:  "keymapctl",
	})
}

// service builds the layout service. Watching and device polling are only
// wired when live is set and the config enables them.
func (a *app) service(live bool, extra ...keyboard.Option) *keyboard.Service {
	src := keymapp.NewSource(a.cfg.KeymappDatabasePath())
	opts := append([]keyboard.Option{
		keyboard.WithLogger(a.logger.WithComponent("keyboard").Logger),
	}, extra...)

	if live && a.cfg.Keymapp.Watch {
		opts = append(opts, keyboard.WithWatch(keymapp.WatchPaths(src.Path()), a.cfg.KeymappDebounce()))
	}
	if live && a.cfg.Device.Enabled {
		monitor := device.NewMonitor(usb.Enumerator{}, device.Config{
			VendorID:     a.cfg.Device.VendorID,
			PollInterval: a.cfg.DevicePollInterval(),
			Logger:       a.logger.WithComponent("device").Logger,
		})
		opts = append(opts, keyboard.WithMonitor(monitor))
	}

	return keyboard.New(src, opts...)
}
