// Command cellar-pump runs the cellar pump controller: it cycles the pump
// relay on the selected preset, reads temperature and humidity, and shows
// both on a 16x2 display. Presets are cycled with a push button.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sweeney/cellar-pump/internal/config"
	"github.com/sweeney/cellar-pump/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	poll       time.Duration
	broker     string
	httpAddr   string
	db         string
	sim        bool
	logLevel   string
	heartbeat  time.Duration
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&options{})
}

func buildRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "cellar-pump",
		Short: "Cellar pump controller",
		Long: `Runs the pump on a repeating on/off schedule, samples a DHT20
temperature/humidity sensor and drives a Grove 16x2 RGB LCD.

Pressing the button selects the next preset. The selection survives restarts.`,
		Example: `  # Run on hardware with defaults
  cellar-pump

  # Run without hardware, drawing the display in the terminal
  cellar-pump --sim --db ""

  # Publish events to a broker and serve a status page
  cellar-pump --broker tcp://192.168.1.200:1883 --http :8080`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "YAML config file (defaults are built in)")
	f.StringVar(&opts.db, "db", "", "SQLite file for the preset selection (empty keeps it in memory)")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.BoolVar(&opts.sim, "sim", false, "Simulate hardware and draw the display in the terminal")

	rf := root.Flags()
	rf.DurationVar(&opts.poll, "poll", 10*time.Millisecond, "Loop interval")
	rf.StringVar(&opts.broker, "broker", "", "MQTT broker address (empty to disable)")
	rf.StringVar(&opts.httpAddr, "http", "", "HTTP status address (empty to disable)")
	rf.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")

	root.AddCommand(newPresetsCmd(opts))
	return root
}

// loadConfig reads the config file and applies flags the user set
// explicitly. Flags left at their default never override the file.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("poll") {
		cfg.Timing.Poll = opts.poll
	}
	if flags.Changed("broker") {
		cfg.MQTT.Broker = opts.broker
	}
	if flags.Changed("http") {
		cfg.HTTP = opts.httpAddr
	}
	if flags.Changed("db") {
		cfg.Storage = opts.db
	}
	if flags.Changed("sim") {
		cfg.Simulate = opts.sim
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("heartbeat") {
		cfg.MQTT.Heartbeat = opts.heartbeat
	}

	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return cfg, err
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logging.Warn("config", zap.String("warning", w))
	}
	if err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
