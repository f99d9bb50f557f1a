package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/contractd/pkg/cliconfig"
	"github.com/getmockd/contractd/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	jsonOutput bool
	logLevel   string
	logFormat  string
	lokiURL    string
	configFile string

	// logger is configured before every command runs.
	logger    = logging.Nop()
	closeLogs = func() error { return nil }

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "contractd",
	Short: "contractd checks, generates and matches API contracts",
	Long: `contractd works with API contracts: typed descriptions of HTTP requests,
responses and Kafka messages.

It validates contracts, checks that a new version stays backward compatible
with an old one, generates stubs from scenarios and examples, and finds the
stub answering a request.

Contracts are contractd YAML/JSON documents or OpenAPI 3 files.

Settings are read from ~/.config/contractd/config.yaml, then
.contractdrc.yaml in the current directory (or the file named by --config),
then the environment, then flags.

Environment Variables:
  CONTRACTD_CONFIG          Config file replacing .contractdrc.yaml
  CONTRACTD_STUBS           Explicit stubs file for validate and match
  CONTRACTD_NEAR_MISSES     Near misses reported by match
  CONTRACTD_KAFKA_BROKERS   Comma-separated Kafka brokers for generate
  CONTRACTD_MQTT_BROKER     MQTT broker URL for generate
  CONTRACTD_LOG_LEVEL       Log level (debug, info, warn, error)
  CONTRACTD_LOG_FORMAT      Log format (text, json)
  CONTRACTD_LOKI_URL        Also ship logs to this Loki push endpoint`,
	SilenceUsage:      true,
	SilenceErrors:     true, // We handle errors in Execute()
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := cliconfig.LoadAll(configFile)
		if err != nil {
			return err
		}
		if err := applyConfig(cmd, cfg); err != nil {
			return err
		}
		setupLogging(cmd)
		logger.Debug("configuration loaded", "file", cfg.ConfigFile, "sources", cfg.Sources)
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) { flushLogs() },
}

// Execute runs the command line and exits non-zero on failure.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	flushLogs()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps command errors to process exit codes. Findings (an
// incompatible contract, an invalid stub, no match) exit 1; usage and
// loading problems exit 2.
func exitCode(err error) int {
	if errors.Is(err, ErrBreakingChanges) || errors.Is(err, ErrInvalidStubs) || errors.Is(err, ErrNoMatch) {
		return 1
	}
	return 2
}

// setupLogging builds the logger from the resolved logging flags.
func setupLogging(cmd *cobra.Command) {
	cfg := logging.DefaultConfig()
	cfg.Output = cmd.ErrOrStderr()
	cfg.Level = logging.ParseLevel(logLevel)
	cfg.Format = logging.ParseFormat(logFormat)
	cfg.LokiURL = lokiURL
	logger, closeLogs = logging.Setup(cfg)
	slog.SetDefault(logger)
}

func flushLogs() {
	if err := closeLogs(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: failed to flush logs:", err)
	}
	closeLogs = func() error { return nil }
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file to use instead of .contractdrc.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cliconfig.DefaultLogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", cliconfig.DefaultLogFormat, "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&lokiURL, "loki-url", "", "Loki push endpoint")
}
