package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/tabula-cli/internal/config"
	"github.com/KaramelBytes/tabula-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tabula",
	Short: "Tabula CLI: explore tabular data from the terminal",
	Long: `Tabula loads CSV, TSV, XLSX, JSON and YAML tables and derives chart-ready
aggregations, per-column insights, 2-D heatmaps and linear-trend forecasts.
Filters narrow the charted rows; "tabula shell" keeps a session open with
collaborators, comments and periodic refresh.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabula/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = nil
	}
	cfg = c

	opt := logging.Options{Level: "warn", Format: "text"}
	if cfg != nil {
		opt.Level, opt.Format = cfg.LogLevel, cfg.LogFormat
	}
	if debug {
		opt.Level = "debug"
	}
	if logFormat != "" {
		opt.Format = logFormat
	}
	logging.Setup(opt)
}
