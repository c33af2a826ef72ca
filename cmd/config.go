package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/tabula-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Tabula configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		if c == nil {
			loaded, err := cfgpkg.Load(cfgFile)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
				return nil
			}
			c = loaded
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "chart_type: %s\n", c.ChartType)
		fmt.Fprintf(out, "aggregation: %s\n", c.Aggregation)
		fmt.Fprintf(out, "color_scheme: %s\n", c.ColorScheme)
		fmt.Fprintf(out, "show_legend: %t\n", c.ShowLegend)
		fmt.Fprintf(out, "legend_position: %s\n", c.LegendPosition)
		fmt.Fprintf(out, "show_grid: %t\n", c.ShowGrid)
		fmt.Fprintf(out, "begin_at_zero: %t\n", c.BeginAtZero)
		fmt.Fprintf(out, "sync_interval_sec: %d\n", c.SyncIntervalSec)
		fmt.Fprintf(out, "forecast_horizon: %d\n", c.ForecastHorizon)
		fmt.Fprintf(out, "export_path: %s\n", c.ExportPath)
		fmt.Fprintf(out, "author: %s\n", c.Author)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		if c.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", c.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", c.SheetIndex)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "chart_type":
			cfg.ChartType = strings.ToLower(val)
		case "aggregation":
			cfg.Aggregation = strings.ToLower(val)
		case "color_scheme":
			cfg.ColorScheme = strings.ToLower(val)
		case "legend_position":
			cfg.LegendPosition = strings.ToLower(val)
		case "show_legend", "show_grid", "begin_at_zero":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for %s: %v", key, val)
			}
			switch key {
			case "show_legend":
				cfg.ShowLegend = b
			case "show_grid":
				cfg.ShowGrid = b
			default:
				cfg.BeginAtZero = b
			}
		case "sync_interval_sec", "forecast_horizon", "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "sync_interval_sec":
				cfg.SyncIntervalSec = i
			case "forecast_horizon":
				cfg.ForecastHorizon = i
			default:
				cfg.SheetIndex = i
			}
		case "export_path":
			cfg.ExportPath = val
		case "author":
			cfg.Author = val
		case "delimiter":
			cfg.Delimiter = val
		case "sheet_name":
			cfg.SheetName = val
		case "log_level":
			cfg.LogLevel = strings.ToLower(val)
		case "log_format":
			cfg.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			// keep the in-memory config consistent with disk
			if c, lerr := cfgpkg.Load(cfgFile); lerr == nil {
				cfg = c
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
