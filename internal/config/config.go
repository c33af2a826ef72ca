package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Chart defaults
	ChartType      string `mapstructure:"chart_type" yaml:"chart_type" validate:"oneof=bar line scatter pie heatmap"`
	Aggregation    string `mapstructure:"aggregation" yaml:"aggregation" validate:"oneof=sum average count raw"`
	ColorScheme    string `mapstructure:"color_scheme" yaml:"color_scheme" validate:"oneof=default pastel dark monochrome"`
	ShowLegend     bool   `mapstructure:"show_legend" yaml:"show_legend"`
	LegendPosition string `mapstructure:"legend_position" yaml:"legend_position" validate:"oneof=top bottom left right"`
	ShowGrid       bool   `mapstructure:"show_grid" yaml:"show_grid"`
	BeginAtZero    bool   `mapstructure:"begin_at_zero" yaml:"begin_at_zero"`

	// Session
	SyncIntervalSec int    `mapstructure:"sync_interval_sec" yaml:"sync_interval_sec" validate:"gte=1,lte=3600"`
	ForecastHorizon int    `mapstructure:"forecast_horizon" yaml:"forecast_horizon" validate:"gte=1,lte=1000"`
	ExportPath      string `mapstructure:"export_path" yaml:"export_path" validate:"required"`
	Author          string `mapstructure:"author" yaml:"author"`

	// Import
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter" validate:"omitempty,max=2"`
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index" validate:"gte=1"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

var validate = validator.New()

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Dir returns ~/.tabula.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabula"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabula/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Defaults registers the default value of every key.
func Defaults(v *viper.Viper) {
	v.SetDefault("chart_type", "bar")
	v.SetDefault("aggregation", "sum")
	v.SetDefault("color_scheme", "default")
	v.SetDefault("show_legend", true)
	v.SetDefault("legend_position", "top")
	v.SetDefault("show_grid", true)
	v.SetDefault("begin_at_zero", true)
	v.SetDefault("sync_interval_sec", 5)
	v.SetDefault("forecast_horizon", 5)
	v.SetDefault("export_path", "data_report.json")
	v.SetDefault("author", "Current User")
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABULA")
	v.AutomaticEnv()
	Defaults(v)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		// A missing file is fine: `config set` creates it.
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
