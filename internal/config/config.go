package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Dataset    string `mapstructure:"dataset" yaml:"dataset"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`
	Seed       int64  `mapstructure:"seed" yaml:"seed"`
	EvalSample int    `mapstructure:"eval_sample" yaml:"eval_sample"`
	HeadRows   int    `mapstructure:"head_rows" yaml:"head_rows"`

	// Reader options
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index"`

	// Output toggles
	Charts   bool `mapstructure:"charts" yaml:"charts"`
	Workbook bool `mapstructure:"workbook" yaml:"workbook"`

	// Chart geometry in inches
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.flchain/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".flchain")
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

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FLCHAIN")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("output_dir", "flchain_report")
	v.SetDefault("seed", 42)
	v.SetDefault("eval_sample", 200)
	v.SetDefault("head_rows", 6)
	v.SetDefault("sheet_index", 1)
	v.SetDefault("charts", true)
	v.SetDefault("workbook", true)
	v.SetDefault("chart_width_in", 8)
	v.SetDefault("chart_height_in", 5)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".flchain")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
