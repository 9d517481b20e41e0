package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/MwillianM/FlchainExploration/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set flchain configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		if cfg.Dataset != "" {
			fmt.Printf("dataset: %s\n", cfg.Dataset)
		}
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		fmt.Printf("seed: %d\n", cfg.Seed)
		fmt.Printf("eval_sample: %d\n", cfg.EvalSample)
		fmt.Printf("head_rows: %d\n", cfg.HeadRows)
		if cfg.Delimiter != "" {
			fmt.Printf("delimiter: %s\n", cfg.Delimiter)
		}
		if cfg.SheetName != "" {
			fmt.Printf("sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Printf("sheet_index: %d\n", cfg.SheetIndex)
		fmt.Printf("charts: %t\n", cfg.Charts)
		fmt.Printf("workbook: %t\n", cfg.Workbook)
		fmt.Printf("chart_width_in: %.1f\n", cfg.ChartWidthIn)
		fmt.Printf("chart_height_in: %.1f\n", cfg.ChartHeightIn)
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
		case "dataset":
			cfg.Dataset = val
		case "output_dir":
			cfg.OutputDir = val
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			cfg.Seed = i
		case "eval_sample":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for eval_sample: %v", val)
			}
			cfg.EvalSample = i
		case "head_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for head_rows: %v", val)
			}
			cfg.HeadRows = i
		case "delimiter":
			switch val {
			case ",", ";", "tab":
				cfg.Delimiter = val
			default:
				return fmt.Errorf("invalid delimiter: %s (use ','|';'|'tab')", val)
			}
		case "sheet_name":
			cfg.SheetName = val
		case "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for sheet_index: %v", val)
			}
			cfg.SheetIndex = i
		case "charts":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for charts: %w", err)
			}
			cfg.Charts = b
		case "workbook":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for workbook: %w", err)
			}
			cfg.Workbook = b
		case "chart_width_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid positive float for chart_width_in: %v", val)
			}
			cfg.ChartWidthIn = f
		case "chart_height_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid positive float for chart_height_in: %v", val)
			}
			cfg.ChartHeightIn = f
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
