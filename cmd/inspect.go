package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MwillianM/FlchainExploration/internal/dataset"
)

var (
	insDelimiter  string
	insSheetName  string
	insSheetIndex int
	insHeadRows   int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <dataset>",
	Short: "Load and validate the dataset, then print its schema and head rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		c.Dataset = args[0]
		if cmd.Flags().Changed("delimiter") {
			c.Delimiter = insDelimiter
		}
		if cmd.Flags().Changed("sheet-name") {
			c.SheetName = insSheetName
		}
		if cmd.Flags().Changed("sheet-index") {
			c.SheetIndex = insSheetIndex
		}
		opt, err := readerOptions(c)
		if err != nil {
			return err
		}

		t, err := dataset.Read(c.Dataset, opt)
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s: %d rows × %d columns\n\n", c.Dataset, t.NumRows(), t.NumCols())
		for _, name := range t.Names() {
			col, err := t.Column(name)
			if err != nil {
				return err
			}
			missing := 0
			for i := 0; i < col.Len(); i++ {
				if col.IsMissing(i) {
					missing++
				}
			}
			fmt.Printf("- %s: %s", name, col.Kind())
			if missing > 0 {
				fmt.Printf(" (%d missing)", missing)
			}
			fmt.Println()
		}
		n := insHeadRows
		if n <= 0 {
			n = 6
		}
		fmt.Println()
		fmt.Println(strings.Join(t.Names(), " | "))
		for _, row := range t.Head(n) {
			fmt.Println(strings.Join(row, " | "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&insDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	inspectCmd.Flags().StringVar(&insSheetName, "sheet-name", "", "XLSX: sheet name to read")
	inspectCmd.Flags().IntVar(&insSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index")
	inspectCmd.Flags().IntVar(&insHeadRows, "head-rows", 6, "number of head rows to print")
}
