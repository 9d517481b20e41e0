package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/MwillianM/FlchainExploration/internal/aggregate"
)

// Workbook sheet names.
const (
	sheetHead       = "Head"
	sheetGroups     = "Group Aggregate"
	sheetDeathRates = "Death Rates"
)

// WriteWorkbook exports the report's tabular outputs as an XLSX workbook:
// the transformed head rows, the group-aggregate table, and the grouped
// death rates, one sheet each.
func WriteWorkbook(path string, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetHead)
	headRows := make([][]interface{}, len(r.Head))
	for i, row := range r.Head {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		headRows[i] = cells
	}
	if err := writeSheet(f, sheetHead, r.Columns, headRows); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetGroups); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheetGroups, err)
	}
	groupRows := make([][]interface{}, len(r.Groups))
	for i, g := range r.Groups {
		groupRows[i] = []interface{}{g.Group, g.Count, g.FLCMin, g.FLCMax, g.FLCMean, g.DeathRate}
	}
	if err := writeSheet(f, sheetGroups,
		[]string{"flc_group", "count", "flc_min", "flc_max", "flc_mean", "death_rate"}, groupRows); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetDeathRates); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheetDeathRates, err)
	}
	var rateRows [][]interface{}
	appendRates := func(factor string, rates []aggregate.CategoryRate) {
		for _, c := range rates {
			rateRows = append(rateRows, []interface{}{factor, c.Level, c.Count, c.Rate})
		}
	}
	appendRates("sex", r.DeathBySex)
	appendRates("recruits", r.DeathByRecruits)
	appendRates("mgus", r.DeathByMGUS)
	if err := writeSheet(f, sheetDeathRates,
		[]string{"factor", "level", "count", "death_rate"}, rateRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	for j, h := range header {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("sheet %s: %w", sheet, err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("sheet %s: %w", sheet, err)
			}
		}
	}
	return nil
}
