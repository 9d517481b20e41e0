package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX loads and validates the dataset from an XLSX workbook. The sheet
// is selected by name, or by 1-based index when no name is given.
func ReadXLSX(path string, opt Options) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, opt)
	if err != nil {
		return nil, err
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	t, err := fromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func resolveSheet(f *excelize.File, opt Options) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if opt.SheetName != "" {
		for _, s := range sheets {
			if s == opt.SheetName {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found; available: %v", opt.SheetName, sheets)
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range; workbook has %d sheets", idx, len(sheets))
	}
	return sheets[idx-1], nil
}
