package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, sheet string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	for i, line := range csvRows {
		for j, v := range strings.Split(line, ",") {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "flchain.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeXLSX(t, "extract")
	tbl, err := Read(path, DefaultOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tbl.NumRows() != 12 || tbl.NumCols() != 11 {
		t.Fatalf("dims = %d×%d, want 12×11", tbl.NumRows(), tbl.NumCols())
	}
	age, err := tbl.Float(ColAge)
	if err != nil {
		t.Fatalf("age: %v", err)
	}
	if v, ok := age.At(0); !ok || v != 65 {
		t.Fatalf("age[0] = %v,%v", v, ok)
	}
}

func TestReadXLSXBySheetName(t *testing.T) {
	path := writeXLSX(t, "extract")
	opt := DefaultOptions()
	opt.SheetName = "extract"
	if _, err := ReadXLSX(path, opt); err != nil {
		t.Fatalf("ReadXLSX by name: %v", err)
	}
	opt.SheetName = "nope"
	if _, err := ReadXLSX(path, opt); err == nil {
		t.Fatalf("expected error for unknown sheet")
	}
}
