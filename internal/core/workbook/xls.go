package workbook

import (
	"bytes"
	"fmt"
	"os"

	"github.com/shakinm/xlsReader/xls"
)

// readLegacy loads every sheet of a BIFF .xls workbook. The format is read-only here;
// settlement and the editor need an .xlsx source.
func readLegacy(path string) ([]*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	book, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open .xls workbook: %w", err)
	}

	var grids []*Grid
	for _, sheet := range book.GetSheets() {
		var rows [][]string
		for _, row := range sheet.GetRows() {
			var cols []string
			for _, cell := range row.GetCols() {
				cols = append(cols, cell.GetString())
			}
			rows = append(rows, cols)
		}
		grids = append(grids, NewGrid(sheet.GetName(), rows))
	}
	return grids, nil
}
