package reportservice

import (
	"fmt"
	"io"

	rankingservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/application"
	"github.com/xuri/excelize/v2"
)

func regionSheetName(region int) string {
	return fmt.Sprintf("Region %d", region)
}

// WriteWorkbook writes one sheet per region with the same columns as the
// region CSV files.
func WriteWorkbook(w io.Writer, acc *rankingservice.Accumulator) error {
	f := excelize.NewFile()
	defer f.Close()

	header := regionHeader(acc)
	for i, region := range acc.Regions() {
		sheet := regionSheetName(region)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
		}

		rows := append([][]string{header}, regionRows(acc, region)...)
		for idx, row := range rows {
			axis, err := excelize.CoordinatesToCellName(1, idx+1)
			if err != nil {
				return err
			}
			cells := make([]interface{}, len(row))
			for c, val := range row {
				cells[c] = val
			}
			if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", sheet, idx+1, err)
			}
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header of %s: %w", sheet, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
