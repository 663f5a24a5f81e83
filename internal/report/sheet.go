package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/meleecalc/internal/progression"
)

// CurveSheetName is the worksheet written by WriteCurveSheet.
const CurveSheetName = "Curve"

const defaultSheetName = "Sheet1"

var curveSheetHeaders = []string{"Level", "Points for level", "Cumulative points"}

func columnToLetter(col int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return name
}

// WriteCurveSheet writes an xlsx workbook with one row per level in [from, to].
func WriteCurveSheet(w io.Writer, m progression.Model, from, to int) (err error) {
	if from >= to {
		return fmt.Errorf("level range is empty: %d..%d", from, to)
	}
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	if _, err := f.NewSheet(CurveSheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet(defaultSheetName); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	sheetIndex, err := f.GetSheetIndex(CurveSheetName)
	if err != nil {
		return fmt.Errorf("failed to find sheet: %w", err)
	}
	f.SetActiveSheet(sheetIndex)

	for col, header := range curveSheetHeaders {
		if err := f.SetCellValue(CurveSheetName, columnToLetter(col)+"1", header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	row := 2
	for level := from; level <= to; level++ {
		values := []any{level, m.PointsForLevel(level), m.CumulativePoints(level)}
		for col, value := range values {
			ref := fmt.Sprintf("%s%d", columnToLetter(col), row)
			if err := f.SetCellValue(CurveSheetName, ref, value); err != nil {
				return fmt.Errorf("failed to write level %d: %w", level, err)
			}
		}
		row++
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
