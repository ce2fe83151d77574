package export

import (
	"go-league/internal/features/report"

	"github.com/xuri/excelize/v2"
)

const (
	reportSheet  = "Report"
	summarySheet = "Summary"
)

// RenderXLSX writes the same header block and formatted cells as the CSV
// renderer into a workbook, plus a summary sheet with the stat cards.
func RenderXLSX(t report.Table) (Document, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return Document{}, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return Document{}, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return Document{}, err
	}

	row := 1
	for _, line := range HeaderBlock(t) {
		if err := setRow(f, reportSheet, row, line); err != nil {
			return Document{}, err
		}
		row++
	}
	if err := f.SetCellStyle(reportSheet, "A1", "A1", titleStyle); err != nil {
		return Document{}, err
	}

	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	if err := setRow(f, reportSheet, row, labels); err != nil {
		return Document{}, err
	}
	if len(labels) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(labels), row)
		if err := f.SetCellStyle(reportSheet, first, last, headerStyle); err != nil {
			return Document{}, err
		}
	}
	row++

	for _, cells := range report.FormatRows(t.Rows, t.Columns) {
		if err := setRow(f, reportSheet, row, cells); err != nil {
			return Document{}, err
		}
		row++
	}

	for i := range t.Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(reportSheet, col, col, 18); err != nil {
			return Document{}, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return Document{}, err
	}
	for i, card := range report.Cards(t.Stats) {
		if err := setRow(f, summarySheet, i+1, []string{card.Label, card.Value}); err != nil {
			return Document{}, err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 24); err != nil {
		return Document{}, err
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return Document{}, err
	}
	return Document{
		Filename: Filename(t.Header, "xlsx"),
		MIMEType: MIMEXLSX,
		Body:     buffer.Bytes(),
	}, nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return f.SetSheetRow(sheet, cell, &out)
}
