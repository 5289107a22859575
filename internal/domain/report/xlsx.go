package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mch/mch/internal/platform/validate"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dataSheet       = "Data capture"
)

var dataCaptureHeader = []interface{}{
	"Username", "Full name", "User type", "Patients", "ANC registrations", "ANC visits", "Kit logs", "Total",
}

// FileName is the download name for the report.
func (d *DataCapture) FileName() string {
	return fmt.Sprintf("data-capture_%s_%s.xlsx", d.From.Format(validate.DateLayout), d.To.Format(validate.DateLayout))
}

// XLSX renders the report as a single-sheet workbook with a totals row.
func (d *DataCapture) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Data capture %s to %s", d.From.Format(validate.DateLayout), d.To.Format(validate.DateLayout))
	if err := f.SetCellValue(dataSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(dataSheet, "A3", &dataCaptureHeader); err != nil {
		return nil, err
	}

	line := 4
	for _, r := range d.Rows {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return nil, err
		}
		row := []interface{}{r.Username, r.FullName, r.UserType, r.Patients, r.Registrations, r.Visits, r.KitLogs, r.Total()}
		if err := f.SetSheetRow(dataSheet, cell, &row); err != nil {
			return nil, err
		}
		line++
	}

	t := d.Totals()
	totals := []interface{}{"Total", "", "", t.Patients, t.Registrations, t.Visits, t.KitLogs, t.Total()}
	totalCell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(dataSheet, totalCell, &totals); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for _, span := range [][2]string{{"A1", "A1"}, {"A3", "H3"}, {totalCell, fmt.Sprintf("H%d", line)}} {
		if err := f.SetCellStyle(dataSheet, span[0], span[1], bold); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(dataSheet, "A", "C", 22); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(dataSheet, "D", "H", 16); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
