package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/service/reporting"
)

// Sheet names of the yearly workbook.
const (
	SheetSummary    = "Summary"
	SheetActivities = "Activities"
	SheetYields     = "Yields"
)

// WriteYearlyXLSX renders the yearly report, and the analytics when given, as
// an Excel workbook.
func WriteYearlyXLSX(w io.Writer, report models.YearlyReport, analytics *models.Analytics) error {
	f, err := YearlyWorkbook(report, analytics)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// YearlyWorkbook builds the workbook in memory.
func YearlyWorkbook(report models.YearlyReport, analytics *models.Analytics) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}

	if err := writeSummary(f, report, analytics); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeActivities(f, report); err != nil {
		f.Close()
		return nil, err
	}
	if analytics != nil {
		if err := writeYields(f, analytics.Yields); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSummary(f *excelize.File, report models.YearlyReport, analytics *models.Analytics) error {
	busiest := report.BusiestMonth
	if busiest == "" {
		busiest = "N/A"
	}
	rows := [][]interface{}{
		{"Farm Activity Report", report.Year},
		{"Generated", report.GeneratedAt.Format("January 2, 2006")},
		{"Total Activities", report.TotalActivities},
		{"Total Hours", report.TotalHours},
		{"Busiest Month", busiest},
	}
	if analytics != nil {
		rows = append(rows,
			[]interface{}{"Total Revenue", analytics.TotalRevenue},
			[]interface{}{"Total Expenses", analytics.TotalExpenses},
			[]interface{}{"Net Profit", analytics.NetProfit},
			[]interface{}{"Profit Margin (%)", analytics.ProfitMargin},
		)
	}
	rows = append(rows, []interface{}{}, []interface{}{"Activity Type", "Count"})
	for _, tc := range report.ActivityTypes {
		rows = append(rows, []interface{}{tc.Type, tc.Count})
	}
	return writeRows(f, SheetSummary, rows)
}

func writeActivities(f *excelize.File, report models.YearlyReport) error {
	if _, err := f.NewSheet(SheetActivities); err != nil {
		return fmt.Errorf("create %s sheet: %w", SheetActivities, err)
	}
	rows := [][]interface{}{{"Month", "Date", "Type", "Description", "Hours"}}
	for _, month := range report.Months {
		for _, a := range month.Activities {
			rows = append(rows, []interface{}{month.Name, a.Date.String(), reporting.FormatLabel(a.Type), a.Description, a.Duration})
		}
	}
	return writeRows(f, SheetActivities, rows)
}

func writeYields(f *excelize.File, yields []models.YieldPerformance) error {
	if _, err := f.NewSheet(SheetYields); err != nil {
		return fmt.Errorf("create %s sheet: %w", SheetYields, err)
	}
	rows := [][]interface{}{{"Crop", "Unit", "Expected", "Actual", "Difference", "Performance (%)", "Rating"}}
	for _, y := range yields {
		rows = append(rows, []interface{}{y.Crop, y.Unit, y.Expected, y.Actual, y.Difference, y.Performance, y.Rating})
	}
	return writeRows(f, SheetYields, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
