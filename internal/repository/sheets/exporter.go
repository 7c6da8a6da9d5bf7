package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
)

const (
	analyticsRange = "Analytics!A:J"
	headerRange    = "Analytics!A1:J1"
	dateLayout     = "2006-01-02"
)

var analyticsHeader = []interface{}{
	"Date", "Email", "Location", "Year", "Activities",
	"Revenue", "Expenses", "Net Profit", "Margin %", "Crops",
}

// Exporter appends one analytics row per farmer to the shared spreadsheet.
type Exporter struct {
	sheet  Sheet
	logger *zap.Logger
}

// NewExporter wraps a sheet.
func NewExporter(sheet Sheet, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{sheet: sheet, logger: logger}
}

// PushAnalytics appends the yearly figures of one farmer as of the given day.
// The header row is written first when the sheet is still empty.
func (e *Exporter) PushAnalytics(ctx context.Context, asOf time.Time, farmer models.Profile, a models.Analytics, activities int) error {
	rows := [][]interface{}{{
		asOf.Format(dateLayout),
		farmer.Email,
		farmer.Location,
		a.Year,
		activities,
		a.TotalRevenue,
		a.TotalExpenses,
		a.NetProfit,
		fmt.Sprintf("%.1f", a.ProfitMargin),
		len(a.Yields),
	}}

	header, err := e.sheet.ReadRange(ctx, headerRange)
	if err != nil {
		return fmt.Errorf("export analytics for %s: %w", farmer.Email, err)
	}
	if len(header) == 0 {
		rows = append([][]interface{}{analyticsHeader}, rows...)
	}

	if err := e.sheet.AppendRows(ctx, analyticsRange, rows); err != nil {
		return fmt.Errorf("export analytics for %s: %w", farmer.Email, err)
	}
	e.logger.Debug("analytics exported", zap.String("user", farmer.Email), zap.Int("year", a.Year))
	return nil
}

// ExportedRows reads back the rows previously pushed for the given email.
func (e *Exporter) ExportedRows(ctx context.Context, email string) ([][]interface{}, error) {
	rows, err := e.sheet.ReadRange(ctx, analyticsRange)
	if err != nil {
		return nil, err
	}
	var out [][]interface{}
	for _, row := range rows {
		if len(row) > 1 && fmt.Sprint(row[1]) == email {
			out = append(out, row)
		}
	}
	return out, nil
}
