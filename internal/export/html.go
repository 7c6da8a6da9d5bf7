package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/service/reporting"
)

//go:embed templates/*.html
var templatesFS embed.FS

var printTemplate = template.Must(template.New("yearly_report.html").Funcs(template.FuncMap{
	"label": reporting.FormatLabel,
	"hours": func(h float64) string { return strconv.FormatFloat(h, 'f', -1, 64) },
}).ParseFS(templatesFS, "templates/yearly_report.html"))

type printView struct {
	Report   models.YearlyReport
	Location string
}

// WriteYearlyHTML renders the printable yearly report. location is shown as
// the subtitle when not empty.
func WriteYearlyHTML(w io.Writer, report models.YearlyReport, location string) error {
	if err := printTemplate.Execute(w, printView{Report: report, Location: location}); err != nil {
		return fmt.Errorf("render yearly report: %w", err)
	}
	return nil
}
