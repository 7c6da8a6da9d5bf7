package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/export"
	"github.com/mamadbah2/farmdiary/internal/service/reporting"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler exposes the derived views and their printable exports.
type ReportHandler struct {
	reports *reporting.Service
	logger  *zap.Logger
}

// NewReportHandler constructs the reporting HTTP adapter.
func NewReportHandler(reports *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, logger: logger}
}

// MonthlySummary returns this month's expense and sales totals.
func (h *ReportHandler) MonthlySummary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context(), sessionFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Years lists the selectable report years.
func (h *ReportHandler) Years(c *gin.Context) {
	years, err := h.reports.Years(c.Request.Context(), sessionFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

// Yearly returns the yearly activity report as JSON.
func (h *ReportHandler) Yearly(c *gin.Context) {
	year, err := h.year(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	report, err := h.reports.Yearly(c.Request.Context(), sessionFrom(c), year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// YearlyPrint renders the printable yearly report.
func (h *ReportHandler) YearlyPrint(c *gin.Context) {
	year, err := h.year(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sess := sessionFrom(c)
	report, err := h.reports.Yearly(c.Request.Context(), sess, year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteYearlyHTML(&buf, report, sess.User.Location); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// YearlyXLSX downloads the yearly report and analytics as a workbook.
func (h *ReportHandler) YearlyXLSX(c *gin.Context) {
	year, err := h.year(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ctx := c.Request.Context()
	sess := sessionFrom(c)

	report, err := h.reports.Yearly(ctx, sess, year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	analytics, err := h.reports.YearAnalytics(ctx, sess, year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteYearlyXLSX(&buf, report, &analytics); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="farm-report-%d.xlsx"`, year))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Analytics returns the yearly profit/loss, yield and weather overview.
func (h *ReportHandler) Analytics(c *gin.Context) {
	year, err := h.year(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	analytics, err := h.reports.YearAnalytics(c.Request.Context(), sessionFrom(c), year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// year reads ?year=, defaulting to the current year.
func (h *ReportHandler) year(c *gin.Context) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return h.reports.Now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("%w: invalid year %q", errBadRequest, raw)
	}
	return year, nil
}
