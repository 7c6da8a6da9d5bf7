package reporting

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
)

// defaultYieldUnit is shown when a crop was saved without a unit.
const defaultYieldUnit = "kg"

// CropStatus derives the live status of a crop from its dates. A crop without
// an expected harvest date stays Planted.
func CropStatus(crop models.CropRecord, now time.Time) string {
	if crop.ExpectedHarvest.IsZero() {
		return models.CropStatusPlanted
	}
	today := models.DateOf(now)
	switch {
	case !today.Before(crop.ExpectedHarvest.Time):
		return models.CropStatusReady
	case !crop.PlantingDate.IsZero() && !today.Before(crop.PlantingDate.Time):
		return models.CropStatusGrowing
	default:
		return models.CropStatusPlanted
	}
}

// MonthlyExpenseTotal sums the expenses dated in the month of asOf.
func MonthlyExpenseTotal(expenses []models.ExpenseRecord, asOf time.Time) float64 {
	var total float64
	for _, e := range expenses {
		if e.Date.SameMonth(asOf) {
			total += e.Amount
		}
	}
	return total
}

// MonthlySalesTotal sums the sale totals dated in the month of asOf.
func MonthlySalesTotal(sales []models.SaleRecord, asOf time.Time) float64 {
	var total float64
	for _, s := range sales {
		if s.Date.SameMonth(asOf) {
			total += s.TotalAmount
		}
	}
	return total
}

// YearlyReport groups the activities of year by calendar month. Ties for the
// busiest month go to the earliest month.
func YearlyReport(activities []models.ActivityRecord, year int) models.YearlyReport {
	report := models.YearlyReport{Year: year, Months: []models.MonthActivities{}, ActivityTypes: []models.TypeCount{}}

	var byMonth [12][]models.ActivityRecord
	typeCounts := map[string]int{}
	for _, a := range activities {
		if a.Date.IsZero() || a.Date.Year() != year {
			continue
		}
		byMonth[a.Date.Month()-1] = append(byMonth[a.Date.Month()-1], a)
		report.TotalActivities++
		report.TotalHours += a.Duration
		typeCounts[FormatLabel(a.Type)]++
	}

	for i, group := range byMonth {
		if len(group) == 0 {
			continue
		}
		sort.SliceStable(group, func(a, b int) bool { return group[a].Date.Before(group[b].Date.Time) })
		month := time.Month(i + 1)
		report.Months = append(report.Months, models.MonthActivities{Month: month, Name: month.String(), Activities: group})
		if len(group) > report.BusiestMonthCount {
			report.BusiestMonth = month.String()
			report.BusiestMonthCount = len(group)
		}
	}

	for label, count := range typeCounts {
		report.ActivityTypes = append(report.ActivityTypes, models.TypeCount{Type: label, Count: count})
	}
	sort.Slice(report.ActivityTypes, func(i, j int) bool {
		if report.ActivityTypes[i].Count != report.ActivityTypes[j].Count {
			return report.ActivityTypes[i].Count > report.ActivityTypes[j].Count
		}
		return report.ActivityTypes[i].Type < report.ActivityTypes[j].Type
	})

	return report
}

// Analytics computes the profit/loss, yield and weather overview of year.
func Analytics(data models.FarmData, year int) models.Analytics {
	out := models.Analytics{Year: year, Yields: []models.YieldPerformance{}, Weather: []models.MonthlyWeather{}}

	for _, e := range data.Expenses {
		if e.Date.Year() == year && !e.Date.IsZero() {
			out.TotalExpenses += e.Amount
			out.ExpenseCount++
		}
	}
	for _, s := range data.Sales {
		if s.Date.Year() == year && !s.Date.IsZero() {
			out.TotalRevenue += s.TotalAmount
			out.SalesCount++
		}
	}
	out.NetProfit = out.TotalRevenue - out.TotalExpenses
	if out.TotalRevenue > 0 {
		out.ProfitMargin = out.NetProfit / out.TotalRevenue * 100
	}

	for _, c := range data.Crops {
		if c.PlantingDate.IsZero() || c.PlantingDate.Year() != year {
			continue
		}
		out.Yields = append(out.Yields, YieldFor(c))
	}

	out.Weather = monthlyWeather(data.Weather, year)
	return out
}

// YieldFor compares a crop's actual yield against the expectation.
func YieldFor(c models.CropRecord) models.YieldPerformance {
	unit := c.YieldUnit
	if unit == "" {
		unit = defaultYieldUnit
	}
	y := models.YieldPerformance{
		CropID:     c.ID,
		Crop:       c.DisplayName(),
		Unit:       unit,
		Expected:   c.ExpectedYield,
		Actual:     c.ActualYield,
		Difference: c.ActualYield - c.ExpectedYield,
	}
	if c.ExpectedYield > 0 {
		y.Performance = c.ActualYield / c.ExpectedYield * 100
	}
	switch {
	case y.Performance >= 100:
		y.Rating = models.YieldOver
	case y.Performance >= 90:
		y.Rating = models.YieldNear
	default:
		y.Rating = models.YieldUnder
	}
	return y
}

func monthlyWeather(records []models.WeatherRecord, year int) []models.MonthlyWeather {
	type acc struct {
		count    int
		rainfall float64
		temps    int
		tempSum  float64
	}
	var months [12]acc
	for _, w := range records {
		if w.Date.IsZero() || w.Date.Year() != year {
			continue
		}
		m := &months[w.Date.Month()-1]
		m.count++
		m.rainfall += w.Rainfall
		if w.Temperature != nil {
			m.temps++
			m.tempSum += *w.Temperature
		}
	}

	out := []models.MonthlyWeather{}
	for i, m := range months {
		if m.count == 0 {
			continue
		}
		month := time.Month(i + 1)
		entry := models.MonthlyWeather{
			Month:       month,
			Name:        month.String()[:3],
			Records:     m.count,
			AvgRainfall: m.rainfall / float64(m.count),
		}
		if m.temps > 0 {
			avg := m.tempSum / float64(m.temps)
			entry.AvgTemperature = &avg
		}
		out = append(out, entry)
	}
	return out
}

// AvailableYears lists the current year plus every year with activities,
// sales or expenses, newest first.
func AvailableYears(data models.FarmData, now time.Time) []int {
	seen := map[int]struct{}{now.Year(): {}}
	add := func(d models.Date) {
		if !d.IsZero() {
			seen[d.Year()] = struct{}{}
		}
	}
	for _, a := range data.Activities {
		add(a.Date)
	}
	for _, s := range data.Sales {
		add(s.Date)
	}
	for _, e := range data.Expenses {
		add(e.Date)
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// FormatLabel turns stored identifiers such as "soil-prep" into "Soil Prep".
// Only the first letter of each word changes case.
func FormatLabel(value string) string {
	words := strings.FieldsFunc(value, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		r, n := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[n:]
	}
	return strings.Join(words, " ")
}
