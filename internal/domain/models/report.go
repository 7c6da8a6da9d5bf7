package models

import "time"

// MonthlySummary carries the current-month expense and sales totals.
type MonthlySummary struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	ExpensesTotal float64    `json:"expensesTotal"`
	SalesTotal    float64    `json:"salesTotal"`
}

// MonthActivities groups one calendar month of activities, oldest first.
type MonthActivities struct {
	Month      time.Month       `json:"month"`
	Name       string           `json:"name"`
	Activities []ActivityRecord `json:"activities"`
}

// TypeCount is one row of the activity-type frequency table.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// YearlyReport is the printable activity report for one calendar year.
type YearlyReport struct {
	Year              int               `json:"year"`
	GeneratedAt       time.Time         `json:"generatedAt"`
	Months            []MonthActivities `json:"months"`
	TotalActivities   int               `json:"totalActivities"`
	TotalHours        float64           `json:"totalHours"`
	ActivityTypes     []TypeCount       `json:"activityTypes"`
	BusiestMonth      string            `json:"busiestMonth"`
	BusiestMonthCount int               `json:"busiestMonthCount"`
}

// Empty reports whether the year had no activities.
func (r YearlyReport) Empty() bool { return r.TotalActivities == 0 }

// Yield performance ratings.
const (
	YieldOver  = "over"
	YieldNear  = "near"
	YieldUnder = "under"
)

// YieldPerformance compares a crop's actual yield with its expectation.
type YieldPerformance struct {
	CropID      int64   `json:"cropId"`
	Crop        string  `json:"crop"`
	Unit        string  `json:"unit"`
	Expected    float64 `json:"expected"`
	Actual      float64 `json:"actual"`
	Performance float64 `json:"performance"`
	Difference  float64 `json:"difference"`
	Rating      string  `json:"rating"`
}

// MonthlyWeather holds the averages of the weather records of one month.
// AvgTemperature is nil when no record of the month had a temperature.
type MonthlyWeather struct {
	Month          time.Month `json:"month"`
	Name           string     `json:"name"`
	Records        int        `json:"records"`
	AvgRainfall    float64    `json:"avgRainfall"`
	AvgTemperature *float64   `json:"avgTemperature"`
}

// Analytics is the profit/loss, yield and weather overview of one year.
type Analytics struct {
	Year          int                `json:"year"`
	TotalRevenue  float64            `json:"totalRevenue"`
	TotalExpenses float64            `json:"totalExpenses"`
	NetProfit     float64            `json:"netProfit"`
	ProfitMargin  float64            `json:"profitMargin"`
	SalesCount    int                `json:"salesCount"`
	ExpenseCount  int                `json:"expenseCount"`
	Yields        []YieldPerformance `json:"yields"`
	Weather       []MonthlyWeather   `json:"weather"`
}

// FarmData is a snapshot of every collection of one user.
type FarmData struct {
	Activities []ActivityRecord `json:"activities"`
	Crops      []CropRecord     `json:"crops"`
	Weather    []WeatherRecord  `json:"weather"`
	Expenses   []ExpenseRecord  `json:"expenses"`
	Sales      []SaleRecord     `json:"sales"`
	Support    []SupportRequest `json:"support"`
}
