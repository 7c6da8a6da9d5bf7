package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/service/auth"
)

// Source provides a snapshot of a user's collections.
type Source interface {
	Snapshot(ctx context.Context, sess *auth.Session) (models.FarmData, error)
}

// Service exposes the derived views over a user's farm data.
type Service struct {
	source Source
	clock  clockwork.Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewService wires a new reporting service instance. loc is the farm's time
// zone; "now" and "this month" are evaluated in it.
func NewService(source Source, clock clockwork.Clock, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{source: source, clock: clock, loc: loc, logger: logger}
}

// Now returns the current time in the farm's time zone.
func (s *Service) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// Summary returns the expense and sales totals of the current month.
func (s *Service) Summary(ctx context.Context, sess *auth.Session) (models.MonthlySummary, error) {
	data, err := s.source.Snapshot(ctx, sess)
	if err != nil {
		return models.MonthlySummary{}, fmt.Errorf("load farm data: %w", err)
	}
	now := s.Now()
	return models.MonthlySummary{
		Year:          now.Year(),
		Month:         now.Month(),
		ExpensesTotal: MonthlyExpenseTotal(data.Expenses, now),
		SalesTotal:    MonthlySalesTotal(data.Sales, now),
	}, nil
}

// Yearly builds the activity report of year.
func (s *Service) Yearly(ctx context.Context, sess *auth.Session, year int) (models.YearlyReport, error) {
	data, err := s.source.Snapshot(ctx, sess)
	if err != nil {
		return models.YearlyReport{}, fmt.Errorf("load farm data: %w", err)
	}
	report := YearlyReport(data.Activities, year)
	report.GeneratedAt = s.Now()
	s.logger.Debug("yearly report built",
		zap.String("user", sess.Email()),
		zap.Int("year", year),
		zap.Int("activities", report.TotalActivities),
	)
	return report, nil
}

// YearAnalytics builds the analytics overview of year.
func (s *Service) YearAnalytics(ctx context.Context, sess *auth.Session, year int) (models.Analytics, error) {
	data, err := s.source.Snapshot(ctx, sess)
	if err != nil {
		return models.Analytics{}, fmt.Errorf("load farm data: %w", err)
	}
	return Analytics(data, year), nil
}

// Years lists the years the report selectors offer.
func (s *Service) Years(ctx context.Context, sess *auth.Session) ([]int, error) {
	data, err := s.source.Snapshot(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("load farm data: %w", err)
	}
	return AvailableYears(data, s.Now()), nil
}

// Digest renders the weekly digest of the user.
func (s *Service) Digest(ctx context.Context, sess *auth.Session) (string, error) {
	data, err := s.source.Snapshot(ctx, sess)
	if err != nil {
		return "", fmt.Errorf("load farm data: %w", err)
	}
	return WeeklyDigest(sess.User.Name, data, s.Now()), nil
}

// WeeklyDigest summarises the seven days ending on now.
func WeeklyDigest(farmer string, data models.FarmData, now time.Time) string {
	end := models.DateOf(now)
	start := models.Date{Time: end.AddDate(0, 0, -6)}
	inWeek := func(d models.Date) bool {
		return !d.IsZero() && !d.Before(start.Time) && !d.After(end.Time)
	}

	var (
		activities int
		hours      float64
		expenses   float64
		revenue    float64
	)
	for _, a := range data.Activities {
		if inWeek(a.Date) {
			activities++
			hours += a.Duration
		}
	}
	for _, e := range data.Expenses {
		if inWeek(e.Date) {
			expenses += e.Amount
		}
	}
	for _, sale := range data.Sales {
		if inWeek(sale.Date) {
			revenue += sale.TotalAmount
		}
	}

	var ready []string
	for _, c := range data.Crops {
		if CropStatus(c, now) == models.CropStatusReady {
			ready = append(ready, c.DisplayName())
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly farm digest for %s (%s to %s)\n", farmer, start, end)
	fmt.Fprintf(&b, "Activities: %d (%.1f hours)\n", activities, hours)
	fmt.Fprintf(&b, "Expenses: $%.2f\n", expenses)
	fmt.Fprintf(&b, "Sales: $%.2f\n", revenue)
	fmt.Fprintf(&b, "Net: $%.2f\n", revenue-expenses)
	if len(ready) == 0 {
		b.WriteString("No crops ready to harvest.")
	} else {
		fmt.Fprintf(&b, "Ready to harvest: %s", strings.Join(ready, ", "))
	}
	return b.String()
}
