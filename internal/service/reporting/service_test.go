package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/service/auth"
)

type staticSource struct {
	data models.FarmData
	err  error
}

func (s staticSource) Snapshot(context.Context, *auth.Session) (models.FarmData, error) {
	return s.data, s.err
}

var farmer = &auth.Session{User: models.User{Name: "Kwame", Email: "kwame@farm.gh"}}

func TestService_Summary(t *testing.T) {
	src := staticSource{data: models.FarmData{
		Expenses: []models.ExpenseRecord{
			{Date: date("2024-01-05"), Amount: 10},
			{Date: date("2024-02-05"), Amount: 20},
		},
		Sales: []models.SaleRecord{{Date: date("2024-02-10"), TotalAmount: 45}},
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.February, 14, 12, 0, 0, 0, time.UTC))
	svc := NewService(src, clock, nil, nil)

	summary, err := svc.Summary(context.Background(), farmer)
	require.NoError(t, err)
	assert.Equal(t, 20.0, summary.ExpensesTotal)
	assert.Equal(t, 45.0, summary.SalesTotal)
	assert.Equal(t, time.February, summary.Month)
}

func TestService_SummaryUsesFarmTimeZone(t *testing.T) {
	east := time.FixedZone("GMT+2", 2*60*60)
	src := staticSource{data: models.FarmData{
		Expenses: []models.ExpenseRecord{{Date: date("2024-03-01"), Amount: 5}},
	}}
	// 23:30 UTC on Feb 29 is already March 1 two hours east.
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.February, 29, 23, 30, 0, 0, time.UTC))

	summary, err := NewService(src, clock, east, nil).Summary(context.Background(), farmer)
	require.NoError(t, err)
	assert.Equal(t, 5.0, summary.ExpensesTotal)
}

func TestService_PropagatesSourceErrors(t *testing.T) {
	svc := NewService(staticSource{err: errors.New("disk full")}, nil, nil, nil)

	_, err := svc.Yearly(context.Background(), farmer, 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestService_YearlySetsGeneratedAt(t *testing.T) {
	now := time.Date(2024, time.December, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(staticSource{}, clockwork.NewFakeClockAt(now), nil, nil)

	report, err := svc.Yearly(context.Background(), farmer, 2024)
	require.NoError(t, err)
	assert.Equal(t, now, report.GeneratedAt)
	assert.True(t, report.Empty())
}

func TestWeeklyDigest(t *testing.T) {
	now := time.Date(2024, time.June, 14, 18, 0, 0, 0, time.UTC)
	data := models.FarmData{
		Activities: []models.ActivityRecord{
			{Date: date("2024-06-08"), Duration: 2},
			{Date: date("2024-06-14"), Duration: 1.5},
			{Date: date("2024-06-07"), Duration: 9},
		},
		Expenses: []models.ExpenseRecord{{Date: date("2024-06-10"), Amount: 40}},
		Sales:    []models.SaleRecord{{Date: date("2024-06-12"), TotalAmount: 100}},
		Crops: []models.CropRecord{
			{Name: "Maize", PlantingDate: date("2024-03-01"), ExpectedHarvest: date("2024-06-01")},
			{Name: "Okra", PlantingDate: date("2024-05-01"), ExpectedHarvest: date("2024-07-01")},
		},
	}

	digest := WeeklyDigest("Kwame", data, now)

	assert.Contains(t, digest, "2024-06-08 to 2024-06-14")
	assert.Contains(t, digest, "Activities: 2 (3.5 hours)")
	assert.Contains(t, digest, "Expenses: $40.00")
	assert.Contains(t, digest, "Net: $60.00")
	assert.Contains(t, digest, "Ready to harvest: Maize")
	assert.NotContains(t, digest, "Okra")
}
