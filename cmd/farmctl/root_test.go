package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/repository/memory"
	"github.com/mamadbah2/farmdiary/internal/service/auth"
	"github.com/mamadbah2/farmdiary/internal/service/diary"
	"github.com/mamadbah2/farmdiary/pkg/clients/openweather"
)

type trackedStore struct {
	*memory.Store
	closed int
}

func (s *trackedStore) Close(ctx context.Context) error {
	s.closed++
	return s.Store.Close(ctx)
}

type cityClient struct{}

func (cityClient) CurrentWeather(_ context.Context, city string) (*openweather.CurrentResponse, error) {
	if city == "Atlantis" {
		return nil, openweather.ErrCityNotFound
	}
	r := &openweather.CurrentResponse{Name: city, Visibility: 10000}
	r.Main.Temp = 31
	r.Main.Humidity = 70
	r.Wind.Speed = 2
	r.Sys.Country = "GH"
	return r, nil
}

func seededApp(t *testing.T) *app {
	t.Helper()
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC))
	a := newApp(&trackedStore{Store: memory.NewStore()}, cityClient{}, clock, time.UTC, 50)

	sess, err := a.farm.Register(ctx, auth.RegisterInput{
		Name:     "Ama Owusu",
		Email:    "ama@farm.gh",
		Password: "secret1",
	})
	require.NoError(t, err)

	for _, in := range []diary.ActivityInput{
		{Date: models.MustParseDate("2024-03-02"), Type: "planting", Duration: 4},
		{Date: models.MustParseDate("2024-03-09"), Type: "weeding", Duration: 2},
		{Date: models.MustParseDate("2024-05-20"), Type: "planting", Duration: 3},
	} {
		_, err := a.diary.CreateActivity(ctx, sess, in)
		require.NoError(t, err)
	}
	return a
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	load := func(context.Context, string) (*app, error) { return a, nil }

	cmd := newRootCmd(load)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUsersCommand(t *testing.T) {
	out, err := run(t, seededApp(t), "users")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "ama@farm.gh")
	assert.Contains(t, out, "Ghana")
}

func TestReportCommand_JSON(t *testing.T) {
	out, err := run(t, seededApp(t), "report", "--email", "AMA@farm.gh", "--year", "2024", "--format", "json")
	require.NoError(t, err)

	var report models.YearlyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.TotalActivities)
	assert.Equal(t, 9.0, report.TotalHours)
	assert.Equal(t, "March", report.BusiestMonth)
}

func TestReportCommand_TextDefaultsToCurrentYear(t *testing.T) {
	out, err := run(t, seededApp(t), "report", "--email", "ama@farm.gh")
	require.NoError(t, err)
	assert.Contains(t, out, "2024")
	assert.Contains(t, out, "March (2)")
	assert.Contains(t, out, "Planting")
}

func TestReportCommand_EmptyYear(t *testing.T) {
	out, err := run(t, seededApp(t), "report", "--email", "ama@farm.gh", "--year", "2019")
	require.NoError(t, err)
	assert.Contains(t, out, "No activities recorded in 2019.")
}

func TestReportCommand_XLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	_, err := run(t, seededApp(t), "report", "--email", "ama@farm.gh", "--format", "xlsx", "-o", path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")
}

func TestReportCommand_Errors(t *testing.T) {
	_, err := run(t, seededApp(t), "report", "--email", "nobody@farm.gh")
	assert.ErrorContains(t, err, "no farmer registered")

	_, err = run(t, seededApp(t), "report", "--email", "ama@farm.gh", "--format", "pdf")
	assert.ErrorContains(t, err, `unknown format "pdf"`)

	_, err = run(t, seededApp(t), "report", "--email", "ama@farm.gh", "--format", "xlsx")
	assert.ErrorContains(t, err, "needs --output")

	_, err = run(t, seededApp(t), "report")
	assert.ErrorContains(t, err, "email")
}

func TestAnalyticsCommand(t *testing.T) {
	out, err := run(t, seededApp(t), "analytics", "--email", "ama@farm.gh", "--year", "2024")
	require.NoError(t, err)

	var analytics models.Analytics
	require.NoError(t, json.Unmarshal([]byte(out), &analytics))
	assert.Equal(t, 2024, analytics.Year)
}

func TestDigestCommand(t *testing.T) {
	out, err := run(t, seededApp(t), "digest", "--email", "ama@farm.gh")
	require.NoError(t, err)
	assert.Contains(t, out, "Weekly farm digest for Ama Owusu")
}

func TestWeatherCommands(t *testing.T) {
	a := seededApp(t)

	out, err := run(t, a, "weather", "search", "Cape", "Coast")
	require.NoError(t, err)
	assert.Contains(t, out, "Cape Coast, GH: 31°")

	_, err = run(t, a, "weather", "search", "Atlantis")
	assert.ErrorIs(t, err, openweather.ErrCityNotFound)

	out, err = run(t, a, "weather", "logs", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Atlantis")
	assert.NotContains(t, out, "Cape Coast")
}

func TestStoreClosedAfterEveryRun(t *testing.T) {
	a := seededApp(t)
	store := a.store.(*trackedStore)

	_, err := run(t, a, "users")
	require.NoError(t, err)
	assert.Equal(t, 1, store.closed)

	_, err = run(t, a, "report", "--email", "nobody@farm.gh")
	require.Error(t, err)
	assert.Equal(t, 2, store.closed)

	_, err = run(t, a, "weather", "search", "Atlantis")
	require.Error(t, err)
	assert.Equal(t, 3, store.closed)
}
