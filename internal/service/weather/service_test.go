package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmdiary/internal/observability"
	"github.com/mamadbah2/farmdiary/internal/repository/memory"
	"github.com/mamadbah2/farmdiary/pkg/clients/openweather"
)

type fakeClient struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, city string) (*openweather.CurrentResponse, error)
}

func (f *fakeClient) CurrentWeather(ctx context.Context, city string) (*openweather.CurrentResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, city)
	f.mu.Unlock()
	return f.fn(ctx, city)
}

func response(city string, temp float64) *openweather.CurrentResponse {
	r := &openweather.CurrentResponse{Name: city, Visibility: 8500}
	r.Main.Temp = temp
	r.Main.FeelsLike = temp + 2.4
	r.Main.Humidity = 80
	r.Main.Pressure = 1012
	r.Wind.Speed = 5
	r.Sys.Country = "GH"
	r.Weather = append(r.Weather, struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	}{Main: "Rain", Description: "light rain"})
	return r
}

func okClient() *fakeClient {
	return &fakeClient{fn: func(_ context.Context, city string) (*openweather.CurrentResponse, error) {
		return response(city, 27.5), nil
	}}
}

func newTestService(client openweather.Client) (*Service, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.May, 2, 14, 0, 0, 0, time.UTC))
	return NewService(client, memory.NewStore(), clock, 0, metrics, nil), metrics
}

func TestSearch_MapsResponse(t *testing.T) {
	svc, metrics := newTestService(okClient())

	data, err := svc.Search(context.Background(), "  Kumasi ")
	require.NoError(t, err)

	assert.Equal(t, "Kumasi", data.City)
	assert.Equal(t, 28, data.Temperature)
	assert.Equal(t, 30, data.FeelsLike)
	assert.Equal(t, 18.0, data.WindSpeed)
	assert.Equal(t, 8.5, data.Visibility)
	assert.Equal(t, "light rain", data.Description)
	assert.Equal(t, "GH", data.Country)

	assert.Equal(t, data, svc.Current())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WeatherSearches.WithLabelValues("success")))

	logs, err := svc.Logs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
	assert.Equal(t, "Kumasi", logs[0].City)
}

func TestSearch_BlankCityMakesNoCall(t *testing.T) {
	client := okClient()
	svc, _ := newTestService(client)

	_, err := svc.Search(context.Background(), "   ")
	require.ErrorIs(t, err, ErrBlankCity)
	assert.Empty(t, client.calls)

	logs, err := svc.Logs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestSearch_FailureIsLoggedAndDisplayUntouched(t *testing.T) {
	client := &fakeClient{fn: func(_ context.Context, city string) (*openweather.CurrentResponse, error) {
		return nil, fmt.Errorf("%q: %w", city, openweather.ErrCityNotFound)
	}}
	svc, metrics := newTestService(client)

	_, err := svc.Search(context.Background(), "Atlantis")
	require.ErrorIs(t, err, ErrCityNotFound)
	assert.Nil(t, svc.Current())

	logs, err := svc.Logs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	assert.Contains(t, logs[0].Error, "city not found")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WeatherSearches.WithLabelValues("error")))
}

func TestSearch_FailureKeepsPreviousDisplay(t *testing.T) {
	fail := false
	client := &fakeClient{fn: func(_ context.Context, city string) (*openweather.CurrentResponse, error) {
		if fail {
			return nil, errors.New("connection reset")
		}
		return response(city, 30), nil
	}}
	svc, _ := newTestService(client)

	_, err := svc.Search(context.Background(), "Tamale")
	require.NoError(t, err)
	fail = true
	_, err = svc.Search(context.Background(), "Ho")
	require.Error(t, err)

	require.NotNil(t, svc.Current())
	assert.Equal(t, "Tamale", svc.Current().City)
}

func TestSearch_LogIsCappedMostRecentFirst(t *testing.T) {
	svc, _ := newTestService(okClient())
	ctx := context.Background()

	for i := 1; i <= 60; i++ {
		_, err := svc.Search(ctx, fmt.Sprintf("City %d", i))
		require.NoError(t, err)
	}

	logs, err := svc.Logs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, DefaultLogLimit)
	assert.Equal(t, "City 60", logs[0].City)
	assert.Equal(t, "City 11", logs[len(logs)-1].City)

	seen := map[string]bool{}
	for _, l := range logs {
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
	}
}

func TestSearch_CustomLogLimit(t *testing.T) {
	svc := NewService(okClient(), memory.NewStore(), clockwork.NewFakeClock(), 3, nil, nil)
	for i := 0; i < 5; i++ {
		_, err := svc.Search(context.Background(), "Accra")
		require.NoError(t, err)
	}
	logs, err := svc.Logs(context.Background())
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestSearch_StaleResponseDoesNotReplaceDisplay(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	client := &fakeClient{fn: func(_ context.Context, city string) (*openweather.CurrentResponse, error) {
		if city == "Slow" {
			close(entered)
			<-release
		}
		return response(city, 25), nil
	}}
	svc, metrics := newTestService(client)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Search(context.Background(), "Slow")
		done <- err
	}()
	<-entered

	_, err := svc.Search(context.Background(), "Fast")
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-done)

	require.NotNil(t, svc.Current())
	assert.Equal(t, "Fast", svc.Current().City)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StaleResponses))

	logs, err := svc.Logs(context.Background())
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestReset(t *testing.T) {
	svc, _ := newTestService(okClient())
	_, err := svc.Search(context.Background(), "Cape Coast")
	require.NoError(t, err)

	svc.Reset()
	assert.Nil(t, svc.Current())

	logs, err := svc.Logs(context.Background())
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
