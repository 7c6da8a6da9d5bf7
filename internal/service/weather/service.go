package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/observability"
	"github.com/mamadbah2/farmdiary/internal/repository/storage"
	"github.com/mamadbah2/farmdiary/pkg/clients/openweather"
)

const (
	// LogKey is the storage key of the rolling search log.
	LogKey = "weatherSearchLogs"
	// DefaultLogLimit is the number of search log entries retained.
	DefaultLogLimit = 50
)

// ErrBlankCity is returned before any network call when the city is empty.
var ErrBlankCity = errors.New("please enter a city name")

// ErrCityNotFound is re-exported so callers need not import the client.
var ErrCityNotFound = openweather.ErrCityNotFound

// Service performs Weather Pro lookups and keeps the rolling search log.
type Service struct {
	client   openweather.Client
	store    storage.Store
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *zap.Logger
	logLimit int

	mu      sync.Mutex
	seq     uint64
	current *models.WeatherData
}

// NewService wires the lookup service. A non-positive logLimit selects
// DefaultLogLimit.
func NewService(client openweather.Client, store storage.Store, clock clockwork.Clock, logLimit int, metrics *observability.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = observability.Nop()
	}
	if logLimit <= 0 {
		logLimit = DefaultLogLimit
	}
	return &Service{
		client:   client,
		store:    store,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
		logLimit: logLimit,
	}
}

// Search looks up the current weather of city, records the attempt in the
// rolling log and, unless a newer search was issued meanwhile, makes the
// result the display record.
func (s *Service) Search(ctx context.Context, city string) (*models.WeatherData, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		s.metrics.WeatherSearches.WithLabelValues("blank").Inc()
		return nil, ErrBlankCity
	}

	s.mu.Lock()
	s.seq++
	ticket := s.seq
	s.mu.Unlock()

	started := s.clock.Now()
	resp, err := s.client.CurrentWeather(ctx, city)
	s.metrics.WeatherAPIDuration.Observe(s.clock.Since(started).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := models.SearchLog{City: city, Timestamp: s.clock.Now().UTC(), Success: err == nil}
	if err != nil {
		entry.Error = err.Error()
	}
	if logErr := s.appendLog(ctx, entry); logErr != nil {
		s.logger.Error("failed to persist weather search log", zap.String("city", city), zap.Error(logErr))
	}

	if err != nil {
		s.metrics.WeatherSearches.WithLabelValues("error").Inc()
		s.logger.Info("weather search failed", zap.String("city", city), zap.Error(err))
		return nil, fmt.Errorf("search weather: %w", err)
	}
	s.metrics.WeatherSearches.WithLabelValues("success").Inc()

	data := toWeatherData(resp, entry.Timestamp)
	if ticket != s.seq {
		s.metrics.StaleResponses.Inc()
		s.logger.Debug("discarding stale weather response", zap.String("city", city), zap.Uint64("ticket", ticket), zap.Uint64("latest", s.seq))
		return &data, nil
	}

	s.current = &data
	return &data, nil
}

// Current returns the display record, or nil before any successful search.
func (s *Service) Current() *models.WeatherData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	current := *s.current
	return &current
}

// Reset clears the display record. The search log is left in place.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.seq++
}

// Logs returns the rolling search log, most recent first.
func (s *Service) Logs(ctx context.Context) ([]models.SearchLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLog(ctx)
}

func (s *Service) loadLog(ctx context.Context) ([]models.SearchLog, error) {
	var entries []models.SearchLog
	if _, err := storage.LoadJSON(ctx, s.store, LogKey, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.SearchLog{}
	}
	return entries, nil
}

// appendLog prepends entry and evicts the oldest entries past the limit.
// Callers hold s.mu.
func (s *Service) appendLog(ctx context.Context, entry models.SearchLog) error {
	entries, err := s.loadLog(ctx)
	if err != nil {
		return err
	}

	id := entry.Timestamp.UnixMilli()
	if len(entries) > 0 {
		if last, err := strconv.ParseInt(entries[0].ID, 10, 64); err == nil && last >= id {
			id = last + 1
		}
	}
	entry.ID = strconv.FormatInt(id, 10)

	updated := make([]models.SearchLog, 0, len(entries)+1)
	updated = append(updated, entry)
	updated = append(updated, entries...)
	if len(updated) > s.logLimit {
		updated = updated[:s.logLimit]
	}
	return storage.SaveJSON(ctx, s.store, LogKey, updated)
}

func toWeatherData(resp *openweather.CurrentResponse, ts time.Time) models.WeatherData {
	return models.WeatherData{
		City:        resp.Name,
		Country:     resp.Sys.Country,
		Temperature: int(math.Round(resp.Main.Temp)),
		FeelsLike:   int(math.Round(resp.Main.FeelsLike)),
		Description: resp.Description(),
		Humidity:    resp.Main.Humidity,
		Pressure:    resp.Main.Pressure,
		WindSpeed:   math.Round(resp.Wind.Speed*3.6*10) / 10,
		Visibility:  resp.Visibility / 1000,
		Timestamp:   ts,
	}
}
