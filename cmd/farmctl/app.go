package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/config"
	"github.com/mamadbah2/farmdiary/internal/observability"
	"github.com/mamadbah2/farmdiary/internal/repository"
	"github.com/mamadbah2/farmdiary/internal/repository/storage"
	"github.com/mamadbah2/farmdiary/internal/service/auth"
	"github.com/mamadbah2/farmdiary/internal/service/diary"
	"github.com/mamadbah2/farmdiary/internal/service/reporting"
	"github.com/mamadbah2/farmdiary/internal/service/weather"
	"github.com/mamadbah2/farmdiary/pkg/clients/openweather"
)

// app holds the services the commands operate on.
type app struct {
	store   storage.Store
	farm    *auth.Manager
	diary   *diary.Service
	reports *reporting.Service
	weather *weather.Service
}

// appLoader builds the app for one command invocation.
type appLoader func(ctx context.Context, envFile string) (*app, error)

func loadApp(ctx context.Context, envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Reporting.Location()
	if err != nil {
		return nil, err
	}
	store, err := repository.Open(ctx, cfg.Storage, zap.NewNop())
	if err != nil {
		return nil, err
	}

	client := openweather.NewClient(openweather.Options{
		BaseURL: cfg.Weather.BaseURL,
		APIKey:  cfg.Weather.APIKey,
		Units:   cfg.Weather.Units,
		Timeout: cfg.Weather.Timeout,
	})
	return newApp(store, client, clockwork.NewRealClock(), loc, cfg.Weather.LogLimit), nil
}

func newApp(store storage.Store, client openweather.Client, clock clockwork.Clock, loc *time.Location, logLimit int) *app {
	metrics := observability.Nop()
	diarySvc := diary.NewService(store, clock, nil, metrics, nil)
	return &app{
		store:   store,
		farm:    auth.NewManager(store, auth.FarmDiaryOptions(), clock, metrics, nil),
		diary:   diarySvc,
		reports: reporting.NewService(diarySvc, clock, loc, nil),
		weather: weather.NewService(client, store, clock, logLimit, metrics, nil),
	}
}

// farmer finds a registered farm diary user by email.
func (a *app) farmer(ctx context.Context, email string) (*auth.Session, error) {
	users, err := a.farm.Users(ctx)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(strings.TrimSpace(email))
	for _, u := range users {
		if u.Email == want {
			return auth.SessionFor(u), nil
		}
	}
	return nil, fmt.Errorf("no farmer registered as %q", email)
}

func (a *app) close(ctx context.Context) error {
	return a.store.Close(ctx)
}
