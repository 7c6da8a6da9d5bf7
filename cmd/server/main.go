package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/config"
	"github.com/mamadbah2/farmdiary/internal/observability"
	"github.com/mamadbah2/farmdiary/internal/repository"
	"github.com/mamadbah2/farmdiary/internal/repository/sheets"
	"github.com/mamadbah2/farmdiary/internal/scheduler"
	"github.com/mamadbah2/farmdiary/internal/server/handlers"
	"github.com/mamadbah2/farmdiary/internal/server/router"
	"github.com/mamadbah2/farmdiary/internal/service/auth"
	"github.com/mamadbah2/farmdiary/internal/service/diary"
	"github.com/mamadbah2/farmdiary/internal/service/notify"
	"github.com/mamadbah2/farmdiary/internal/service/reporting"
	"github.com/mamadbah2/farmdiary/internal/service/weather"
	"github.com/mamadbah2/farmdiary/pkg/clients/openweather"
	whatsappclient "github.com/mamadbah2/farmdiary/pkg/clients/whatsapp"
	"github.com/mamadbah2/farmdiary/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid reporting timezone", zap.Error(err))
	}

	store, err := repository.Open(context.Background(), cfg.Storage, logger.Named(baseLogger, "repo"))
	if err != nil {
		baseLogger.Fatal("failed to init storage", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()

	farmAuth := auth.NewManager(store, auth.FarmDiaryOptions(), clock, metrics, logger.Named(baseLogger, "svc.auth.farm"))
	weatherAuth := auth.NewManager(store, auth.WeatherProOptions(), clock, metrics, logger.Named(baseLogger, "svc.auth.weather"))
	for _, m := range []*auth.Manager{farmAuth, weatherAuth} {
		if _, err := m.Restore(context.Background()); err != nil && !errors.Is(err, auth.ErrNotAuthenticated) {
			baseLogger.Warn("failed to restore session", zap.Error(err))
		}
	}

	var supportNotifiers []notify.Notifier
	if cfg.Email.Enabled() {
		supportNotifiers = append(supportNotifiers, notify.NewEmailNotifier(cfg.Email.SendGridAPIKey, cfg.Email.From, cfg.Email.To))
		baseLogger.Info("support email delivery enabled")
	} else {
		baseLogger.Warn("sendgrid api key missing, support requests are stored only")
	}
	supportFanout := notify.NewFanout(metrics, logger.Named(baseLogger, "notify.support"), supportNotifiers...)

	diarySvc := diary.NewService(store, clock, supportFanout, metrics, logger.Named(baseLogger, "svc.diary"))
	reportingSvc := reporting.NewService(diarySvc, clock, loc, logger.Named(baseLogger, "svc.reporting"))

	weatherClient := openweather.NewClient(openweather.Options{
		BaseURL: cfg.Weather.BaseURL,
		APIKey:  cfg.Weather.APIKey,
		Units:   cfg.Weather.Units,
		Timeout: cfg.Weather.Timeout,
	})
	if cfg.Weather.APIKey == "" {
		baseLogger.Warn("openweather api key missing, weather searches will fail")
	}
	weatherSvc := weather.NewService(weatherClient, store, clock, cfg.Weather.LogLimit, metrics, logger.Named(baseLogger, "svc.weather"))

	engine := router.New(router.Handlers{
		FarmAuth:    handlers.NewAuthHandler(farmAuth, nil, logger.Named(baseLogger, "handlers.auth.farm")),
		WeatherAuth: handlers.NewAuthHandler(weatherAuth, weatherSvc.Reset, logger.Named(baseLogger, "handlers.auth.weather")),
		Diary:       handlers.NewDiaryHandler(diarySvc, reportingSvc, logger.Named(baseLogger, "handlers.diary")),
		Reports:     handlers.NewReportHandler(reportingSvc, logger.Named(baseLogger, "handlers.reports")),
		Weather:     handlers.NewWeatherHandler(weatherSvc, logger.Named(baseLogger, "handlers.weather")),
	}, logger.Named(baseLogger, "router"))

	// Initialize Scheduler
	var digestNotifiers []notify.Notifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(whatsappclient.Options{
			BaseURL:       cfg.WhatsApp.BaseURL,
			APIVersion:    cfg.WhatsApp.APIVersion,
			AccessToken:   cfg.WhatsApp.AccessToken,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		})
		digestNotifiers = append(digestNotifiers, notify.NewWhatsAppNotifier(whatsClient, cfg.WhatsApp.ReportRecipient))
		baseLogger.Info("whatsapp digest delivery enabled")
	}
	if cfg.Email.Enabled() {
		digestNotifiers = append(digestNotifiers, notify.NewEmailNotifier(cfg.Email.SendGridAPIKey, cfg.Email.From, cfg.Email.To))
	}

	schedOpts := scheduler.Options{
		Schedule: cfg.Reporting.CronSchedule,
		Location: loc,
		Clock:    clock,
	}
	if cfg.Sheets.Enabled() {
		sheet, err := sheets.NewGoogleSheet(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init google sheet", zap.Error(err))
		}
		schedOpts.Exporter = sheets.NewExporter(sheet, logger.Named(baseLogger, "export.sheets"))
	}

	digestFanout := notify.NewFanout(metrics, logger.Named(baseLogger, "notify.digest"), digestNotifiers...)
	if digestFanout.Len() == 0 {
		baseLogger.Warn("no digest channel configured, weekly digests are only logged")
	}

	sched := scheduler.NewScheduler(
		schedOpts,
		farmAuth,
		reportingSvc,
		digestFanout,
		logger.Named(baseLogger, "scheduler"),
	)
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
