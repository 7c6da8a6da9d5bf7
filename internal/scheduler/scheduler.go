package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/service/auth"
	"github.com/mamadbah2/farmdiary/internal/service/notify"
)

// UserLister enumerates the registered farmers.
type UserLister interface {
	Users(ctx context.Context) ([]models.Profile, error)
}

// Reporter produces the per-farmer figures sent out each week.
type Reporter interface {
	Digest(ctx context.Context, sess *auth.Session) (string, error)
	Yearly(ctx context.Context, sess *auth.Session, year int) (models.YearlyReport, error)
	YearAnalytics(ctx context.Context, sess *auth.Session, year int) (models.Analytics, error)
}

// AnalyticsExporter pushes a farmer's yearly figures to an external sheet.
type AnalyticsExporter interface {
	PushAnalytics(ctx context.Context, asOf time.Time, farmer models.Profile, a models.Analytics, activities int) error
}

// Options configures the scheduler.
type Options struct {
	// Schedule is a standard five-field cron expression.
	Schedule string
	Location *time.Location
	Clock    clockwork.Clock
	// Exporter is optional.
	Exporter AnalyticsExporter
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	loc      *time.Location
	clock    clockwork.Clock
	users    UserLister
	reports  Reporter
	notifier notify.Notifier
	exporter AnalyticsExporter
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(opts Options, users UserLister, reports Reporter, notifier notify.Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(opts.Location)),
		schedule: opts.Schedule,
		loc:      opts.Location,
		clock:    opts.Clock,
		users:    users,
		reports:  reports,
		notifier: notifier,
		exporter: opts.Exporter,
		logger:   logger,
	}
}

// Start registers the weekly digest job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.loc.String()))

	if _, err := s.cron.AddFunc(s.schedule, s.sendWeeklyDigests); err != nil {
		return fmt.Errorf("schedule weekly digest %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyDigests() {
	s.logger.Info("generating weekly digests")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunWeeklyDigest(ctx); err != nil {
		s.logger.Error("weekly digest run had failures", zap.Error(err))
		return
	}
	s.logger.Info("weekly digests sent successfully")
}

// RunWeeklyDigest sends one digest per farmer and, when an exporter is
// configured, pushes their analytics for the current year. A failure for one
// farmer does not stop the others; all failures are returned joined.
func (s *Scheduler) RunWeeklyDigest(ctx context.Context) error {
	users, err := s.users.Users(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	now := s.clock.Now().In(s.loc)
	var errs []error
	for _, farmer := range users {
		if err := s.digestFor(ctx, now, farmer); err != nil {
			s.logger.Warn("weekly digest failed", zap.String("user", farmer.Email), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) digestFor(ctx context.Context, now time.Time, farmer models.Profile) error {
	sess := auth.SessionFor(farmer)

	digest, err := s.reports.Digest(ctx, sess)
	if err != nil {
		return fmt.Errorf("digest for %s: %w", farmer.Email, err)
	}
	msg := notify.Message{Subject: fmt.Sprintf("Weekly farm digest: %s", farmer.Name), Body: digest}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("send digest to %s: %w", farmer.Email, err)
	}

	if s.exporter == nil {
		return nil
	}
	analytics, err := s.reports.YearAnalytics(ctx, sess, now.Year())
	if err != nil {
		return fmt.Errorf("analytics for %s: %w", farmer.Email, err)
	}
	report, err := s.reports.Yearly(ctx, sess, now.Year())
	if err != nil {
		return fmt.Errorf("yearly report for %s: %w", farmer.Email, err)
	}
	return s.exporter.PushAnalytics(ctx, now, farmer, analytics, report.TotalActivities)
}
