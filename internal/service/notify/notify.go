package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/observability"
)

// Message is a channel-agnostic notification.
type Message struct {
	Subject string
	Body    string
}

// Notifier delivers a message to a human.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Name() string                          { return "nop" }
func (Nop) Notify(context.Context, Message) error { return nil }

// Fanout delivers to every configured notifier and joins their errors.
type Fanout struct {
	notifiers []Notifier
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewFanout builds a notifier over the given channels. Nil entries are skipped.
func NewFanout(metrics *observability.Metrics, logger *zap.Logger, notifiers ...Notifier) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.Nop()
	}
	f := &Fanout{metrics: metrics, logger: logger}
	for _, n := range notifiers {
		if n != nil {
			f.notifiers = append(f.notifiers, n)
		}
	}
	return f
}

func (f *Fanout) Name() string { return "fanout" }

// Notify sends msg on every channel; one failing channel does not stop the others.
func (f *Fanout) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range f.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			f.metrics.NotificationsSent.WithLabelValues(n.Name(), "error").Inc()
			f.logger.Warn("notification failed", zap.String("channel", n.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		f.metrics.NotificationsSent.WithLabelValues(n.Name(), "success").Inc()
	}
	return errors.Join(errs...)
}

// Len reports how many channels are configured.
func (f *Fanout) Len() int { return len(f.notifiers) }
