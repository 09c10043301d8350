// Package notify delivers finished reports to chat, email and the desktop.
package notify

import (
	"context"

	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus"
)

// Notifier delivers a report over one channel.
type Notifier interface {
	Name() string
	Supports(kind models.ReportKind) bool
	Notify(ctx context.Context, report models.Report) error
}

// Dispatcher fans a report out to every enabled notifier. A failing
// channel never stops the others.
type Dispatcher struct {
	notifiers []Notifier
	logger    logrus.FieldLogger
}

func NewDispatcher(logger logrus.FieldLogger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers, logger: logger.WithField("component", "notify")}
}

// Channels lists the configured notifier names.
func (d *Dispatcher) Channels() []string {
	names := make([]string, len(d.notifiers))
	for i, n := range d.notifiers {
		names[i] = n.Name()
	}
	return names
}

// Dispatch sends report on each channel that supports its kind and returns
// the delivery errors, already logged.
func (d *Dispatcher) Dispatch(ctx context.Context, report models.Report) []error {
	var failures []error
	for _, n := range d.notifiers {
		if !n.Supports(report.Kind) {
			continue
		}
		log := d.logger.WithFields(logrus.Fields{"channel": n.Name(), "kind": report.Kind, "period": report.Label()})

		if err := n.Notify(ctx, report); err != nil {
			derr := errors.DeliveryError(err, n.Name())
			log.WithField("error", err).Warn("delivery failed")
			failures = append(failures, derr)
			continue
		}
		log.Info("report delivered")
	}
	return failures
}
