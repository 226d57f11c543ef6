package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budget/internal/amqp"
	"budget/internal/config"
	applog "budget/internal/log"
	"budget/internal/metrics"
	"budget/internal/notify"
	"budget/internal/storage"
	"budget/internal/tracker"
)

const amqpConnectTimeout = 30 * time.Second

// Integrations are the optional subscribers a process feeds with recorded
// expenses. A nil field means the integration is disabled.
type Integrations struct {
	Journal *storage.Journal
	AMQP    *amqp.Client
}

// SetupIntegrations opens the journal and the broker connection enabled in
// cfg and subscribes them to t. When m is non-nil the metrics subscriber is
// registered first and every other subscriber's failures are counted.
func SetupIntegrations(ctx context.Context, cfg *config.Config, t *tracker.Tracker, m *metrics.Metrics, logger *applog.Logger) (*Integrations, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	in := &Integrations{}
	subscribe := func(name string, h notify.Handler) {
		if m != nil {
			h = m.Counting(name, h)
		}
		t.Subscribe(h)
	}

	if m != nil {
		m.SetBudget(t.Budget())
		t.Subscribe(m.Subscriber(t.Budget))
	}

	j, err := OpenJournal(cfg, logger)
	if err != nil {
		return nil, err
	}
	if j != nil {
		in.Journal = j
		subscribe(applog.ComponentJournal, j.Subscriber(t.Budget))
		logger.Info("Journal enabled", "path", cfg.JournalDBPath)
	}

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpConnectTimeout, logger)
		if err != nil {
			_ = in.Close()
			return nil, fmt.Errorf("connect AMQP: %w", err)
		}
		in.AMQP = client
		subscribe(applog.ComponentAMQP, client.Subscriber(t.Budget))
		logger.Info("Publishing expense events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	return in, nil
}

// Close releases every open integration.
func (i *Integrations) Close() error {
	var errs []error
	if i.AMQP != nil {
		errs = append(errs, i.AMQP.Close())
	}
	if i.Journal != nil {
		errs = append(errs, i.Journal.Close())
	}
	return errors.Join(errs...)
}
