package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/notify"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Expense metrics
	ExpensesRecorded *prometheus.CounterVec
	ExpenseAmount    *prometheus.HistogramVec
	AmountRecorded   *prometheus.CounterVec
	RemainingBudget  prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec

	// Subscriber metrics
	PublishErrors *prometheus.CounterVec
}

// New creates all metrics on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ExpensesRecorded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spese_expenses_recorded_total",
				Help: "Total number of recorded expenses",
			},
			[]string{"category"},
		),
		ExpenseAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spese_expense_amount",
				Help:    "Recorded expense amounts",
				Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 5000},
			},
			[]string{"category"},
		),
		AmountRecorded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spese_amount_recorded_total",
				Help: "Sum of recorded expense amounts",
			},
			[]string{"category"},
		),
		RemainingBudget: f.NewGauge(prometheus.GaugeOpts{
			Name: "spese_remaining_budget",
			Help: "Remaining budget after the last recorded expense",
		}),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spese_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		PublishErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spese_subscriber_errors_total",
				Help: "Failures of expense subscribers by name",
			},
			[]string{"subscriber"},
		),
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetBudget updates the remaining budget gauge.
func (m *Metrics) SetBudget(remaining decimal.Decimal) {
	m.RemainingBudget.Set(remaining.InexactFloat64())
}

// ObserveExpense records e under its category.
func (m *Metrics) ObserveExpense(e core.Expense) {
	category := e.Category.String()
	amount := e.Amount.InexactFloat64()
	m.ExpensesRecorded.WithLabelValues(category).Inc()
	m.ExpenseAmount.WithLabelValues(category).Observe(amount)
	if amount > 0 {
		m.AmountRecorded.WithLabelValues(category).Add(amount)
	}
}

// Subscriber returns a handler that observes every recorded expense and
// refreshes the budget gauge from budget, which is read after the commit.
func (m *Metrics) Subscriber(budget func() decimal.Decimal) notify.Handler {
	return func(_ context.Context, e core.Expense) error {
		m.ObserveExpense(e)
		m.SetBudget(budget())
		return nil
	}
}

// Counting wraps h so its failures are counted under name. A panic is
// counted and then passed on to the notifier.
func (m *Metrics) Counting(name string, h notify.Handler) notify.Handler {
	return func(ctx context.Context, e core.Expense) error {
		defer func() {
			if r := recover(); r != nil {
				m.PublishErrors.WithLabelValues(name).Inc()
				panic(r)
			}
		}()
		err := h(ctx, e)
		if err != nil {
			m.PublishErrors.WithLabelValues(name).Inc()
		}
		return err
	}
}
