package http

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/ledger"
	applog "budget/internal/log"
	"budget/internal/metrics"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/notify"
	appweb "budget/web"
)

// Tracker is the part of the expense tracker the web UI uses.
type Tracker interface {
	Record(ctx context.Context, category, name string, amount decimal.Decimal) core.Expense
	Budget() decimal.Decimal
	Expenses() []core.Expense
	Summary() ledger.Snapshot
	Subscribe(h notify.Handler)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	http.Server
	templates *template.Template
	tracker   Tracker
	metrics   *metrics.Metrics
	logger    *applog.Logger
	view      *expenseView
	limiter   *ratelimit.Limiter
	checks    map[string]ReadinessCheck
	started   time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithRateLimiter limits expense submissions per client.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithReadinessCheck adds a named check to /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) { s.checks[name] = check }
}

// NewServer builds the web UI around t and subscribes the expense list view
// to it. The view starts from the expenses already in the ledger.
func NewServer(addr string, t Tracker, m *metrics.Metrics, logger *applog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		templates: template.Must(template.ParseFS(appweb.TemplatesFS, "templates/*.html")),
		tracker:   t,
		metrics:   m,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		view:      &expenseView{},
		checks:    make(map[string]ReadinessCheck),
		started:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, e := range t.Expenses() {
		_ = s.view.handle(context.Background(), e)
	}
	t.Subscribe(s.view.handle)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(applog.Middleware(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.countRequests)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.With(security.StaticAssetMiddleware(86400)).
		Handle("/static/*", http.FileServer(http.FS(appweb.StaticFS)))

	submit := []func(http.Handler) http.Handler{}
	if s.limiter != nil {
		submit = append(submit, s.limiter.Middleware(security.ClientIP, s.handleRateLimited))
	}
	r.Get("/expenses", s.handleListExpenses)
	r.With(submit...).Post("/expenses", s.handleCreateExpense)
	r.Get("/budget", s.handleBudget)
	r.Get("/api/summary", s.handleSummary)

	return r
}

// countRequests counts responses by route pattern and status.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
