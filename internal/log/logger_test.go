package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentExpense, Output: &buf})

	logger.Info("recorded", FieldExpenseName, "Rent")

	out := buf.String()
	if !strings.Contains(out, `"component":"expense"`) {
		t.Fatalf("missing component: %s", out)
	}
	if !strings.Contains(out, `"expense_name":"Rent"`) {
		t.Fatalf("missing field: %s", out)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentHTTP).
		WithOperation(OpRecord).
		WithExpense("Food", "120.5", "Variable").
		WithBudget("379.5").
		WithRequestID("").
		WithError(errors.New("x"))

	if f[FieldComponent] != ComponentHTTP || f[FieldOperation] != OpRecord {
		t.Fatalf("unexpected fields: %v", f)
	}
	if f[FieldAmount] != "120.5" || f[FieldRemainingBudget] != "379.5" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if _, ok := f[FieldRequestID]; ok {
		t.Fatalf("empty request id should be skipped")
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("slice length mismatch")
	}
}

func TestFromContextFallsBack(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Fatalf("expected default logger, got %+v", l)
	}
}

func TestMiddlewareInjectsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})

	var got *Logger
	h := chimiddleware.RequestID(Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("logger not injected: %+v", got)
	}
	out := buf.String()
	if !strings.Contains(out, "HTTP request completed") || !strings.Contains(out, "status_code=418") {
		t.Fatalf("unexpected log: %s", out)
	}
	if !strings.Contains(out, "request_id=") {
		t.Fatalf("missing request id: %s", out)
	}
}
