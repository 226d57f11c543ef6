package http

import (
	"context"
	"net/http"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
)

type indexData struct {
	Rows   []string
	Budget string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Rows:   s.view.Rows(),
		Budget: core.FormatBudget(s.tracker.Budget()),
	}
	s.render(w, r, "index", data)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "expense-list", s.view.Rows())
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(core.FormatBudget(s.tracker.Budget())))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template render failed",
			applog.NewFields().
				WithOperation(applog.OpRender).
				WithError(err).
				ToSlice()...)
		InternalServerError("Unable to render page").Write(w)
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(w, r)
	form, err := ParseExpenseForm(parser)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Expense rejected",
			applog.NewFields().
				WithOperation(applog.OpValidate).
				WithError(err).
				ToSlice()...)

		status, msg := errorStatus(err), userMessage(err)
		if parser.IsJSON() {
			writeJSON(w, status, map[string]string{"error": msg})
			return
		}

		var resp *HTMXResponseBuilder
		switch status {
		case http.StatusUnprocessableEntity:
			resp = UnprocessableEntityError(msg)
		case http.StatusBadRequest:
			resp = BadRequestError(msg)
		default:
			resp = ErrorResponse(status, msg)
		}
		resp.TriggerErrorNotification(msg).Write(w)
		return
	}

	e := s.tracker.Record(r.Context(), form.Category, form.Name, form.Amount)
	remaining := core.FormatBudget(s.tracker.Budget())

	switch {
	case parser.IsJSON():
		writeJSON(w, http.StatusCreated, expenseResponse{
			Name:            e.Name,
			Amount:          e.Amount.String(),
			Category:        e.Category.String(),
			RemainingBudget: remaining,
		})
	case isHTMX(r):
		NewHTMXResponse().
			TriggerFormReset().
			TriggerExpenseCreated(remaining).
			TriggerSuccessNotification("Expense added: " + e.String()).
			Write(w)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Too many expenses submitted, try again in a minute.").
		TriggerErrorNotification("Too many expenses submitted, try again in a minute.").
		Write(w)
}

type expenseResponse struct {
	Name            string `json:"name"`
	Amount          string `json:"amount"`
	Category        string `json:"category"`
	RemainingBudget string `json:"remaining_budget"`
}

type summaryResponse struct {
	Initial   string            `json:"initial_budget"`
	Spent     string            `json:"spent"`
	Remaining string            `json:"remaining_budget"`
	Totals    map[string]string `json:"totals"`
	Count     int               `json:"count"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Summary()
	totals := make(map[string]string, len(snap.Totals))
	for c, d := range snap.Totals {
		totals[c.String()] = core.FormatBudget(d)
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Initial:   core.FormatBudget(snap.Initial),
		Spent:     core.FormatBudget(snap.Spent),
		Remaining: core.FormatBudget(snap.Remaining),
		Totals:    totals,
		Count:     snap.Count,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

// handleReady runs every readiness check with a short timeout and answers 503
// when any of them fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	writeJSON(w, status, map[string]any{
		"status": state,
		"checks": results,
	})
}
